package approvalflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/afs"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/assignee"
	"github.com/viant/approvalflow/service/dao/request"
	reqfs "github.com/viant/approvalflow/service/dao/request/fs"
	reqmemory "github.com/viant/approvalflow/service/dao/request/memory"
	reqsql "github.com/viant/approvalflow/service/dao/request/sql"
	"github.com/viant/approvalflow/service/dao/workflow"
	"github.com/viant/approvalflow/service/directory"
	dirbreaker "github.com/viant/approvalflow/service/directory/breaker"
	dircache "github.com/viant/approvalflow/service/directory/cache"
	dirmemory "github.com/viant/approvalflow/service/directory/memory"
	dirsql "github.com/viant/approvalflow/service/directory/sql"
	"github.com/viant/approvalflow/service/engine"
	"github.com/viant/approvalflow/service/lock"
	lockmemory "github.com/viant/approvalflow/service/lock/memory"
	lockredis "github.com/viant/approvalflow/service/lock/redis"
	msgmemory "github.com/viant/approvalflow/service/messaging/memory"
	"github.com/viant/approvalflow/tracing"
	"github.com/viant/scy"
	"go.uber.org/zap"
)

// Service wires the engine with configured stores, directory and locker
type Service struct {
	config     *Config
	engine     *engine.Service
	workflows  *workflow.Service
	directory  directory.Directory
	requests   request.Store
	events     *msgmemory.Queue[model.Event]
	metrics    *engine.Metrics
	logger     *zap.Logger
	registerer prometheus.Registerer
	fs         afs.Service
	redis      redis.UniversalClient
	db         *sqlx.DB
	closers    []func(ctx context.Context) error
}

// Engine returns the workflow engine
func (s *Service) Engine() *engine.Service {
	return s.engine
}

// Workflows returns the workflow definition registry
func (s *Service) Workflows() *workflow.Service {
	return s.workflows
}

// Directory returns the user directory
func (s *Service) Directory() directory.Directory {
	return s.directory
}

// Requests returns the request store
func (s *Service) Requests() request.Store {
	return s.requests
}

// Events returns the event queue or nil when events are disabled
func (s *Service) Events() *msgmemory.Queue[model.Event] {
	return s.events
}

// Logger returns the service logger
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Close releases database, redis and tracing resources
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	_ = s.logger.Sync()
	return errors.Join(errs...)
}

func (s *Service) init(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			_ = s.Close(ctx)
		}
	}()
	if s.logger == nil {
		if s.logger, err = NewLogger(&s.config.Log); err != nil {
			return err
		}
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.config.Tracing.Enabled {
		if err = tracing.Init(s.config.Tracing.ServiceName, Version, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		s.closers = append(s.closers, tracing.Shutdown)
	}
	if err = s.initRequests(ctx); err != nil {
		return err
	}
	if err = s.initDirectory(ctx); err != nil {
		return err
	}
	s.workflows = workflow.New(workflow.WithFS(s.fs))
	if URL := s.config.Workflows.URL; URL != "" {
		definitions, err := s.workflows.LoadURL(ctx, URL)
		if err != nil {
			return err
		}
		s.logger.Info("workflows loaded", zap.String("url", URL), zap.Int("count", len(definitions)))
	}
	locker, err := s.newLocker()
	if err != nil {
		return err
	}
	options := []engine.Option{
		engine.WithLogger(s.logger.Named("engine")),
		engine.WithLocker(locker),
		engine.WithResolver(assignee.New(assignee.WithExcludeInitiator(s.config.Engine.ExcludeInitiator))),
		engine.WithFormValidation(s.config.Engine.FormValidation),
		engine.WithRetry(s.config.Engine.MaxRetries, s.config.Engine.RetryInterval),
	}
	if s.config.Metrics.Enabled {
		if s.registerer == nil {
			s.registerer = prometheus.DefaultRegisterer
		}
		if s.metrics, err = engine.NewMetrics(s.registerer); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		options = append(options, engine.WithMetrics(s.metrics))
	}
	if s.config.Events.Enabled {
		config := msgmemory.DefaultConfig()
		config.Buffer = s.config.Events.Buffer
		s.events = msgmemory.NewQueue[model.Event](config)
		options = append(options, engine.WithPublisher(s.events))
	}
	s.engine = engine.New(s.requests, s.workflows, s.directory, options...)
	return nil
}

func (s *Service) initRequests(ctx context.Context) error {
	switch s.config.Store.Type {
	case StoreFS:
		store, err := reqfs.New(s.config.Store.URL, s.fs)
		if err != nil {
			return err
		}
		s.requests = store
	case StoreSQL:
		dsn, err := s.storeDSN(ctx)
		if err != nil {
			return err
		}
		store, err := reqsql.Open(ctx, dsn)
		if err != nil {
			return err
		}
		s.db = store.DB()
		s.closers = append(s.closers, func(context.Context) error { return s.db.Close() })
		if s.config.Store.Migrate {
			if err = store.Migrate(ctx); err != nil {
				return err
			}
		}
		s.requests = store
	default:
		s.requests = reqmemory.New()
	}
	return nil
}

// storeDSN returns the configured DSN or reveals it from store.secretURL
func (s *Service) storeDSN(ctx context.Context) (string, error) {
	if s.config.Store.DSN != "" {
		return s.config.Store.DSN, nil
	}
	resource := scy.NewResource(nil, s.config.Store.SecretURL, s.config.Store.SecretKey)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load store secret %v: %w", s.config.Store.SecretURL, err)
	}
	return secret.String(), nil
}

func (s *Service) initDirectory(ctx context.Context) error {
	cfg := &s.config.Directory
	if s.directory == nil {
		switch cfg.Type {
		case StoreSQL:
			db := s.db
			if cfg.DSN != "" {
				var err error
				if db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN); err != nil {
					return fmt.Errorf("failed to connect directory database: %w", err)
				}
				s.closers = append(s.closers, func(context.Context) error { return db.Close() })
			}
			if s.config.Store.Migrate {
				if _, err := db.ExecContext(ctx, dirsql.Schema); err != nil {
					return fmt.Errorf("failed to migrate directory: %w", err)
				}
			}
			s.directory = dirsql.New(db)
		default:
			dir, err := dirmemory.New()
			if err != nil {
				return err
			}
			dir.WithFS(s.fs)
			if cfg.URL != "" {
				if err = dir.Load(ctx, cfg.URL); err != nil {
					return err
				}
			}
			s.directory = dir
		}
	}
	if cfg.BreakerFailures > 0 {
		s.directory = dirbreaker.New(s.directory, cfg.BreakerFailures, cfg.BreakerTimeout)
	}
	if cfg.CacheSize > 0 {
		s.directory = dircache.New(s.directory, cfg.CacheSize, cfg.CacheTTL)
	}
	return nil
}

func (s *Service) newLocker() (lock.Locker, error) {
	cfg := &s.config.Lock
	if cfg.Type != LockRedis {
		return lockmemory.New(), nil
	}
	if s.redis == nil {
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		s.redis = client
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
	}
	return lockredis.New(s.redis, lockredis.WithPrefix(cfg.Prefix), lockredis.WithTTL(cfg.TTL), lockredis.WithWait(cfg.Wait)), nil
}

// NewLogger builds a zap logger from the log configuration
func NewLogger(cfg *LogConfig) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
		}
		zapConfig.Level = level
	}
	return zapConfig.Build()
}

// New creates a service from config; a nil config means DefaultConfig
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
