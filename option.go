package approvalflow

import (
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/afs"
	"github.com/viant/approvalflow/service/directory"
	"go.uber.org/zap"
)

// Option configures the service
type Option func(s *Service)

// WithLogger sets the logger; by default one is built from the log config
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegisterer sets the prometheus registerer used when metrics are enabled
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithFS sets the storage service used for workflows, the directory and the fs store
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithRedis sets the client used by the redis locker instead of dialing lock.addr
func WithRedis(client redis.UniversalClient) Option {
	return func(s *Service) {
		s.redis = client
	}
}

// WithDirectory replaces the configured directory; caching still applies
func WithDirectory(dir directory.Directory) Option {
	return func(s *Service) {
		s.directory = dir
	}
}
