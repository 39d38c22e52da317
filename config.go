package approvalflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store types
const (
	StoreMemory = "memory"
	StoreFS     = "fs"
	StoreSQL    = "sql"
)

// Lock types
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config is a serialisable representation of the service configuration. It
// is loaded from YAML with APPROVALFLOW_ prefixed environment overrides.
type Config struct {
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Workflows WorkflowsConfig `json:"workflows" yaml:"workflows" mapstructure:"workflows"`
	Directory DirectoryConfig `json:"directory" yaml:"directory" mapstructure:"directory"`
	Lock      LockConfig      `json:"lock" yaml:"lock" mapstructure:"lock"`
	Engine    EngineConfig    `json:"engine" yaml:"engine" mapstructure:"engine"`
	Events    EventsConfig    `json:"events" yaml:"events" mapstructure:"events"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// StoreConfig selects the request store
type StoreConfig struct {
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	// URL is the base location of the fs store
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	// SecretURL locates an encrypted DSN, SecretKey is its scy key
	SecretURL string `json:"secretURL,omitempty" yaml:"secretURL,omitempty" mapstructure:"secretURL"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty" mapstructure:"secretKey"`
	// Migrate creates missing tables on start
	Migrate bool `json:"migrate,omitempty" yaml:"migrate,omitempty" mapstructure:"migrate"`
}

// WorkflowsConfig locates workflow definitions
type WorkflowsConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
}

// DirectoryConfig selects the user directory
type DirectoryConfig struct {
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	// URL locates a YAML list of users for the memory directory
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	// DSN defaults to the sql store database
	DSN       string        `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	CacheSize int           `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty" mapstructure:"cacheSize"`
	CacheTTL  time.Duration `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty" mapstructure:"cacheTTL"`
	// BreakerFailures enables a circuit breaker opening after that many consecutive failures
	BreakerFailures uint32        `json:"breakerFailures,omitempty" yaml:"breakerFailures,omitempty" mapstructure:"breakerFailures"`
	BreakerTimeout  time.Duration `json:"breakerTimeout,omitempty" yaml:"breakerTimeout,omitempty" mapstructure:"breakerTimeout"`
}

// LockConfig selects the per request locker
type LockConfig struct {
	Type   string        `json:"type" yaml:"type" mapstructure:"type"`
	Addr   string        `json:"addr,omitempty" yaml:"addr,omitempty" mapstructure:"addr"`
	Prefix string        `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
	TTL    time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" mapstructure:"ttl"`
	Wait   time.Duration `json:"wait,omitempty" yaml:"wait,omitempty" mapstructure:"wait"`
}

// EngineConfig tunes the engine
type EngineConfig struct {
	MaxRetries       int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries"`
	RetryInterval    time.Duration `json:"retryInterval" yaml:"retryInterval" mapstructure:"retryInterval"`
	ExcludeInitiator bool          `json:"excludeInitiator,omitempty" yaml:"excludeInitiator,omitempty" mapstructure:"excludeInitiator"`
	FormValidation   bool          `json:"formValidation" yaml:"formValidation" mapstructure:"formValidation"`
}

// EventsConfig enables the in-memory event queue
type EventsConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
	Buffer  int  `json:"buffer,omitempty" yaml:"buffer,omitempty" mapstructure:"buffer"`
}

// TracingConfig enables OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" mapstructure:"serviceName"`
	// OutputFile defaults to stdout
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" mapstructure:"outputFile"`
}

// LogConfig configures zap
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty" mapstructure:"development"`
}

// MetricsConfig enables prometheus collectors
type MetricsConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() *Config {
	return &Config{
		Store:     StoreConfig{Type: StoreMemory},
		Directory: DirectoryConfig{Type: StoreMemory, CacheTTL: time.Minute, BreakerTimeout: 30 * time.Second},
		Lock:      LockConfig{Type: LockMemory, Prefix: "approvalflow:lock:", TTL: 30 * time.Second, Wait: 10 * time.Second},
		Engine:    EngineConfig{MaxRetries: 3, RetryInterval: 10 * time.Millisecond, FormValidation: true},
		Events:    EventsConfig{Buffer: 1024},
		Tracing:   TracingConfig{ServiceName: "approvalflow"},
		Log:       LogConfig{Level: "info"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Store.Type {
	case StoreMemory:
	case StoreFS:
		if c.Store.URL == "" {
			errs = append(errs, fmt.Errorf("store.url is required for %v store", StoreFS))
		}
	case StoreSQL:
		if c.Store.DSN == "" && c.Store.SecretURL == "" {
			errs = append(errs, fmt.Errorf("store.dsn or store.secretURL is required for %v store", StoreSQL))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.type %q", c.Store.Type))
	}
	switch c.Directory.Type {
	case StoreMemory:
	case StoreSQL:
		if c.Directory.DSN == "" && c.Store.Type != StoreSQL {
			errs = append(errs, fmt.Errorf("directory.dsn is required unless store.type is %v", StoreSQL))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported directory.type %q", c.Directory.Type))
	}
	if c.Directory.CacheSize < 0 {
		errs = append(errs, errors.New("directory.cacheSize must be >= 0"))
	}
	switch c.Lock.Type {
	case LockMemory:
	case LockRedis:
		if c.Lock.Addr == "" {
			errs = append(errs, errors.New("lock.addr is required for redis lock"))
		}
		if c.Lock.Wait <= 0 {
			errs = append(errs, errors.New("lock.wait must be > 0 for redis lock"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported lock.type %q", c.Lock.Type))
	}
	if c.Engine.MaxRetries < 0 {
		errs = append(errs, errors.New("engine.maxRetries must be >= 0"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads configuration from an optional YAML file and APPROVALFLOW_
// environment variables, e.g. APPROVALFLOW_STORE_TYPE
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %v: %w", path, err)
		}
	}
	v.SetEnvPrefix("APPROVALFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("store.type", c.Store.Type)
	v.SetDefault("store.url", c.Store.URL)
	v.SetDefault("store.dsn", c.Store.DSN)
	v.SetDefault("store.secretURL", c.Store.SecretURL)
	v.SetDefault("store.secretKey", c.Store.SecretKey)
	v.SetDefault("store.migrate", c.Store.Migrate)
	v.SetDefault("workflows.url", c.Workflows.URL)
	v.SetDefault("directory.type", c.Directory.Type)
	v.SetDefault("directory.url", c.Directory.URL)
	v.SetDefault("directory.dsn", c.Directory.DSN)
	v.SetDefault("directory.cacheSize", c.Directory.CacheSize)
	v.SetDefault("directory.cacheTTL", c.Directory.CacheTTL)
	v.SetDefault("directory.breakerFailures", c.Directory.BreakerFailures)
	v.SetDefault("directory.breakerTimeout", c.Directory.BreakerTimeout)
	v.SetDefault("lock.type", c.Lock.Type)
	v.SetDefault("lock.addr", c.Lock.Addr)
	v.SetDefault("lock.prefix", c.Lock.Prefix)
	v.SetDefault("lock.ttl", c.Lock.TTL)
	v.SetDefault("lock.wait", c.Lock.Wait)
	v.SetDefault("engine.maxRetries", c.Engine.MaxRetries)
	v.SetDefault("engine.retryInterval", c.Engine.RetryInterval)
	v.SetDefault("engine.excludeInitiator", c.Engine.ExcludeInitiator)
	v.SetDefault("engine.formValidation", c.Engine.FormValidation)
	v.SetDefault("events.enabled", c.Events.Enabled)
	v.SetDefault("events.buffer", c.Events.Buffer)
	v.SetDefault("tracing.enabled", c.Tracing.Enabled)
	v.SetDefault("tracing.serviceName", c.Tracing.ServiceName)
	v.SetDefault("tracing.outputFile", c.Tracing.OutputFile)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.development", c.Log.Development)
	v.SetDefault("metrics.enabled", c.Metrics.Enabled)
}
