package approvalflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expectErr   bool
	}{
		{description: "defaults", mutate: func(c *Config) {}},
		{description: "fs store without url", mutate: func(c *Config) { c.Store.Type = StoreFS }, expectErr: true},
		{description: "fs store", mutate: func(c *Config) { c.Store.Type = StoreFS; c.Store.URL = "mem://localhost/requests" }},
		{description: "sql store without dsn", mutate: func(c *Config) { c.Store.Type = StoreSQL }, expectErr: true},
		{description: "sql store with secret", mutate: func(c *Config) { c.Store.Type = StoreSQL; c.Store.SecretURL = "/tmp/dsn.json" }},
		{description: "sql directory reuses sql store", mutate: func(c *Config) {
			c.Store.Type = StoreSQL
			c.Store.DSN = "postgres://localhost/approvalflow"
			c.Directory.Type = StoreSQL
		}},
		{description: "sql directory without dsn", mutate: func(c *Config) { c.Directory.Type = StoreSQL }, expectErr: true},
		{description: "unknown store", mutate: func(c *Config) { c.Store.Type = "bolt" }, expectErr: true},
		{description: "redis lock without addr", mutate: func(c *Config) { c.Lock.Type = LockRedis }, expectErr: true},
		{description: "redis lock without wait", mutate: func(c *Config) {
			c.Lock.Type = LockRedis
			c.Lock.Addr = "localhost:6379"
			c.Lock.Wait = 0
		}, expectErr: true},
		{description: "redis lock", mutate: func(c *Config) { c.Lock.Type = LockRedis; c.Lock.Addr = "localhost:6379" }},
		{description: "negative retries", mutate: func(c *Config) { c.Engine.MaxRetries = -1 }, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			config := DefaultConfig()
			testCase.mutate(config)
			err := config.Validate()
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  type: fs
  url: mem://localhost/requests
workflows:
  url: mem://localhost/workflows
directory:
  cacheSize: 128
  cacheTTL: 2m
engine:
  maxRetries: 5
log:
  level: debug
`), 0o644))
	t.Setenv("APPROVALFLOW_LOCK_TYPE", "redis")
	t.Setenv("APPROVALFLOW_LOCK_ADDR", "localhost:6379")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StoreFS, config.Store.Type)
	assert.Equal(t, "mem://localhost/requests", config.Store.URL)
	assert.Equal(t, "mem://localhost/workflows", config.Workflows.URL)
	assert.Equal(t, 128, config.Directory.CacheSize)
	assert.Equal(t, 2*time.Minute, config.Directory.CacheTTL)
	assert.Equal(t, 5, config.Engine.MaxRetries)
	assert.True(t, config.Engine.FormValidation)
	assert.Equal(t, LockRedis, config.Lock.Type)
	assert.Equal(t, "localhost:6379", config.Lock.Addr)
	assert.Equal(t, 30*time.Second, config.Lock.TTL)
	assert.Equal(t, "debug", config.Log.Level)

	defaults, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, defaults.Store.Type)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&LogConfig{Level: "warn", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(&LogConfig{Level: "loud"})
	assert.Error(t, err)
}
