package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
port = 9000
mode = "debug"

[storage]
driver = "memory"

[postgres]
host = "db.internal"
dbname = "tripmate"

[jwt]
secret = "test-secret"

[kafka]
brokers = ["127.0.0.1:9092"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads file and fills defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.Mode)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, "db.internal", cfg.Postgres.Host)
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, 300, cfg.Redis.CacheTTLSeconds)
		assert.Equal(t, "tripmate.companion.events", cfg.Kafka.Topic)
		assert.Equal(t, []string{"127.0.0.1:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 4, cfg.WorkerPool.Size)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TRIPMATE_POSTGRES_HOST", "override.internal")
		t.Setenv("TRIPMATE_SERVER_PORT", "7000")

		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "override.internal", cfg.Postgres.Host)
		assert.Equal(t, 7000, cfg.Server.Port)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `
[storage]
driver = "sqlite"
[jwt]
secret = "x"
`))
		assert.ErrorContains(t, err, "unsupported storage driver")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:    StorageConfig{Driver: "postgres"},
			JWT:        JWTConfig{Secret: "s"},
			WorkerPool: WorkerPoolConfig{Size: 1, QueueSize: 1},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWT.Secret = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.WorkerPool.Size = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Snowflake.WorkerID = -1
	assert.Error(t, cfg.Validate())
}
