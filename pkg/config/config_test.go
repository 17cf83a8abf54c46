package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

const minimalConfig = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
logging:
  level: info
  format: json
  output: stdout
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	// backend defaults to memory
	assert.Equal(t, "memory", cfg.History.Backend)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: [test"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		extra  string
		errMsg string
	}{
		{
			name:   "missing environment",
			extra:  "",
			errMsg: "environment is required",
		},
		{
			name: "unknown history backend",
			extra: `
environment: test
history:
  backend: postgres
`,
			errMsg: "history.backend",
		},
		{
			name: "clickhouse backend needs host",
			extra: `
environment: test
history:
  backend: clickhouse
`,
			errMsg: "clickhouse.host",
		},
		{
			name: "kafka enabled needs brokers",
			extra: `
environment: test
kafka:
  enabled: true
  topic: scorefuse.results
`,
			errMsg: "kafka.brokers",
		},
		{
			name: "kafka enabled needs topic",
			extra: `
environment: test
kafka:
  enabled: true
  brokers: ["localhost:9092"]
`,
			errMsg: "kafka.topic",
		},
		{
			name: "redis enabled needs host",
			extra: `
environment: test
redis:
  enabled: true
`,
			errMsg: "redis.host",
		},
		{
			name: "feed enabled needs url",
			extra: `
environment: test
feed:
  enabled: true
`,
			errMsg: "feed.url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FEED_SYMBOLS", "BTC-USDT,ETH-USDT")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, cfg.Feed.Symbols)
	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
}
