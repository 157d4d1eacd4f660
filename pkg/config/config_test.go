package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
environment: test
clickhouse:
  host: localhost
redis:
  addr: localhost:6379
stress:
  directions:
    VIX: 1
    EQUITY_RET: -1
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "stresspulse", c.ClickHouse.Database)
	assert.Equal(t, 252, c.Stress.RollingWindowDays)
	assert.Equal(t, 126, c.Stress.MinPeriodsForRanking)
	assert.Equal(t, 180, c.Stress.RecalculationFrequencyDays)
	assert.Equal(t, "ema", c.Stress.Smoothing.Method)
	assert.InDelta(t, 50.0, c.Stress.Thresholds.Moderate, 0)
	assert.InDelta(t, 70.0, c.Stress.Thresholds.High, 0)
	assert.InDelta(t, 85.0, c.Stress.Thresholds.Extreme, 0)
	assert.True(t, c.Stress.MACD.Enabled)
	assert.InDelta(t, 8.0, c.Fetch.MaxRPS, 0)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
redis:
  addr: localhost:6379
stress:
  directions:
    VIX: 1
`))
	assert.Error(t, err, "clickhouse.host is required")
}

func TestLoadRejectsNonIncreasingThresholds(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  thresholds:
    moderate: 50
    high: 70
    extreme: 70
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestLoadRejectsBadDirectionSign(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
clickhouse:
  host: localhost
redis:
  addr: localhost:6379
stress:
  directions:
    VIX: 2
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directions.VIX")
}

func TestLoadRejectsInvertedMACD(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  macd:
    enabled: true
    fast: 26
    slow: 12
    signal: 9
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "macd")
}

func TestLoadRejectsMinPeriodsAboveWindow(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
  rolling_window_days: 100
  min_periods_for_ranking: 200
`))
	assert.Error(t, err)
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
kafka:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brokers")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis-prod:6379")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "redis-prod:6379", c.Redis.Addr)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, c.Kafka.Brokers)
}
