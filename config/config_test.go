package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithEnv_ReadsYAMLAndEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("AUTH_TOKENTTL", "2h")
	t.Setenv("PAGINATION_MAXPAGESIZE", "50")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "coderr", cfg.Env.ServiceName)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeouts.ReadTimeout)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	require.NotNil(t, cfg.Pagination)
	assert.Equal(t, 6, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 50, cfg.Pagination.MaxPageSize)
	require.NotNil(t, cfg.Database)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SlowQueryThreshold)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	_, err := LoadWithEnv[Config]("does-not-exist")

	assert.ErrorContains(t, err, "does-not-exist.yaml not found")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}

	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, "mem://", cfg.Storage.BucketURL)
	assert.EqualValues(t, defaultMaxUploadSize, cfg.Storage.MaxUploadSize)
	assert.Equal(t, defaultPageSize, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, defaultMaxPageSize, cfg.Pagination.MaxPageSize)
	assert.Equal(t, 256, cfg.QRCode.Size)
	assert.NotNil(t, cfg.Auth)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, defaultSlowQueryThreshold, cfg.Database.SlowQueryThreshold)
	assert.Equal(t, defaultPoolMonitorInterval, cfg.Database.PoolMonitorInterval)
	assert.Equal(t, defaultPoolWaitWarnThreshold, cfg.Database.PoolWaitWarnThreshold)
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_REPLICAS_0_HOST", "replica-a")
	t.Setenv("POSTGRES_REPLICAS_0_PORT", "5433")
	t.Setenv("POSTGRES_REPLICAS_0_USERNAME", "reader")
	t.Setenv("POSTGRES_REPLICAS_1_HOST", "replica-b")

	replicas := buildReplicasFromEnv()

	require.Len(t, replicas, 1)
	assert.Equal(t, "replica-a", replicas[0].Host)
	assert.Equal(t, "5433", replicas[0].Port)
	assert.Equal(t, "reader", replicas[0].UserName)
}
