package planner_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/kafka"
	"github.com/dora-network/num2int/planner"
	"github.com/dora-network/num2int/redis"
)

func TestDecodeConfig(t *testing.T) {
	t.Run("Should keep defaults for missing keys", func(t *testing.T) {
		cfg, err := planner.DecodeConfig(map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, planner.DefaultConfig(), cfg)
	})

	t.Run("Should decode strings into typed fields", func(t *testing.T) {
		cfg, err := planner.DecodeConfig(map[string]any{
			"fold_enabled":    "false",
			"catalog_timeout": "750ms",
			"kafka": map[string]any{
				"brokers": "a:9092,b:9092",
			},
			"redis": map[string]any{
				"address":     []string{"sentinel:26379"},
				"client_type": "failover",
				"master_name": "primary",
			},
			"metrics": map[string]any{
				"enabled": "1",
				"port":    "9100",
			},
		})
		require.NoError(t, err)
		assert.False(t, cfg.FoldEnabled)
		assert.Equal(t, 750*time.Millisecond, cfg.CatalogTimeout)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, kafka.DefaultInvalidationTopic, cfg.Kafka.InvalidationTopic)
		assert.Equal(t, redis.ClientTypeFailover, cfg.Redis.ClientType)
		assert.Equal(t, "primary", cfg.Redis.MasterName)
		assert.Equal(t, redis.DefaultKeyPrefix, cfg.Redis.KeyPrefix)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9100, cfg.Metrics.Port)
	})

	t.Run("Should reject unknown keys", func(t *testing.T) {
		_, err := planner.DecodeConfig(map[string]any{"fold_enable": true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})

	t.Run("Should reject values that fail validation", func(t *testing.T) {
		for _, raw := range []map[string]any{
			{"catalog_timeout": "0s"},
			{"kafka": map[string]any{"brokers": "kafka"}},
			{"kafka": map[string]any{"invalidation_topic": "catalog/changes"}},
			{"redis": map[string]any{"key_prefix": "a:b"}},
			{"metrics": map[string]any{"enabled": true, "port": 70000}},
		} {
			_, err := planner.DecodeConfig(raw)
			assert.True(t, errors.Is(err, errors.InvalidInputError), raw)
		}
	})

	t.Run("Should accept an ephemeral metrics port", func(t *testing.T) {
		cfg, err := planner.DecodeConfig(map[string]any{"metrics": map[string]any{"enabled": true, "port": "0"}})
		require.NoError(t, err)
		assert.Zero(t, cfg.Metrics.Port)
	})

	t.Run("Should reject malformed durations", func(t *testing.T) {
		_, err := planner.DecodeConfig(map[string]any{"catalog_timeout": "soon"})
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Should overlay the environment", func(t *testing.T) {
		t.Setenv("NUM2INT_FOLD_ENABLED", "false")
		t.Setenv("NUM2INT_KAFKA_BROKERS", "kafka:9092")
		t.Setenv("NUM2INT_INVALIDATION_TOPIC", "catalog.changes")
		t.Setenv("NUM2INT_REDIS_ADDRESS", "redis:6379")
		t.Setenv("NUM2INT_CATALOG_TIMEOUT", "5s")

		cfg, err := planner.LoadConfig()
		require.NoError(t, err)
		assert.False(t, cfg.FoldEnabled)
		assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "catalog.changes", cfg.Kafka.InvalidationTopic)
		assert.Equal(t, []string{"redis:6379"}, cfg.Redis.Address)
		assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	})

	t.Run("Should read a YAML file under the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "num2int.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
fold_enabled: true
catalog_timeout: 3s
kafka:
  brokers: ["k1:9092", "k2:9092"]
redis:
  address: ["r1:6379"]
  client_type: cluster
  key_prefix: staging
metrics:
  enabled: true
`), 0o600))
		t.Setenv("NUM2INT_REDIS_KEY_PREFIX", "prod")

		cfg, err := planner.LoadConfigFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.FoldEnabled)
		assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, redis.ClientTypeCluster, cfg.Redis.ClientType)
		assert.Equal(t, "prod", cfg.Redis.KeyPrefix)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 8081, cfg.Metrics.Port)
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		_, err := planner.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})
}
