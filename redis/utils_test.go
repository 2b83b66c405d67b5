package redis_test

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/redis"
)

func TestKeys(t *testing.T) {
	t.Run("Should join prefix and suffix", func(t *testing.T) {
		assert.Equal(t, "num2int:operators", redis.OperatorsKey(redis.DefaultKeyPrefix))
		assert.Equal(t, "staging:catalog_version", redis.CatalogVersionKey("staging"))
		assert.Equal(t, "a:b:c", redis.Key("a", "b", "c"))
	})
}

func TestClientType(t *testing.T) {
	for _, ct := range []redis.ClientType{redis.ClientTypeRegular, redis.ClientTypeCluster, redis.ClientTypeFailover} {
		t.Run("Should round trip "+ct.String(), func(t *testing.T) {
			assert.Equal(t, ct, redis.ClientTypeFromString(ct.String()))
		})
	}
	t.Run("Should default to regular", func(t *testing.T) {
		assert.Equal(t, redis.ClientTypeRegular, redis.ClientTypeFromString("sharded"))
	})
}

func TestNewClient(t *testing.T) {
	t.Run("Should require an address", func(t *testing.T) {
		_, err := redis.NewClient(redis.DefaultConfig())
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})

	t.Run("Should require a master name for failover", func(t *testing.T) {
		cfg := redis.DefaultConfig()
		cfg.Address = []string{"sentinel:26379"}
		cfg.ClientType = redis.ClientTypeFailover
		_, err := redis.NewClient(cfg)
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})

	t.Run("Should build the client matching the type", func(t *testing.T) {
		cfg := redis.DefaultConfig()
		cfg.Address = []string{"localhost:6379"}

		c, err := redis.NewClient(cfg)
		require.NoError(t, err)
		assert.IsType(t, &goredis.Client{}, c)
		require.NoError(t, c.Close())

		cfg.ClientType = redis.ClientTypeCluster
		c, err = redis.NewClient(cfg)
		require.NoError(t, err)
		assert.IsType(t, &goredis.ClusterClient{}, c)
		require.NoError(t, c.Close())
	})
}
