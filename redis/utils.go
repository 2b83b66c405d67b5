package redis

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dora-network/num2int/errors"
)

const (
	DefaultKeyPrefix = "num2int"

	OperatorsSuffix      = "operators"
	CatalogVersionSuffix = "catalog_version"
)

// OperatorsKey returns the key of the hash mapping operator keys to identities.
func OperatorsKey(prefix string) string {
	return Key(prefix, OperatorsSuffix)
}

// CatalogVersionKey returns the key of the counter bumped on every catalog change.
func CatalogVersionKey(prefix string) string {
	return Key(prefix, CatalogVersionSuffix)
}

// Key constructs a redis key from the given elements. The elements should be provided in the
// order they should appear in the key, for example "num2int:operators".
func Key(elems ...string) string {
	return strings.Join(elems, ":")
}

// TryTransaction retries the given transaction function until it succeeds, the context
// is done, or the backoff strategy gives up. Only optimistic-lock failures are retried.
func TryTransaction(ctx context.Context, rdb Client, f func(tx *redis.Tx) error, backoffStrategy backoff.BackOff, keys ...string) error {
	retryFn := func() error {
		err := rdb.Watch(ctx, f, keys...)
		if err != nil && !stderrors.Is(err, redis.TxFailedErr) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(retryFn, backoff.WithContext(backoffStrategy, ctx))
}

func NewClient(config Config) (Client, error) {
	if len(config.Address) == 0 {
		return nil, errors.New(errors.InvalidInputError, "redis address must be provided")
	}

	switch config.ClientType {
	case ClientTypeCluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:            config.Address,
			Protocol:         config.Protocol,
			Username:         config.Username,
			Password:         config.Password,
			DisableIndentity: config.DisableIdentity,
		}), nil
	case ClientTypeFailover:
		if config.MasterName == "" {
			return nil, errors.New(errors.InvalidInputError, "redis failover requires a master name")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    config.MasterName,
			SentinelAddrs: config.Address,
			Protocol:      config.Protocol,
			Username:      config.Username,
			Password:      config.Password,
			DB:            config.DB,
		}), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:             config.Address[0],
		Protocol:         config.Protocol,
		Username:         config.Username,
		Password:         config.Password,
		DB:               config.DB,
		DisableIndentity: config.DisableIdentity,
	}), nil
}
