// Package redis serves the operator catalog from a redis hash. The hash at
// "<prefix>:operators" maps operator keys such as "numeric_lt_int4" to their decimal
// identities, and "<prefix>:catalog_version" counts changes to it.
package redis

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/operator"
	"github.com/dora-network/num2int/redis"
)

// Catalog implements operator.Catalog over a redis hash.
type Catalog struct {
	rdb     redis.Client
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewCatalog(rdb redis.Client, prefix string, timeout time.Duration, logger zerolog.Logger) *Catalog {
	if prefix == "" {
		prefix = redis.DefaultKeyPrefix
	}
	return &Catalog{
		rdb:     rdb,
		prefix:  prefix,
		timeout: timeout,
		logger:  logger,
	}
}

// LookupOperators reads the identities of keys in one HMGET. Keys with no field in the
// hash are absent from the result.
func (c *Catalog) LookupOperators(ctx context.Context, keys []operator.Key) (map[operator.Key]operator.Identity, error) {
	if len(keys) == 0 {
		return map[operator.Key]operator.Identity{}, nil
	}
	fields := make([]string, len(keys))
	for i, key := range keys {
		fields[i] = key.String()
	}

	watch := redis.OperatorsKey(c.prefix)
	found := make(map[operator.Key]operator.Identity, len(keys))

	f := func(tx *redisv9.Tx) error {
		clear(found)
		res, err := tx.HMGet(ctx, watch, fields...).Result()
		if err != nil {
			if stderrors.Is(err, redisv9.Nil) {
				return nil
			}
			return err
		}

		for i, v := range res {
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return errors.Newf(errors.InvalidDataErr, "operator %s has a non-string identity", fields[i])
			}
			id, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return errors.Wrap(errors.InvalidDataErr, err, "operator "+fields[i])
			}
			if id == uint64(operator.InvalidIdentity) {
				c.logger.Warn().Str("operator", fields[i]).Msg("ignoring operator with invalid identity")
				continue
			}
			found[keys[i]] = operator.Identity(id)
		}
		return nil
	}

	if err := redis.TryTransaction(
		ctx,
		c.rdb,
		f,
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(c.timeout)),
		watch,
	); err != nil {
		if errors.Is(err, errors.InvalidDataErr) {
			return nil, err
		}
		return nil, errors.Wrap(errors.UnavailableErr, err, "read operator catalog")
	}

	c.logger.Debug().Int("requested", len(keys)).Int("found", len(found)).Msg("operator catalog read")
	return found, nil
}

// Version returns the catalog change counter, zero when it was never set.
func (c *Catalog) Version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, redis.CatalogVersionKey(c.prefix)).Int64()
	if err != nil {
		if stderrors.Is(err, redisv9.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(errors.UnavailableErr, err, "read catalog version")
	}
	return v, nil
}

// SetOperators writes ops into the catalog and bumps its version in one transaction. It
// returns the new version.
func SetOperators(
	ctx context.Context,
	rdb redis.Client,
	prefix string,
	timeout time.Duration,
	ops map[operator.Key]operator.Identity,
) (int64, error) {
	if prefix == "" {
		prefix = redis.DefaultKeyPrefix
	}
	opsKey, versionKey := redis.OperatorsKey(prefix), redis.CatalogVersionKey(prefix)

	values := make(map[string]any, len(ops))
	for key, id := range ops {
		if !key.Valid() {
			return 0, errors.Newf(errors.InvalidInputError, "invalid operator key %v", key)
		}
		values[key.String()] = strconv.FormatUint(uint64(id), 10)
	}

	var version int64
	txFunc := func(tx *redisv9.Tx) error {
		cmds, err := tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			if len(values) > 0 {
				pipe.HSet(ctx, opsKey, values)
			}
			pipe.Incr(ctx, versionKey)
			return nil
		})
		if err != nil {
			return err
		}
		version = cmds[len(cmds)-1].(*redisv9.IntCmd).Val()
		return nil
	}

	if err := redis.TryTransaction(
		ctx,
		rdb,
		txFunc,
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(timeout)),
		opsKey, versionKey,
	); err != nil {
		return 0, errors.Wrap(errors.UnavailableErr, err, "write operator catalog")
	}
	return version, nil
}

// RemoveOperators deletes keys from the catalog and bumps its version.
func RemoveOperators(ctx context.Context, rdb redis.Client, prefix string, timeout time.Duration, keys ...operator.Key) (int64, error) {
	if prefix == "" {
		prefix = redis.DefaultKeyPrefix
	}
	opsKey, versionKey := redis.OperatorsKey(prefix), redis.CatalogVersionKey(prefix)
	fields := make([]string, len(keys))
	for i, key := range keys {
		fields[i] = key.String()
	}

	var version int64
	txFunc := func(tx *redisv9.Tx) error {
		cmds, err := tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			if len(fields) > 0 {
				pipe.HDel(ctx, opsKey, fields...)
			}
			pipe.Incr(ctx, versionKey)
			return nil
		})
		if err != nil {
			return err
		}
		version = cmds[len(cmds)-1].(*redisv9.IntCmd).Val()
		return nil
	}

	if err := redis.TryTransaction(
		ctx,
		rdb,
		txFunc,
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(timeout)),
		opsKey, versionKey,
	); err != nil {
		return 0, errors.Wrap(errors.UnavailableErr, err, "remove operators from catalog")
	}
	return version, nil
}
