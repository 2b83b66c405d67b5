package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Client is what the operator catalog needs from a connection: plain commands,
// pipelines and optimistic transactions.
type Client interface {
	redis.Cmdable
	Close() error
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

var (
	_ Client = (*redis.Client)(nil)
	_ Client = (*redis.ClusterClient)(nil)
)
