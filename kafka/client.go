package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	"github.com/dora-network/num2int/errors"
)

// Client is the part of *kgo.Client that invalidation publishing and listening need.
type Client interface {
	Close()
	Ping(ctx context.Context) error
	ProduceSync(ctx context.Context, record ...*kgo.Record) kgo.ProduceResults
	PollRecords(ctx context.Context, maxPollRecords int) kgo.Fetches
	// CommitUncommittedOffsets commits every consumed partition with an uncommitted offset.
	CommitUncommittedOffsets(ctx context.Context) error
}

type NewClientFunc func(config Config, produceTopic, consumerGroup string, consumeTopics ...string) (Client, error)

var _ NewClientFunc = NewClient

// NewClient connects a client for publishing to produceTopic, consuming consumeTopics as
// consumerGroup, or both. Empty arguments leave the matching role unconfigured.
func NewClient(config Config, produceTopic, consumerGroup string, consumeTopics ...string) (Client, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New(errors.InvalidInputError, "kafka brokers must be provided")
	}

	opts := []kgo.Opt{kgo.SeedBrokers(config.Brokers...)}
	if config.ClientID != "" {
		opts = append(opts, kgo.ClientID(config.ClientID))
	}
	if produceTopic != "" {
		opts = append(opts, kgo.DefaultProduceTopic(produceTopic))
	}
	if consumerGroup != "" {
		opts = append(opts, kgo.ConsumerGroup(consumerGroup), kgo.DisableAutoCommit())
	}
	if len(consumeTopics) > 0 {
		opts = append(opts, kgo.ConsumeTopics(consumeTopics...))
		if config.ResetToLatest {
			opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
		}
	}
	if a := config.Authentication; a.Username != "" && a.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{User: a.Username, Pass: a.Password}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInputError, err, "failed to create kafka client")
	}
	return client, nil
}
