package invalidation

import (
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/dora-network/num2int/kafka"
)

// Recorder counts invalidation records as they arrive.
type Recorder interface {
	InvalidationEvent(topic string)
}

type options struct {
	config         kafka.Config
	consumerGroup  string
	pollTimeout    time.Duration
	maxPollRecords int
	logger         zerolog.Logger
	client         kafka.Client
	newClient      kafka.NewClientFunc
	recorder       Recorder
	backoff        func() backoff.BackOff
}

type Option func(options) options

// WithKafkaConfig sets the brokers, topic and credentials the listener connects with.
func WithKafkaConfig(config kafka.Config) Option {
	return func(o options) options {
		o.config = config
		return o
	}
}

// WithConsumerGroup overrides the per-worker consumer group. An empty group consumes
// without committing offsets.
func WithConsumerGroup(consumerGroup string) Option {
	return func(o options) options {
		o.consumerGroup = consumerGroup
		return o
	}
}

// WithPollTimeout sets how long a single poll waits for records.
func WithPollTimeout(timeout time.Duration) Option {
	return func(o options) options {
		o.pollTimeout = timeout
		return o
	}
}

// WithMaxPollRecords caps the records taken in one poll.
func WithMaxPollRecords(records int) Option {
	return func(o options) options {
		o.maxPollRecords = records
		return o
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithClient sets the Kafka client for the listener. Useful for testing. A listener does
// not close a client it was given.
func WithClient(client kafka.Client) Option {
	return func(o options) options {
		o.client = client
		return o
	}
}

// WithNewClientFunc replaces the constructor Init uses to connect.
func WithNewClientFunc(f kafka.NewClientFunc) Option {
	return func(o options) options {
		o.newClient = f
		return o
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(o options) options {
		o.recorder = recorder
		return o
	}
}

// WithBackOff sets the retry policy Init connects under.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(o options) options {
		o.backoff = f
		return o
	}
}

type nopRecorder struct{}

func (nopRecorder) InvalidationEvent(string) {}

func defaultOptions() options {
	return options{
		config:         kafka.DefaultConfig(),
		consumerGroup:  kafka.ConsumerGroup(kafka.InvalidationComponent),
		pollTimeout:    time.Second,
		maxPollRecords: 100,
		// Default logger writes to Stderr
		logger:    zerolog.New(os.Stderr),
		newClient: kafka.NewClient,
		recorder:  nopRecorder{},
		backoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
		},
	}
}

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}
