// Package invalidation tails the catalog invalidation topic and tells subscribers, the
// operator registry among them, to drop what they cached from the catalog.
package invalidation

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/kafka"
)

// Listener consumes the invalidation topic. Every poll that returns at least one record
// fires the registered callbacks once. It satisfies operator.InvalidationSource.
type Listener struct {
	mu         sync.Mutex
	options    options
	cancelFunc context.CancelFunc
	done       chan struct{}
	status     Status
	ownsClient bool
	callbacks  []func()

	received    atomic.Int64
	lastVersion atomic.Int64
}

// New creates a listener with the provided options.
func New(opts ...Option) *Listener {
	return &Listener{
		options: applyOptions(opts...),
		status:  StatusNotReady,
	}
}

// OnInvalidate registers f to run on every invalidation.
func (l *Listener) OnInvalidate(f func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, f)
}

func (l *Listener) Ready() bool {
	return l.Status() == StatusReady
}

// Init connects to the brokers, or uses the client provided in the options, and checks
// that one of them answers.
func (l *Listener) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.status {
	case StatusRunning:
		return errors.ErrListenerRunning
	case StatusStopped:
		return errors.ErrListenerStopped
	}
	if l.options.client != nil {
		l.status = StatusReady
		return nil
	}

	topic := l.topic()
	var client kafka.Client
	connect := func() error {
		c, err := l.options.newClient(l.options.config, "", l.options.consumerGroup, topic)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			l.options.logger.Warn().Err(err).Strs("brokers", l.options.config.Brokers).Msg("kafka not reachable, retrying")
			return err
		}
		client = c
		return nil
	}
	if err := backoff.Retry(connect, backoff.WithContext(l.options.backoff(), ctx)); err != nil {
		return errors.Wrap(errors.UnavailableErr, err, "connect invalidation listener")
	}

	l.options.client = client
	l.ownsClient = true
	l.status = StatusReady
	l.options.logger.Info().
		Str("topic", topic).
		Str("group", l.options.consumerGroup).
		Msg("invalidation listener connected")
	return nil
}

// Start polls the topic in the background until Stop is called or parent is done.
func (l *Listener) Start(parent context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.status {
	case StatusNotReady:
		return errors.ErrListenerNotReady
	case StatusRunning:
		return errors.ErrListenerRunning
	case StatusStopped:
		return errors.ErrListenerStopped
	}

	ctx, cancel := context.WithCancel(parent)
	l.cancelFunc = cancel
	l.done = make(chan struct{})
	l.status = StatusRunning
	go l.run(ctx, l.done)
	return nil
}

func (l *Listener) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			pollCtx, cancel := context.WithTimeout(ctx, l.options.pollTimeout)
			fetches := l.options.client.PollRecords(pollCtx, l.options.maxPollRecords)
			cancel()
			l.process(ctx, fetches)
		}
	}
}

func (l *Listener) process(ctx context.Context, fetches kgo.Fetches) {
	count := 0
	for _, fetch := range fetches {
		for _, topic := range fetch.Topics {
			for _, partition := range topic.Partitions {
				if partition.Err != nil {
					if !isContextErr(partition.Err) {
						l.options.logger.Error().
							Str("topic", topic.Topic).
							Int32("partition", partition.Partition).
							Err(partition.Err).
							Msg("Error fetching invalidation records")
					}
					continue
				}
				for _, record := range partition.Records {
					count++
					l.options.recorder.InvalidationEvent(topic.Topic)
					l.record(topic.Topic, record)
				}
			}
		}
	}
	if count == 0 {
		return
	}

	l.received.Add(int64(count))
	l.invalidate()

	if l.options.consumerGroup != "" {
		if err := l.options.client.CommitUncommittedOffsets(ctx); err != nil && !isContextErr(err) {
			l.options.logger.Error().Err(err).Msg("failed to commit invalidation offsets")
		}
	}
}

func (l *Listener) record(topic string, record *kgo.Record) {
	event, err := DecodeEvent(record.Value)
	if err != nil {
		// any record invalidates, readable or not
		l.options.logger.Warn().Str("topic", topic).Err(err).Msg("undecodable invalidation event")
		return
	}
	for {
		last := l.lastVersion.Load()
		if event.CatalogVersion <= last || l.lastVersion.CompareAndSwap(last, event.CatalogVersion) {
			break
		}
	}
	l.options.logger.Info().
		Str("topic", topic).
		Str("reason", event.Reason).
		Int64("catalog_version", event.CatalogVersion).
		Msg("catalog invalidated")
}

func (l *Listener) invalidate() {
	l.mu.Lock()
	callbacks := make([]func(), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.mu.Unlock()

	for _, f := range callbacks {
		f()
	}
}

// Stop ends polling and waits for the poll loop to exit. It closes the Kafka client if
// Init created it. A stopped listener cannot be initialized or started again.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel, done := l.cancelFunc, l.done
	l.cancelFunc, l.done = nil, nil
	l.status = StatusStopped
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ownsClient && l.options.client != nil {
		l.options.client.Close()
		l.options.client = nil
		l.ownsClient = false
	}
}

func (l *Listener) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Received counts the invalidation records consumed so far.
func (l *Listener) Received() int64 {
	return l.received.Load()
}

// LastVersion is the highest catalog version announced so far, zero if none was.
func (l *Listener) LastVersion() int64 {
	return l.lastVersion.Load()
}

// Lag reports how far the listener's consumer group trails the topic. It needs a
// consumer group and a client created by Init or a *kgo.Client.
func (l *Listener) Lag(ctx context.Context) ([]kafka.ConsumerLag, error) {
	l.mu.Lock()
	client, group := l.options.client, l.options.consumerGroup
	l.mu.Unlock()

	kc, ok := client.(*kgo.Client)
	if !ok || group == "" {
		return nil, errors.New(errors.InvalidInputError, "lag needs a kafka client and a consumer group")
	}
	return kafka.CollectConsumerLag(ctx, kc, group)
}

func (l *Listener) topic() string {
	if l.options.config.InvalidationTopic != "" {
		return l.options.config.InvalidationTopic
	}
	return kafka.DefaultInvalidationTopic
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
