package invalidation_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/invalidation"
	"github.com/dora-network/num2int/kafka"
	"github.com/dora-network/num2int/operator"
)

// fakeClient hands out queued records one poll at a time and records what was produced.
type fakeClient struct {
	mu       sync.Mutex
	queue    chan []*kgo.Record
	produced []*kgo.Record
	commits  atomic.Int64
	closed   atomic.Bool
	pingErr  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{queue: make(chan []*kgo.Record, 16)}
}

func (f *fakeClient) Close() { f.closed.Store(true) }

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) ProduceSync(_ context.Context, records ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(records))
	for _, r := range records {
		f.produced = append(f.produced, r)
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func (f *fakeClient) PollRecords(ctx context.Context, _ int) kgo.Fetches {
	select {
	case <-ctx.Done():
		return kgo.Fetches{{Topics: []kgo.FetchTopic{{
			Partitions: []kgo.FetchPartition{{Partition: -1, Err: ctx.Err()}},
		}}}}
	case records := <-f.queue:
		return kgo.Fetches{{Topics: []kgo.FetchTopic{{
			Topic:      kafka.DefaultInvalidationTopic,
			Partitions: []kgo.FetchPartition{{Records: records}},
		}}}}
	}
}

func (f *fakeClient) CommitUncommittedOffsets(context.Context) error {
	f.commits.Add(1)
	return nil
}

func (f *fakeClient) push(values ...[]byte) {
	records := make([]*kgo.Record, len(values))
	for i, v := range values {
		records[i] = &kgo.Record{Topic: kafka.DefaultInvalidationTopic, Value: v}
	}
	f.queue <- records
}

type topicCounter struct {
	n atomic.Int64
}

func (c *topicCounter) InvalidationEvent(string) { c.n.Add(1) }

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestListener(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := newFakeClient()
	counter := &topicCounter{}
	listener := invalidation.New(
		invalidation.WithClient(client),
		invalidation.WithLogger(zerolog.Nop()),
		invalidation.WithPollTimeout(50*time.Millisecond),
		invalidation.WithRecorder(counter),
	)

	var fired atomic.Int64
	listener.OnInvalidate(func() { fired.Add(1) })

	t.Run("Should not be ready after creation", func(t *testing.T) {
		assert.False(t, listener.Ready())
		assert.Equal(t, invalidation.StatusNotReady, listener.Status())
	})

	t.Run("Should not start without initialization", func(t *testing.T) {
		err := listener.Start(ctx)
		assert.ErrorIs(t, err, errors.ErrListenerNotReady)
	})

	t.Run("Should be ready after initialization", func(t *testing.T) {
		require.NoError(t, listener.Init(ctx))
		assert.True(t, listener.Ready())
	})

	t.Run("Should not start twice", func(t *testing.T) {
		require.NoError(t, listener.Start(ctx))
		assert.Equal(t, invalidation.StatusRunning, listener.Status())
		assert.ErrorIs(t, listener.Start(ctx), errors.ErrListenerRunning)
	})

	t.Run("Should fire once per poll with records", func(t *testing.T) {
		event, err := json.Marshal(invalidation.Event{Reason: "create operator", CatalogVersion: 7})
		require.NoError(t, err)
		client.push(event, []byte(`{"reason":"drop operator","catalog_version":5}`))

		eventually(t, func() bool { return fired.Load() == 1 })
		assert.Equal(t, int64(2), listener.Received())
		assert.Equal(t, int64(2), counter.n.Load())
		assert.Equal(t, int64(7), listener.LastVersion())
		eventually(t, func() bool { return client.commits.Load() == 1 })
	})

	t.Run("Should invalidate on undecodable records", func(t *testing.T) {
		client.push([]byte("not json"))
		eventually(t, func() bool { return fired.Load() == 2 })
		assert.Equal(t, int64(7), listener.LastVersion())
	})

	t.Run("Should not fire on empty polls", func(t *testing.T) {
		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, int64(2), fired.Load())
	})

	t.Run("Should stop without closing a borrowed client", func(t *testing.T) {
		listener.Stop()
		assert.Equal(t, invalidation.StatusStopped, listener.Status())
		assert.False(t, client.closed.Load())
		assert.ErrorIs(t, listener.Start(ctx), errors.ErrListenerStopped)
	})

	t.Run("Should report lag only for kgo clients", func(t *testing.T) {
		_, err := listener.Lag(ctx)
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})
}

func TestListener_InvalidatesRegistry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := newFakeClient()
	listener := invalidation.New(
		invalidation.WithClient(client),
		invalidation.WithLogger(zerolog.Nop()),
		invalidation.WithConsumerGroup(""),
		invalidation.WithPollTimeout(50*time.Millisecond),
	)
	catalog := operator.NumberedCatalog(100, operator.StandardKeys())
	registry := operator.NewRegistry(catalog, operator.WithInvalidationSource(listener))

	require.NoError(t, registry.Populate(ctx))
	require.Equal(t, operator.StatePopulated, registry.State())

	require.NoError(t, listener.Init(ctx))
	require.NoError(t, listener.Start(ctx))
	defer listener.Stop()

	t.Run("Should empty the registry on a record", func(t *testing.T) {
		client.push(nil)
		eventually(t, func() bool { return registry.State() == operator.StateEmpty })
		assert.Zero(t, client.commits.Load())
	})

	t.Run("Should repopulate on the next resolve", func(t *testing.T) {
		_, ok, err := registry.Resolve(ctx, 100)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), catalog.Lookups())
	})
}

func TestListener_Init(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	t.Run("Should connect through the client constructor", func(t *testing.T) {
		client := newFakeClient()
		var gotGroup string
		var gotTopics []string
		listener := invalidation.New(
			invalidation.WithLogger(zerolog.Nop()),
			invalidation.WithConsumerGroup("worker-1"),
			invalidation.WithNewClientFunc(func(_ kafka.Config, _ string, group string, topics ...string) (kafka.Client, error) {
				gotGroup, gotTopics = group, topics
				return client, nil
			}),
		)
		require.NoError(t, listener.Init(ctx))
		assert.Equal(t, "worker-1", gotGroup)
		assert.Equal(t, []string{kafka.DefaultInvalidationTopic}, gotTopics)

		require.NoError(t, listener.Start(ctx))
		listener.Stop()
		assert.True(t, client.closed.Load())

		_, err := listener.Lag(ctx)
		assert.True(t, errors.Is(err, errors.InvalidInputError))
	})

	t.Run("Should not restart after stop", func(t *testing.T) {
		client := newFakeClient()
		dials := 0
		listener := invalidation.New(
			invalidation.WithLogger(zerolog.Nop()),
			invalidation.WithPollTimeout(10*time.Millisecond),
			invalidation.WithNewClientFunc(func(kafka.Config, string, string, ...string) (kafka.Client, error) {
				dials++
				return client, nil
			}),
		)
		require.NoError(t, listener.Init(ctx))
		require.NoError(t, listener.Start(ctx))
		listener.Stop()
		require.True(t, client.closed.Load())

		assert.ErrorIs(t, listener.Start(ctx), errors.ErrListenerStopped)
		assert.ErrorIs(t, listener.Init(ctx), errors.ErrListenerStopped)
		assert.Equal(t, invalidation.StatusStopped, listener.Status())
		assert.Equal(t, 1, dials)
	})

	t.Run("Should give up when no broker answers", func(t *testing.T) {
		client := newFakeClient()
		client.pingErr = stderrors.New("connection refused")
		attempts := 0
		listener := invalidation.New(
			invalidation.WithLogger(zerolog.Nop()),
			invalidation.WithBackOff(func() backoff.BackOff {
				return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
			}),
			invalidation.WithNewClientFunc(func(kafka.Config, string, string, ...string) (kafka.Client, error) {
				attempts++
				return client, nil
			}),
		)
		err := listener.Init(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.UnavailableErr))
		assert.Equal(t, 3, attempts)
		assert.False(t, listener.Ready())
	})
}

func TestPublish(t *testing.T) {
	client := newFakeClient()
	require.NoError(t, invalidation.Publish(context.Background(), client, "",
		invalidation.Event{Reason: "alter operator", CatalogVersion: 3}))

	require.Len(t, client.produced, 1)
	assert.Equal(t, kafka.DefaultInvalidationTopic, client.produced[0].Topic)

	event, err := invalidation.DecodeEvent(client.produced[0].Value)
	require.NoError(t, err)
	assert.Equal(t, invalidation.Event{Reason: "alter operator", CatalogVersion: 3}, event)
}
