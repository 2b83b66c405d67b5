package operator

import (
	"time"

	"github.com/rs/zerolog"
)

// InvalidationSource delivers catalog-changed notifications. A registry built with
// WithInvalidationSource registers its Invalidate method as a callback.
type InvalidationSource interface {
	OnInvalidate(func())
}

// Observer receives registry lifecycle events, typically to feed metrics.
type Observer interface {
	RegistryPopulated(size int)
	RegistryInvalidated()
	CatalogLookup(elapsed time.Duration)
}

type options struct {
	logger     zerolog.Logger
	source     InvalidationSource
	observer   Observer
	candidates []Key
}

type Option func(options) options

// WithLogger sets the logger the registry reports population and invalidation on.
func WithLogger(logger zerolog.Logger) Option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithInvalidationSource subscribes the registry to catalog-changed notifications.
func WithInvalidationSource(source InvalidationSource) Option {
	return func(o options) options {
		o.source = source
		return o
	}
}

func WithObserver(observer Observer) Option {
	return func(o options) options {
		o.observer = observer
		return o
	}
}

// WithCandidates restricts the keys asked of the catalog. Defaults to Candidates().
func WithCandidates(keys []Key) Option {
	return func(o options) options {
		o.candidates = keys
		return o
	}
}

type nopObserver struct{}

func (nopObserver) RegistryPopulated(int)       {}
func (nopObserver) RegistryInvalidated()        {}
func (nopObserver) CatalogLookup(time.Duration) {}

func defaultOptions() options {
	return options{
		logger:     zerolog.Nop(),
		observer:   nopObserver{},
		candidates: Candidates(),
	}
}

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}
