package planner

import (
	"github.com/rs/zerolog"

	"github.com/dora-network/num2int/metrics"
	"github.com/dora-network/num2int/operator"
)

type options struct {
	logger     zerolog.Logger
	metrics    *metrics.FoldInstrumentation
	source     operator.InvalidationSource
	candidates []operator.Key
	enabled    bool
}

type Option func(options) options

func WithLogger(logger zerolog.Logger) Option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithMetrics counts fold outcomes and registry events on m.
func WithMetrics(m *metrics.FoldInstrumentation) Option {
	return func(o options) options {
		o.metrics = m
		return o
	}
}

// WithInvalidationSource empties the registry whenever source reports a catalog change.
func WithInvalidationSource(source operator.InvalidationSource) Option {
	return func(o options) options {
		o.source = source
		return o
	}
}

func WithCandidates(keys []operator.Key) Option {
	return func(o options) options {
		o.candidates = keys
		return o
	}
}

// WithFoldEnabled sets the initial state of the enable flag. Defaults to enabled.
func WithFoldEnabled(enabled bool) Option {
	return func(o options) options {
		o.enabled = enabled
		return o
	}
}

// WithConfig applies the settings of cfg that concern the engine itself.
func WithConfig(cfg Config) Option {
	return WithFoldEnabled(cfg.FoldEnabled)
}

func applyOptions(opts ...Option) options {
	o := options{
		logger:  zerolog.Nop(),
		enabled: true,
	}
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}
