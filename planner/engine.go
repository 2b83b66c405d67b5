// Package planner is the host-facing side of comparison folding: one Engine per worker
// owns the operator registry and the folder, and turns every failure into "leave the
// comparison as written".
package planner

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dora-network/num2int/fold"
	"github.com/dora-network/num2int/metrics"
	"github.com/dora-network/num2int/operator"
)

// Engine folds comparisons between integer columns and inexact constants. It is safe
// for concurrent use.
type Engine struct {
	registry *operator.Registry
	folder   *fold.Folder
	metrics  *metrics.FoldInstrumentation
	logger   zerolog.Logger
	enabled  atomic.Bool
}

// NewEngine creates an engine resolving operators through catalog. The registry is
// populated on the first Fold, or earlier through Warmup.
func NewEngine(catalog operator.Catalog, opts ...Option) *Engine {
	o := applyOptions(opts...)

	registryOpts := []operator.Option{operator.WithLogger(o.logger)}
	if o.metrics != nil {
		registryOpts = append(registryOpts, operator.WithObserver(o.metrics))
	}
	if o.source != nil {
		registryOpts = append(registryOpts, operator.WithInvalidationSource(o.source))
	}
	if o.candidates != nil {
		registryOpts = append(registryOpts, operator.WithCandidates(o.candidates))
	}

	registry := operator.NewRegistry(catalog, registryOpts...)
	e := &Engine{
		registry: registry,
		folder:   fold.New(registry),
		metrics:  o.metrics,
		logger:   o.logger,
	}
	e.enabled.Store(o.enabled)
	return e
}

// Fold returns the rewrite of expr, or NoRewrite when folding is disabled, the operator
// is unknown or the catalog cannot be read.
func (e *Engine) Fold(ctx context.Context, expr fold.Expr) fold.Result {
	if !e.enabled.Load() {
		e.count(metrics.OutcomeDisabled, "")
		return fold.NoRewrite()
	}

	res, sig, resolved, err := e.folder.FoldWithSignature(ctx, expr)
	if err != nil {
		e.logger.Error().
			Err(err).
			Uint32("operator", uint32(expr.Operator)).
			Msg("operator lookup failed, comparison left as written")
		e.count(metrics.OutcomeError, "")
		return fold.NoRewrite()
	}

	label := "unknown"
	if resolved {
		label = sig.Key.String()
	}
	e.count(res.Kind().String(), label)

	if res.Kind() != fold.KindNoRewrite {
		e.logger.Debug().
			Str("expr", expr.String()).
			Str("result", res.String()).
			Msg("comparison folded")
	}
	return res
}

func (e *Engine) count(outcome, operator string) {
	if e.metrics != nil {
		e.metrics.Fold(outcome, operator)
	}
}

// Warmup reads the operator catalog now so the first Fold does not pay for it.
func (e *Engine) Warmup(ctx context.Context) error {
	return e.registry.Populate(ctx)
}

// SetFoldEnabled switches folding on or off for subsequent Fold calls.
func (e *Engine) SetFoldEnabled(enabled bool) {
	if e.enabled.Swap(enabled) != enabled {
		e.logger.Info().Bool("enabled", enabled).Msg("comparison folding toggled")
	}
}

func (e *Engine) FoldEnabled() bool {
	return e.enabled.Load()
}

func (e *Engine) Registry() *operator.Registry {
	return e.registry
}
