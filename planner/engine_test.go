package planner_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dora-network/num2int/fold"
	"github.com/dora-network/num2int/metrics"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
	"github.com/dora-network/num2int/planner"
)

type failingCatalog struct{}

func (failingCatalog) LookupOperators(context.Context, []operator.Key) (map[operator.Key]operator.Identity, error) {
	return nil, stderrors.New("catalog unreachable")
}

type manualSource struct {
	callbacks []func()
}

func (s *manualSource) OnInvalidate(f func()) { s.callbacks = append(s.callbacks, f) }

// racingCatalog announces an invalidation while every lookup is in flight, so no
// population it serves is ever published.
type racingCatalog struct {
	*operator.StaticCatalog
	source *manualSource
}

func (c racingCatalog) LookupOperators(ctx context.Context, keys []operator.Key) (map[operator.Key]operator.Identity, error) {
	c.source.fire()
	return c.StaticCatalog.LookupOperators(ctx, keys)
}

func (s *manualSource) fire() {
	for _, f := range s.callbacks {
		f()
	}
}

func gather(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func decimal(t *testing.T, s string) fold.Literal {
	t.Helper()
	v, err := numeric.ParseString(s)
	require.NoError(t, err)
	return fold.Decimal(v)
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	gtKey := operator.Key{Literal: operator.Numeric, Width: numeric.W32, Kind: operator.GT}
	catalog := operator.NumberedCatalog(500, operator.Candidates())
	gt, ok := catalog.Identity(gtKey)
	require.True(t, ok)

	inst := metrics.NewFoldInstrumentation("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, inst.Register(reg))

	source := &manualSource{}
	engine := planner.NewEngine(catalog,
		planner.WithMetrics(inst),
		planner.WithInvalidationSource(source),
	)

	t.Run("Should populate the registry on warmup", func(t *testing.T) {
		require.NoError(t, engine.Warmup(ctx))
		assert.Equal(t, operator.StatePopulated, engine.Registry().State())
		assert.Equal(t, float64(len(operator.Candidates())), gather(t, reg, "test_operator_registry_size", nil))
		assert.Equal(t, float64(1), gather(t, reg, "test_operator_registry_populations_total", nil))
	})

	t.Run("Should fold and count by operator", func(t *testing.T) {
		res := engine.Fold(ctx, fold.Expr{Operator: gt, Width: numeric.W32, Literal: decimal(t, "10.5")})
		assert.Equal(t, fold.Rewritten(operator.GE, numeric.W32, 11), res)
		assert.Equal(t, float64(1), gather(t, reg, "test_fold_results_total",
			map[string]string{"outcome": "rewritten", "operator": gtKey.String()}))
	})

	t.Run("Should leave unknown operators alone", func(t *testing.T) {
		res := engine.Fold(ctx, fold.Expr{Operator: 7, Width: numeric.W32, Literal: decimal(t, "1")})
		assert.Equal(t, fold.KindNoRewrite, res.Kind())
		assert.Equal(t, float64(1), gather(t, reg, "test_fold_results_total",
			map[string]string{"outcome": "no_rewrite", "operator": "unknown"}))
	})

	t.Run("Should not fold while disabled", func(t *testing.T) {
		engine.SetFoldEnabled(false)
		assert.False(t, engine.FoldEnabled())
		res := engine.Fold(ctx, fold.Expr{Operator: gt, Width: numeric.W32, Literal: decimal(t, "10.5")})
		assert.Equal(t, fold.KindNoRewrite, res.Kind())
		assert.Equal(t, float64(1), gather(t, reg, "test_fold_results_total",
			map[string]string{"outcome": "disabled"}))
		engine.SetFoldEnabled(true)
	})

	t.Run("Should drop and reload the registry on invalidation", func(t *testing.T) {
		source.fire()
		assert.Equal(t, operator.StateEmpty, engine.Registry().State())
		assert.Equal(t, float64(0), gather(t, reg, "test_operator_registry_size", nil))

		catalog.Remove(gtKey)
		res := engine.Fold(ctx, fold.Expr{Operator: gt, Width: numeric.W32, Literal: decimal(t, "10.5")})
		assert.Equal(t, fold.KindNoRewrite, res.Kind())
		assert.Equal(t, float64(2), gather(t, reg, "test_operator_registry_populations_total", nil))
	})
}

func TestEngine_CatalogFailure(t *testing.T) {
	inst := metrics.NewFoldInstrumentation("failing")
	reg := prometheus.NewRegistry()
	require.NoError(t, inst.Register(reg))

	engine := planner.NewEngine(failingCatalog{}, planner.WithMetrics(inst))

	t.Run("Should fail warmup", func(t *testing.T) {
		assert.Error(t, engine.Warmup(context.Background()))
	})

	t.Run("Should fall back to no rewrite", func(t *testing.T) {
		res := engine.Fold(context.Background(), fold.Expr{Operator: 1, Width: numeric.W16, Literal: fold.Float64(2.5)})
		assert.Equal(t, fold.KindNoRewrite, res.Kind())
		assert.Equal(t, float64(1), gather(t, reg, "failing_fold_results_total",
			map[string]string{"outcome": "error"}))
	})
}

func TestEngine_Disabled(t *testing.T) {
	cfg := planner.DefaultConfig()
	cfg.FoldEnabled = false
	engine := planner.NewEngine(operator.NumberedCatalog(1, operator.Candidates()), planner.WithConfig(cfg))

	assert.False(t, engine.FoldEnabled())
	res := engine.Fold(context.Background(), fold.Expr{Operator: 1, Width: numeric.W16, Literal: fold.Float64(2.5)})
	assert.Equal(t, fold.KindNoRewrite, res.Kind())
	assert.Equal(t, operator.StateEmpty, engine.Registry().State())
}

func TestEngine_InvalidatedDuringFold(t *testing.T) {
	ctx := context.Background()

	gtKey := operator.Key{Literal: operator.Numeric, Width: numeric.W64, Kind: operator.GT}
	static := operator.NumberedCatalog(1, operator.Candidates())
	gt, ok := static.Identity(gtKey)
	require.True(t, ok)

	inst := metrics.NewFoldInstrumentation("racing")
	reg := prometheus.NewRegistry()
	require.NoError(t, inst.Register(reg))

	source := &manualSource{}
	engine := planner.NewEngine(racingCatalog{StaticCatalog: static, source: source},
		planner.WithMetrics(inst),
		planner.WithInvalidationSource(source),
	)

	t.Run("Should read the catalog once per fold", func(t *testing.T) {
		res := engine.Fold(ctx, fold.Expr{Operator: gt, Width: numeric.W64, Literal: decimal(t, "-0.5")})
		assert.Equal(t, fold.Rewritten(operator.GE, numeric.W64, 0), res)
		assert.Equal(t, int64(1), static.Lookups())
		assert.Equal(t, operator.StateEmpty, engine.Registry().State())
	})

	t.Run("Should label the outcome with the operator it resolved", func(t *testing.T) {
		assert.Equal(t, float64(1), gather(t, reg, "racing_fold_results_total",
			map[string]string{"outcome": "rewritten", "operator": gtKey.String()}))
	})
}
