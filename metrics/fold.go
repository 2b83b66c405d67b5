package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values of the fold results counter.
const (
	OutcomeConstant  = "constant"
	OutcomeRewritten = "rewritten"
	OutcomeNoRewrite = "no_rewrite"
	OutcomeDisabled  = "disabled"
	OutcomeError     = "error"
)

// FoldInstrumentation counts fold outcomes and operator registry lifecycle events. It
// satisfies operator.Observer.
type FoldInstrumentation struct {
	*Instrumentation
}

// NewFoldInstrumentation defines the fold and registry collectors under namespace.
func NewFoldInstrumentation(namespace string) *FoldInstrumentation {
	return &FoldInstrumentation{NewInstrumentation(namespace,
		WithGaugeVec(InstrumentationTypeVersion, "version", "Build version of the folding engine", []string{"version"}),
		WithCounterVec(InstrumentationTypeFoldResults, "fold_results_total",
			"Comparisons seen by the constant folder, by outcome and operator", []string{"outcome", "operator"}),
		WithCounter(InstrumentationTypeRegistryPopulations, "operator_registry_populations_total",
			"Times the operator registry was read from the catalog"),
		WithCounter(InstrumentationTypeRegistryInvalidations, "operator_registry_invalidations_total",
			"Times the operator registry was invalidated"),
		WithGauge(InstrumentationTypeRegistrySize, "operator_registry_size",
			"Operators held by the registry, zero while empty"),
		WithCounterVec(InstrumentationTypeInvalidationEvents, "catalog_invalidation_events_total",
			"Catalog invalidation events received, by topic", []string{"topic"}),
		WithHistogram(InstrumentationTypeCatalogLookupDuration, "catalog_lookup_duration_seconds",
			"Latency of bulk operator lookups against the catalog", prometheus.DefBuckets),
	)}
}

// Fold counts one fold outcome.
func (f *FoldInstrumentation) Fold(outcome, operator string) {
	f.CounterVecs[InstrumentationTypeFoldResults].WithLabelValues(outcome, operator).Inc()
}

func (f *FoldInstrumentation) RegistryPopulated(size int) {
	f.Counters[InstrumentationTypeRegistryPopulations].Inc()
	f.Gauges[InstrumentationTypeRegistrySize].Set(float64(size))
}

func (f *FoldInstrumentation) RegistryInvalidated() {
	f.Counters[InstrumentationTypeRegistryInvalidations].Inc()
	f.Gauges[InstrumentationTypeRegistrySize].Set(0)
}

// InvalidationEvent counts one record read from an invalidation topic.
func (f *FoldInstrumentation) InvalidationEvent(topic string) {
	f.CounterVecs[InstrumentationTypeInvalidationEvents].WithLabelValues(topic).Inc()
}

// CatalogLookup records the latency of one catalog read.
func (f *FoldInstrumentation) CatalogLookup(elapsed time.Duration) {
	f.Histograms[InstrumentationTypeCatalogLookupDuration].Observe(elapsed.Seconds())
}

// SetVersion publishes the build version as a constant gauge.
func (f *FoldInstrumentation) SetVersion(version string) {
	f.GaugeVecs[InstrumentationTypeVersion].With(prometheus.Labels{"version": version}).Set(1)
}
