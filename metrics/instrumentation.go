package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentationType identifies a collector within an Instrumentation.
type InstrumentationType uint64

const (
	InstrumentationTypeVersion InstrumentationType = iota
	InstrumentationTypeFoldResults
	InstrumentationTypeRegistryPopulations
	InstrumentationTypeRegistryInvalidations
	InstrumentationTypeRegistrySize
	InstrumentationTypeInvalidationEvents
	InstrumentationTypeCatalogLookupDuration
)

// Instrumentation is a set of collectors sharing a namespace, keyed by what they measure.
type Instrumentation struct {
	namespace   string
	Counters    map[InstrumentationType]prometheus.Counter
	CounterVecs map[InstrumentationType]*prometheus.CounterVec
	Gauges      map[InstrumentationType]prometheus.Gauge
	GaugeVecs   map[InstrumentationType]*prometheus.GaugeVec
	Histograms  map[InstrumentationType]prometheus.Histogram
}

func NewInstrumentation(namespace string, opts ...InstrumentationOption) *Instrumentation {
	i := &Instrumentation{
		namespace:   namespace,
		Counters:    make(map[InstrumentationType]prometheus.Counter),
		CounterVecs: make(map[InstrumentationType]*prometheus.CounterVec),
		Gauges:      make(map[InstrumentationType]prometheus.Gauge),
		GaugeVecs:   make(map[InstrumentationType]*prometheus.GaugeVec),
		Histograms:  make(map[InstrumentationType]prometheus.Histogram),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Instrumentation) collectors() []prometheus.Collector {
	var cs []prometheus.Collector
	for _, c := range i.Counters {
		cs = append(cs, c)
	}
	for _, c := range i.CounterVecs {
		cs = append(cs, c)
	}
	for _, c := range i.Gauges {
		cs = append(cs, c)
	}
	for _, c := range i.GaugeVecs {
		cs = append(cs, c)
	}
	for _, c := range i.Histograms {
		cs = append(cs, c)
	}
	return cs
}

// Register adds every collector to reg.
func (i *Instrumentation) Register(reg prometheus.Registerer) error {
	for _, c := range i.collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}
