package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type (
	Option                func(*Server)
	InstrumentationOption func(instrumentation *Instrumentation)
)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.log = logger }
}

// WithEnabled(false) makes Start and Stop return ErrMetricsDisabled.
func WithEnabled(enabled bool) Option {
	return func(s *Server) { s.enabled = enabled }
}

func WithPath(path string) Option {
	return func(s *Server) { s.path = path }
}

// WithPort sets the listening port. Port 0 picks a free one, see Server.Addr.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

func WithHost(host string) Option {
	return func(s *Server) { s.host = host }
}

func WithHttpTimeout(timeout time.Duration) Option {
	return func(s *Server) { s.httpReadTimeout = timeout }
}

func WithHttpHeaderTimeout(timeout time.Duration) Option {
	return func(s *Server) { s.httpReadHeaderTimeout = timeout }
}

func WithCounter(typ InstrumentationType, name, help string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.Counters[typ] = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: i.namespace, Name: name, Help: help,
		})
	}
}

func WithCounterVec(typ InstrumentationType, name, help string, labels []string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.CounterVecs[typ] = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: i.namespace, Name: name, Help: help,
		}, labels)
	}
}

func WithGauge(typ InstrumentationType, name, help string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.Gauges[typ] = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: i.namespace, Name: name, Help: help,
		})
	}
}

func WithGaugeVec(typ InstrumentationType, name, help string, labels []string) InstrumentationOption {
	return func(i *Instrumentation) {
		i.GaugeVecs[typ] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: i.namespace, Name: name, Help: help,
		}, labels)
	}
}

func WithHistogram(typ InstrumentationType, name, help string, buckets []float64) InstrumentationOption {
	return func(i *Instrumentation) {
		i.Histograms[typ] = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: i.namespace, Name: name, Help: help, Buckets: buckets,
		})
	}
}
