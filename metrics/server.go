package metrics

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ErrMetricsDisabled   = errors.New("metrics server is disabled")
	ErrMetricsRunning    = errors.New("metrics server is already running")
	ErrMetricsNotRunning = errors.New("metrics server is not running")
)

const (
	defaultReadTimeout       = time.Minute
	defaultReadHeaderTimeout = time.Minute
	defaultPort              = 8081
	defaultPath              = "/metrics"
)

// Server exposes a private prometheus registry over HTTP.
type Server struct {
	mu                    sync.Mutex
	srv                   *http.Server
	ln                    net.Listener
	reg                   *prometheus.Registry
	log                   zerolog.Logger
	enabled               bool
	host                  string
	port                  int
	path                  string
	httpReadTimeout       time.Duration
	httpReadHeaderTimeout time.Duration
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		enabled:               true,
		log:                   zerolog.Nop(),
		reg:                   prometheus.NewRegistry(),
		port:                  defaultPort,
		path:                  defaultPath,
		httpReadTimeout:       defaultReadTimeout,
		httpReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Path() string {
	if s.path == "" {
		return defaultPath
	}
	return s.path
}

// Addr is the bound address while running, nil otherwise.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener before returning, so a taken port is reported here rather
// than logged from the serving goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrMetricsDisabled
	}
	if s.srv != nil {
		return ErrMetricsRunning
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(s.Path(), promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       s.httpReadTimeout,
		ReadHeaderTimeout: s.httpReadHeaderTimeout,
	}
	s.srv, s.ln = srv, ln

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("path", s.Path()).
		Msg("starting metrics server")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrMetricsDisabled
	}
	if s.srv == nil {
		return ErrMetricsNotRunning
	}

	err := s.srv.Close()
	s.srv, s.ln = nil, nil
	return err
}

func (s *Server) Registry() *prometheus.Registry {
	return s.reg
}

func (s *Server) Register(instrumentation *Instrumentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return instrumentation.Register(s.reg)
}

// StartMetricsServer registers the fold collectors, publishes the version gauge and
// starts serving. The returned server is nil when metrics are disabled.
func StartMetricsServer(config Config, instrumentation *FoldInstrumentation, logger zerolog.Logger, version string) (*Server, error) {
	if !config.Enabled {
		logger.Debug().Msg("metrics server disabled")
		return nil, nil
	}

	svr := NewServer(
		WithLogger(logger),
		WithHost(config.Host),
		WithPort(config.Port),
		WithPath(config.Path),
		WithHttpTimeout(config.HttpTimeout),
		WithHttpHeaderTimeout(config.HttpHeaderTimeout),
	)
	if err := svr.Register(instrumentation.Instrumentation); err != nil {
		logger.Err(err).Msg("failed to register fold metrics")
		return nil, err
	}

	instrumentation.SetVersion(version)
	if err := svr.Start(); err != nil {
		logger.Err(err).Msg("failed to start metrics server")
		return nil, err
	}
	return svr, nil
}
