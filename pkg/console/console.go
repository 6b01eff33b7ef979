// Package console provides the optional interactive debug surface held
// open while the worker runs: a local HTTP server exposing pprof profiles
// and Prometheus metrics. It implements the worker's Console capability.
package console

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/warden/pkg/log"
)

// DefaultAddr is the default listen address of the debug console.
const DefaultAddr = "localhost:6067"

// Server is a debug console backed by a local HTTP listener.
// Use New() to create one and pass it to the worker via WithConsole.
type Server struct {
	addr     string
	logger   log.Logger
	gatherer prometheus.Gatherer

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// Option configures optional behavior of a console Server.
type Option func(*Server)

// WithGatherer sets the metrics gatherer served on /metrics.
// Defaults to the prometheus default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a debug console listening on addr. An empty addr selects
// DefaultAddr.
func New(addr string, logger log.Logger, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	s := &Server{
		addr:     addr,
		logger:   logger,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start makes the console available. It binds the listener synchronously so
// address conflicts surface immediately, then serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("console already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.ln = ln
	s.srv = &http.Server{Handler: mux}

	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug console terminated", log.Err(err))
		}
	}(s.srv, ln)

	s.logger.Info("debug console listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Close releases the console. Safe to call on a never-started server.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return nil
	}
	err := s.srv.Close()
	s.srv = nil
	s.ln = nil
	return err
}

// Addr returns the bound listener address, or the configured address if the
// console has not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}
