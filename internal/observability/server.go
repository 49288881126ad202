// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package observability serves Prometheus metrics and health probes.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessCheck returns nil when the server should receive traffic. The
// error text is served as the probe body otherwise.
type ReadinessCheck func() error

// Metrics are the process metrics owned by the server.
type Metrics struct {
	BuildInfo       *prometheus.GaugeVec
	ReadinessChecks *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "abduction_build_info",
			Help: "Build information, always 1",
		}, []string{"version"}),
		ReadinessChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "abduction_readiness_checks_total",
			Help: "Total number of readiness probes by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.BuildInfo, m.ReadinessChecks)
	return m
}

// Server serves /metrics, /healthz/liveness and /healthz/readiness.
type Server struct {
	addr     string
	registry *prometheus.Registry
	metrics  *Metrics
	ready    ReadinessCheck

	running  atomic.Bool
	listener net.Listener
	srv      *http.Server
}

// NewServer creates a server listening on addr once started. Each register
// func receives the server's registry so packages can add their collectors.
func NewServer(addr string, ready ReadinessCheck, register ...func(prometheus.Registerer)) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := newMetrics(reg)
	for _, fn := range register {
		fn(reg)
	}
	return &Server{addr: addr, registry: reg, metrics: metrics, ready: ready}
}

// Metrics returns the server's own metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Handler returns the probe and metrics routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("GET /healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		probe(w, nil)
	})
	mux.HandleFunc("GET /healthz/readiness", s.handleReadiness)
	return mux
}

// Start listens and serves in the background. The returned channel receives
// a serve error, if any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = ln

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.srv = srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("observability server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("observability server started", "addr", ln.Addr().String())
	return errCh, nil
}

// Stop shuts the server down. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.With("operation", "shutdown_observability_server").Wrap(err)
	}
	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	var err error
	if s.ready != nil {
		err = s.ready()
	}
	if err != nil {
		s.metrics.ReadinessChecks.WithLabelValues("not_ready").Inc()
	} else {
		s.metrics.ReadinessChecks.WithLabelValues("ready").Inc()
	}
	probe(w, err)
}

func probe(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + err.Error() + "\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
