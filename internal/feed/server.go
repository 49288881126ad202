// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package feed serves the running match to viewers: a websocket stream of
// tick events and game logs, and JSON endpoints for the current state.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/match"
)

// Log endpoint limits.
const (
	DefaultLogLimit = 100
	MaxLogLimit     = 1000
)

// Source is the part of the match runner the feed reads.
type Source interface {
	Status() match.Status
	Entities() []entity.Entity
	MatchConfig() (match.Config, bool)
}

// ViewersGauge tracks connected websocket viewers.
var ViewersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "abduction_feed_viewers",
	Help: "Connected websocket viewers",
})

// RegisterMetrics registers feed metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ViewersGauge)
}

// Server is the viewer-facing HTTP server.
type Server struct {
	addr       string
	source     Source
	publisher  *core.Publisher
	upgrader   websocket.Upgrader
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
	closing    chan struct{}
	closeOnce  sync.Once
	conns      sync.WaitGroup
}

// NewServer creates a feed server.
func NewServer(addr string, source Source, publisher *core.Publisher) *Server {
	return &Server{
		addr:      addr,
		source:    source,
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		closing: make(chan struct{}),
	}
}

// Handler returns the feed routes.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/entities", s.handleEntities)
	api.HandleFunc("GET /api/match", s.handleMatch)
	api.HandleFunc("GET /api/logs", s.handleLogs)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("/api/", gzhttp.GzipHandler(api))
	return mux
}

// Start begins serving. The returned channel receives a serve error, and is
// closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("feed server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("feed server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("feed server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down and disconnects viewers.
func (s *Server) Stop(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	if !s.running.CompareAndSwap(true, false) {
		s.conns.Wait()
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.With("operation", "shutdown_feed_server").Wrap(err)
	}
	s.conns.Wait()
	slog.Info("feed server stopped")
	return nil
}

// Addr returns the listening address, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleEntities(w http.ResponseWriter, _ *http.Request) {
	entities := s.source.Entities()
	if entities == nil {
		entities = []entity.Entity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

type matchResponse struct {
	Config match.Config `json:"config"`
	Status match.Status `json:"status"`
}

func (s *Server) handleMatch(w http.ResponseWriter, _ *http.Request) {
	cfg, ok := s.source.MatchConfig()
	if !ok {
		writeError(w, http.StatusNotFound, "no match running")
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{Config: cfg, Status: s.source.Status()})
}

type logsResponse struct {
	MatchID string            `json:"match_id"`
	Logs    []json.RawMessage `json:"logs"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		cfg, ok := s.source.MatchConfig()
		if !ok {
			writeError(w, http.StatusNotFound, "no match running")
			return
		}
		matchID = cfg.MatchID
	}

	limit := DefaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxLogLimit)
	}

	events, err := s.publisher.Store().Tail(r.Context(), core.LogStream(matchID), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "tail game logs", "match_id", matchID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read logs")
		return
	}

	resp := logsResponse{MatchID: matchID, Logs: make([]json.RawMessage, 0, len(events))}
	for _, ev := range events {
		resp.Logs = append(resp.Logs, ev.Payload)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
