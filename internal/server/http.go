package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeusync/pushgrid/internal/core/observability/log"
)

// MetricsFunc returns a JSON-encodable snapshot for /metrics.
type MetricsFunc func() any

// Server exposes the event feed at /events, counters at /metrics and a
// liveness probe at /healthz.
type Server struct {
	server  *http.Server
	feed    *Feed
	metrics MetricsFunc
	logger  log.Log
	addr    string
	running atomic.Bool
}

func New(addr string, feed *Feed, metrics MetricsFunc, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{feed: feed, metrics: metrics, logger: logger, addr: addr}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.feed)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.addr = ln.Addr().String()
	s.logger.Info("feed server listening", log.String("addr", s.addr))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("feed server stopped", log.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once Start returned.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.feed.Close()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var snapshot any = struct{}{}
	if s.metrics != nil {
		snapshot = s.metrics()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn("encode metrics", log.Error(err))
	}
}
