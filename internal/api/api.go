// Package api provides the optional admin HTTP server for RioBot.
//
// It exposes a health check and a JSON dump of the captured leads, and hosts
// the Twilio inbound webhook when that messaging backend is active.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hadassaviagens/riobot/internal/leads"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Opts holds configuration options for the admin server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the admin server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server is the admin HTTP server.
type Server struct {
	addr       string
	leadStore  *leads.Store
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates an admin server over the lead store. With no address
// configured the server is created but Start is a logged no-op.
func NewServer(leadStore *leads.Store, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{addr: cfg.Addr, leadStore: leadStore, mux: http.NewServeMux()}
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/leads", s.leadsHandler)
	return s
}

// Handler returns the server's handler, for tests and external mounting.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Handle registers an extra route, e.g. the Twilio inbound webhook.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// Start begins serving in the background. Listen failures are logged, not
// fatal: the conversation loop does not depend on the admin API.
func (s *Server) Start() {
	if s.addr == "" {
		slog.Info("No API address configured, admin API disabled")
		return
	}
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.mux}
	go func() {
		slog.Info("Admin API listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Admin API server failed", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server if it was started.
func (s *Server) Shutdown() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Admin API shutdown failed", "error", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) leadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	captured := s.leadStore.Leads()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(captured); err != nil {
		slog.Error("Failed to encode leads response", "error", err)
	}
}
