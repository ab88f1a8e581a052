package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmorel/presence-relay/internal/config"
	"github.com/jmorel/presence-relay/internal/connection"
	"github.com/jmorel/presence-relay/internal/history"
	"github.com/jmorel/presence-relay/internal/session"
	"github.com/jmorel/presence-relay/internal/version"
)

// Server serves the WebSocket endpoint and health checks.
type Server struct {
	cfg      config.ServerConfig
	hub      *connection.Hub
	registry session.Registry
	store    history.Store
	logger   *slog.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a Server. The store may be nil when retention is disabled.
func New(cfg config.ServerConfig, hub *connection.Hub, registry session.Registry, store history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = history.Discard{}
	}

	return &Server{
		cfg:      cfg,
		hub:      hub,
		registry: registry,
		store:    store,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// Cross-origin access is unrestricted at this boundary.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler, also used by tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve listens until ctx is cancelled, then drains with the configured
// shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Kicking live websockets triggers their disconnect events.
	s.hub.CloseAll()
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	s.hub.Adopt(ws)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Version    string         `json:"version"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Version,
		Components: make(map[string]any),
	}

	health.Components["connections"] = map[string]int{
		"open":       s.hub.Len(),
		"identified": s.registry.Len(),
	}

	if err := s.store.Ping(ctx); err != nil {
		health.Status = "degraded"
		health.Components["history"] = map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		}
	} else {
		health.Components["history"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
