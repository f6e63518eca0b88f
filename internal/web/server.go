// ===== internal/web/server.go =====
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wifigaze/internal/config"
	"wifigaze/internal/hub"
	"wifigaze/internal/monitor"
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	monitor    *monitor.Monitor
	hub        *hub.Hub
	logger     *zap.Logger
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, mon *monitor.Monitor, h *hub.Hub, logger *zap.Logger) *Server {
	server := &Server{
		cfg:     cfg,
		monitor: mon,
		hub:     h,
		logger:  logger,
		mux:     http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	server.setupRoutes()
	server.httpServer = &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: server.mux,
	}

	return server
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight API calls.
// Websocket connections are closed by the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /api/status", s.handleStatusAPI)
	s.mux.HandleFunc("GET /api/stats", s.handleStatsAPI)
	s.mux.HandleFunc("GET /api/logs", s.handleLogsAPI)
	s.mux.HandleFunc("GET /api/vendor", s.handleVendorAPI)
	s.mux.HandleFunc("GET /api/graph", s.handleGraphAPI)
	s.mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.HTMLDir)))
}
