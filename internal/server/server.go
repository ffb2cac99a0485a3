// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatbot-backend/internal/chat"
	"chatbot-backend/internal/common/config"
	stderrors "chatbot-backend/internal/common/errors"
	"chatbot-backend/internal/common/logger"
	"chatbot-backend/internal/common/observability"
)

// Server hosts the chat API endpoints.
type Server struct {
	service    *chat.Service
	logger     logger.Logger
	errors     *stderrors.ErrorHandler
	httpServer *http.Server
}

func New(cfg config.ServerConfig, service *chat.Service, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.errors = stderrors.NewErrorHandler(s.logger)

	var handler http.Handler = s.Routes()
	if obs != nil {
		handler = obs.Middleware(handler)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Routes builds the request mux. Exported so tests can drive the handlers
// through httptest without binding a port.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat/message", s.handleMessage)
	mux.HandleFunc("GET /api/chat/history/{sessionId}", s.handleHistory)
	mux.HandleFunc("DELETE /api/chat/history/{sessionId}", s.handleClearHistory)
	mux.HandleFunc("GET /api/chat/sessions", s.handleSessions)
	mux.HandleFunc("POST /api/chat/session/{sessionId}/end", s.handleEndSession)
	mux.HandleFunc("GET /api/chat/search", s.handleSearch)
	mux.HandleFunc("GET /api/chat/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
