// Package server assembles the development backend.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/wayfarer/internal/auth"
	"github.com/hongminglow/wayfarer/internal/config"
	"github.com/hongminglow/wayfarer/internal/http/handlers"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Server, users storage.UserStore, content storage.ContentStore, logger *slog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Router(cfg, users, content, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Router builds the routed handler without binding a listener.
func Router(cfg config.Server, users storage.UserStore, content storage.ContentStore, logger *slog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	revocations := auth.NewRevocations()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Authenticate(tokens, revocations))

	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(users, content, tokens, revocations, logger).Register(r)
	handlers.NewPlacesHandler(content, logger).Register(r)
	handlers.NewServicesHandler(content, logger).Register(r)
	handlers.NewCommunityHandler(content, logger).Register(r)
	handlers.NewChatHandler(users, content, logger).Register(r)
	handlers.NewDashboardHandler(content, logger).Register(r)
	handlers.NewChatbotHandler(logger).Register(r)
	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
