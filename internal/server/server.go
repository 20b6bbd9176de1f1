// Package server hosts the HTTP JSON driver for the game engine: the
// REST-ish game API plus the live websocket feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/platform/timeouts"
	"github.com/louisbranch/koningsdag/internal/server/httpx"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// Config defines startup inputs for the game server.
type Config struct {
	HTTPAddr string
	Catalog  *catalog.Catalog
	Store    storage.GameStore
}

// Server hosts the game HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	api        *API
}

// NewHandler builds the root handler: API routes plus the feed socket,
// wrapped in the shared middleware chain.
func NewHandler(cfg Config) (http.Handler, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	api := NewAPI(cat, cfg.Store)
	return api.Handler(), nil
}

// NewServer validates config and constructs a game server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	api := NewAPI(cat, cfg.Store)
	return &Server{
		httpAddr: httpAddr,
		api:      api,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// API exposes the server's API surface for in-process drivers.
func (s *Server) API() *API {
	if s == nil {
		return nil
	}
	return s.api
}

// ListenAndServe serves HTTP traffic until context cancellation or
// server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("game server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown game http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve game http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}

// routes assembles the URL table. Method guards sit per route; the
// recover/request-id pair wraps the whole mux.
func routes(api *API) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/health", httpx.Chain(
		http.HandlerFunc(api.handleHealth), httpx.RequireMethod(http.MethodGet)))
	mux.Handle("/api/roles", httpx.Chain(
		http.HandlerFunc(api.handleRoles), httpx.RequireMethod(http.MethodGet)))
	mux.Handle("/api/game/reset", httpx.Chain(
		http.HandlerFunc(api.handleReset), httpx.RequireMethod(http.MethodPost)))
	mux.Handle("/api/game/start", httpx.Chain(
		http.HandlerFunc(api.handleStart), httpx.RequireMethod(http.MethodPost)))
	mux.Handle("/api/game/action", httpx.Chain(
		http.HandlerFunc(api.handleAction), httpx.RequireMethod(http.MethodPost)))
	mux.Handle("/api/game/state", httpx.Chain(
		http.HandlerFunc(api.handleState), httpx.RequireMethod(http.MethodGet)))
	mux.Handle("/ws/feed", httpx.Chain(
		api.feedHandler(), httpx.RequireMethod(http.MethodGet)))
	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
	)
}
