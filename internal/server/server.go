// Package server exposes the task, address-book, auth and dashboard
// operations over HTTP JSON, plus a WebSocket feed of entity changes.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Port to listen on (default: 8080).
	Port int

	// Logger for server activity (default: stderr logger).
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:   8080,
		Logger: log.Default(),
	}
}

// Server hosts the HTTP API.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	tasks     TaskService
	contacts  ContactService
	analytics AnalyticsService
	auth      AuthService
	events    *Hub

	logger *log.Logger
	wg     sync.WaitGroup
}

// New creates a server over the given services.
func New(config *Config, tasks TaskService, contacts ContactService, analytics AnalyticsService, auth AuthService) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	hub := NewHub(config.Logger)
	hub.Start()
	return &Server{
		addr:      fmt.Sprintf(":%d", config.Port),
		tasks:     tasks,
		contacts:  contacts,
		analytics: analytics,
		auth:      auth,
		events:    hub,
		logger:    config.Logger,
	}
}

// Start begins listening and serving. It does not block.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("API server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.logger.Println("stopping API server")

	s.events.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()
	s.logger.Println("API server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// routes wires the HTTP surface. Handler returns it for tests.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/user/register", s.handleRegister)
	mux.HandleFunc("POST /api/user/login", s.handleLogin)

	mux.HandleFunc("POST /api/user/task/create", s.requireAuth(s.handleTaskCreate))
	mux.HandleFunc("PUT /api/user/task/update", s.requireAuth(s.handleTaskUpdate))
	mux.HandleFunc("DELETE /api/user/task/delete", s.requireAuth(s.handleTaskDelete))
	mux.HandleFunc("GET /api/user/task/list", s.requireAuth(s.handleTaskList))

	mux.HandleFunc("POST /api/addressbook/create", s.requireAuth(s.handleContactCreate))
	mux.HandleFunc("PUT /api/addressbook/update", s.requireAuth(s.handleContactUpdate))
	mux.HandleFunc("DELETE /api/addressbook/delete", s.requireAuth(s.handleContactDelete))
	mux.HandleFunc("GET /api/addressbook/list", s.requireAuth(s.handleContactList))

	mux.HandleFunc("GET /api/dashboard/analytics", s.requireAuth(s.handleAnalytics))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.events.handleWebSocket)

	return mux
}

// Handler returns the fully wired route handler. Used by tests to serve
// through httptest without a listener.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
