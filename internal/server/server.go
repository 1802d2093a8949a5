package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"contentful-mcp/internal/config"
	"contentful-mcp/internal/logger"
)

// MCPEndpoint is where the streamable HTTP transport is mounted
const MCPEndpoint = "/mcp"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessCheck reports why the server cannot take traffic, or nil
type ReadinessCheck func() error

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
	mux        *http.ServeMux

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

// New creates a new HTTP server instance. A nil binding serves only the probes.
func New(cfg *config.Config, log *logger.Logger, binding *Binding) *Server {
	mux := http.NewServeMux()

	server := &Server{
		logger: log,
		config: cfg,
		mux:    mux,
		checks: make(map[string]ReadinessCheck),
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        mux,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	server.setupRoutes(binding)

	return server
}

// AddReadinessCheck registers a named check consulted by /ready
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.httpServer.Close()
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(binding *Binding) {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)

	if binding != nil {
		s.mux.Handle(MCPEndpoint, mcpserver.NewStreamableHTTPServer(
			binding.MCPServer(),
			mcpserver.WithEndpointPath(MCPEndpoint),
		))
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   s.config.Logger.Service,
		Version:   s.config.Logger.Version,
	})
}

// handleReady runs every readiness check; any failure answers 503
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("readiness check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	response := ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   s.config.Logger.Service,
		Version:   s.config.Logger.Version,
		Checks:    make(map[string]string),
	}
	code := http.StatusOK

	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.checks[name](); err != nil {
			response.Checks[name] = err.Error()
			response.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}
	s.mu.RUnlock()

	if code != http.StatusOK {
		s.logger.Warn("readiness check failed", "checks", response.Checks)
	}

	s.writeJSON(w, code, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonData)
}
