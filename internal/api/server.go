package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atlas-desktop/trading-backend/internal/persist"
)

// ServerConfig configures the results API's HTTP listener. Grounded on
// the reference backend's pkg/types.ServerConfig field set, trimmed to
// what a read-only results API needs (no MaxConnections/EnableMetrics
// toggle: Prometheus is always mounted at /metrics here).
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig mirrors the reference backend's server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "localhost",
		Port:         8090,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Server is the read-only HTTP/WebSocket API over completed batch runs.
type Server struct {
	logger     *zap.Logger
	cfg        ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	store      *Store
	repo       persist.Repository
	metrics    http.Handler
}

// NewServer builds a Server wired to store and repo, with Prometheus
// metrics mounted at /metrics using a dedicated registry (see
// internal/api/metrics.go).
func NewServer(logger *zap.Logger, cfg ServerConfig, store *Store, repo persist.Repository) *Server {
	s := &Server{
		logger: logger,
		cfg:    cfg,
		router: mux.NewRouter(),
		store:  store,
		repo:   repo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		metrics: promhttp.HandlerFor(NewRegistry(), promhttp.HandlerOpts{}),
	}
	s.setupRoutes()
	return s
}

// Router exposes the underlying mux.Router for tests that want to drive
// requests directly via httptest.NewServer without binding a real port.
func (s *Server) Router() *mux.Router { return s.router }

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id}/top", s.handleGetTop).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id}/progress", s.handleProgress)
	s.router.HandleFunc("/strategies/{name}", s.handleFindByName).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
}

// Start begins serving; blocks until the listener returns (Stop causes
// a clean http.ErrServerClosed).
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.logger.Info("starting results API", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "time": time.Now().Unix()})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "latest" {
		latest, ok := s.store.Latest()
		if !ok {
			http.Error(w, "no runs yet", http.StatusNotFound)
			return
		}
		id = latest
	}
	report, ok := s.store.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetTop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, ok := s.store.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report.TopStrategies)
}

func (s *Server) handleFindByName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	result, ok := s.repo.FindByName(name)
	if !ok {
		http.Error(w, "strategy result not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleProgress upgrades to a WebSocket and streams ProgressFrames for
// runID until a write to the client fails (a disconnected client is
// noticed on the next published frame).
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err), zap.String("run_id", id))
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.store.Hub(id).Subscribe()
	defer unsubscribe()

	for frame := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
