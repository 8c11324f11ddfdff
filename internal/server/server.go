// Package server provides the local HTTP server: health, the websocket pose
// ingest used by remote landmark detectors, pointer injection, and the
// journal and settings APIs.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/server/api"
	"github.com/ayusman/mefu/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Slot      *capture.PoseSlot
	Journal   *store.Journal
	Settings  *store.Settings
	Logger    *slog.Logger
	// OnPointer receives injected presses in window coordinates.
	OnPointer func(pos layout.Point, secondary bool)
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Slot != nil {
		s.mux.Handle("/api/landmarks", NewIngestHandler(s.config.Slot, s.logger))
	}

	if s.config.OnPointer != nil {
		s.mux.HandleFunc("/api/pointer", s.handlePointer)
	}

	if s.config.Journal != nil {
		h := api.NewJournalHandler(s.config.Journal)
		s.mux.Handle("/api/journal", h)
		s.mux.Handle("/api/journal/", h)
	}

	if s.config.Settings != nil {
		s.mux.Handle("/api/settings/", api.NewSettingsHandler(s.config.Settings))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
		"ingest": s.config.Slot != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type pointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
}

// handlePointer handles POST /api/pointer, injecting one press.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var secondary bool
	switch req.Button {
	case "", "primary", "left":
	case "secondary", "right":
		secondary = true
	default:
		http.Error(w, "Unknown button", http.StatusBadRequest)
		return
	}

	s.config.OnPointer(layout.Point{X: req.X, Y: req.Y}, secondary)
	w.WriteHeader(http.StatusAccepted)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
