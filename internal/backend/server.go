package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/config"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/telemetry"
)

const maxBodyBytes = 1 << 20

// Sampler reads host metrics. *collector.StatsCollector satisfies it.
type Sampler interface {
	SystemInfo(ctx context.Context) models.SystemInfo
	Usage(ctx context.Context) (cpu, memory, gpu float64)
}

type Server struct {
	state         *State
	hub           *Hub
	sampler       Sampler
	requests      *RequestCounter
	statsInterval time.Duration
	logger        *slog.Logger
}

func NewServer(cfg config.Server, state *State, sampler Sampler, logger *slog.Logger) *Server {
	interval := cfg.StatsInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Server{
		state:         state,
		hub:           NewHub(logger, state),
		sampler:       sampler,
		requests:      NewRequestCounter(),
		statsInterval: interval,
		logger:        logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recovery(s.logger))
	r.Use(requestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(telemetry.StreamPath, s.hub)

	r.Group(func(r chi.Router) {
		r.Use(s.requests.Middleware)
		r.Get(api.PathModels, s.handleListModels)
		r.Get(api.PathConfig, s.handleGetConfig)
		r.Post(api.PathConfig, s.handlePostConfig)
		r.Get(api.PathSystemInfo, s.handleSystemInfo)
		r.Get(api.PathSystemLogs, s.handleSystemLogs)
	})
	return r
}

// Run drives the hub and the stats push loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)

	ticker := time.NewTicker(s.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.pushStats(ctx) {
				return
			}
		}
	}
}

func (s *Server) pushStats(ctx context.Context) bool {
	cpu, mem, gpu := s.sampler.Usage(ctx)
	stats := models.SystemStats{
		CPUUsage:          cpu,
		MemoryUsage:       mem,
		GPUUsage:          gpu,
		ActiveModel:       s.state.ActiveModel(),
		RequestsPerMinute: s.requests.PerMinute(),
	}
	ok, err := s.hub.Publish(telemetry.EventSystemStats, stats)
	if err != nil {
		s.logger.Error("publish system stats", "error", err)
		return true
	}
	return ok
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Models())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Config())
}

// handlePostConfig accepts either a per-model configuration (a body carrying
// name or type) or a full configuration document.
func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
		return
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON object")
		return
	}

	if _, ok := probe["type"]; ok {
		s.configureModel(w, r, body)
		return
	}
	if _, ok := probe["name"]; ok {
		s.configureModel(w, r, body)
		return
	}
	s.replaceConfig(w, r, body)
}

func (s *Server) configureModel(w http.ResponseWriter, r *http.Request, body []byte) {
	var mc models.ModelConfig
	if err := json.Unmarshal(body, &mc); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := config.Validate(mc); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := s.state.ConfigureModel(mc); err != nil {
		if errors.Is(err, ErrUnknownModel) {
			writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Model configured"})
}

func (s *Server) replaceConfig(w http.ResponseWriter, r *http.Request, body []byte) {
	var cfg models.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := s.state.ReplaceConfig(cfg); err != nil {
		s.logger.Error("persist configuration", "error", err)
		writeError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "Configuration could not be persisted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Configuration updated"})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sampler.SystemInfo(r.Context()))
}

func (s *Server) handleSystemLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Logs())
}
