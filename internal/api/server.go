package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"titledoctor/internal/bus"
	"titledoctor/internal/config"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/services"
)

// StatusFunc supplies the daemon status payload for GET /api/status.
type StatusFunc func(ctx context.Context) DaemonStatus

// Server exposes the submission endpoint and read-only job views over HTTP.
type Server struct {
	bind     string
	logger   *slog.Logger
	store    *jobs.Store
	submit   *SubmitService
	statusFn StatusFunc

	listener net.Listener
	server   *http.Server
}

// NewServer builds the HTTP server. A nil statusFn disables /api/status
// details beyond the summary.
func NewServer(cfg *config.Config, store *jobs.Store, router *bus.Router, statusFn StatusFunc, logger *slog.Logger) *Server {
	srv := &Server{
		bind:     strings.TrimSpace(cfg.Paths.APIBind),
		logger:   logging.NewComponentLogger(logger, "api-server"),
		store:    store,
		submit:   NewSubmitService(store, router, logger),
		statusFn: statusFn,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.requestContext)

	r.Post("/submit", srv.handleSubmit)
	r.Get("/api/jobs", srv.handleJobs)
	r.Get("/api/jobs/{jobID}", srv.handleJob)
	r.Get("/api/status", srv.handleStatus)
	r.Get("/healthz", srv.handleHealthz)

	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the underlying HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Start begins serving until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = services.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Channel name and email are required")
		return
	}

	record, err := s.submit.Submit(r.Context(), req.Channel, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, services.Message(err))
			return
		}
		s.logger.Error("submit failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.writeJSON(w, http.StatusCreated, SubmitResponse{
		Success: true,
		Message: "Your request has been queued. You will receive an email with the results shortly.",
		JobID:   record.JobID,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []jobs.Status
	for _, value := range r.URL.Query()["status"] {
		if parsed, ok := jobs.ParseStatus(value); ok {
			statuses = append(statuses, parsed)
		}
	}

	records, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]JobView, 0, len(records))
	for _, record := range records {
		views = append(views, FromRecord(record))
	}
	s.writeJSON(w, http.StatusOK, JobListResponse{Jobs: views})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	record, err := s.store.Get(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, JobResponse{Job: FromRecord(record)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status DaemonStatus
	if s.statusFn != nil {
		status = s.statusFn(r.Context())
	} else {
		summary, err := s.store.Summary(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status = DaemonStatus{Running: true, Summary: summary}
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := s.store.Health(r.Context())
	if health.Error != "" || !health.IntegrityCheck {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": health.Error})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
