package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pawcare/internal/booking"
	"pawcare/internal/config"
	"pawcare/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Drafts is the booking flow surface the HTTP API drives.
type Drafts interface {
	Start(ctx context.Context, customerID, serviceID string) (*service.View, error)
	View(ctx context.Context, sessionID string) (*service.View, error)
	SelectPet(ctx context.Context, sessionID, petID string) (*service.View, error)
	SelectEmployee(ctx context.Context, sessionID, employeeID string) (*service.View, error)
	SelectScheduledDate(ctx context.Context, sessionID, date string) (*service.View, error)
	SelectStartTime(ctx context.Context, sessionID, startTime string) (*service.View, error)
	UpdateCustomerNotes(ctx context.Context, sessionID, notes string) (*service.View, error)
	Next(ctx context.Context, sessionID string) (bool, *service.View, error)
	Back(ctx context.Context, sessionID string) (bool, *service.View, error)
	Submit(ctx context.Context, sessionID string) (*booking.SubmitResult, error)
	Reset(ctx context.Context, sessionID string) (*service.View, error)
	Cancel(ctx context.Context, sessionID string) error
}

// HTTPServer exposes the booking wizard over JSON.
type HTTPServer struct {
	cfg    *config.APIConfig
	drafts Drafts
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, drafts Drafts, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	httpLogger := logger.With().Str("component", "http").Logger()

	srv := &HTTPServer{
		cfg:    cfg,
		drafts: drafts,
		auth:   NewHTTPAuth(cfg),
		logger: &httpLogger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(requestLogger(s.logger))
	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		r.Use(corsHandler(s.cfg.CORS.AllowedOrigins))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/drafts", func(r chi.Router) {
		r.Use(s.auth.Wrap)

		r.Post("/", s.handleStart)
		r.Route("/{session}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Delete("/", s.handleCancel)
			r.Put("/pet", s.handleSelectPet)
			r.Put("/employee", s.handleSelectEmployee)
			r.Put("/date", s.handleSelectDate)
			r.Put("/time", s.handleSelectTime)
			r.Put("/notes", s.handleNotes)
			r.Post("/next", s.handleNext)
			r.Post("/back", s.handleBack)
			r.Post("/submit", s.handleSubmit)
			r.Post("/reset", s.handleReset)
		})
	})

	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}
