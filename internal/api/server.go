// Package api exposes the content workflow over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ContentStudio/internal/usecase"
)

// Deps wires the HTTP surface.
type Deps struct {
	Workflow *usecase.Workflow
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Health reports backend readiness for /healthz.
	Health func(ctx context.Context) error
	// GenerationTimeout bounds requests that call the AI gateway.
	GenerationTimeout time.Duration
	Logger            *slog.Logger
}

// Server routes operator and public approval requests.
type Server struct {
	wf         *usecase.Workflow
	gatherer   prometheus.Gatherer
	health     func(ctx context.Context) error
	genTimeout time.Duration
	logger     *slog.Logger
}

// NewServer builds the HTTP server handlers.
func NewServer(deps Deps) *Server {
	s := &Server{
		wf:         deps.Workflow,
		gatherer:   deps.Gatherer,
		health:     deps.Health,
		genTimeout: deps.GenerationTimeout,
		logger:     deps.Logger,
	}
	if s.genTimeout <= 0 {
		s.genTimeout = 2 * time.Minute
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/clients", s.handleOnboard).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}", s.handleGetClient).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", s.handleDeleteClient).Methods(http.MethodDelete)
	api.Handle("/clients/{id}/audit", s.generating(s.handleCreateAudit)).Methods(http.MethodPost)
	api.Handle("/clients/{id}/calendar", s.generating(s.handleCreateCalendar)).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}/calendar", s.handleListCalendar).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}/calendar/items", s.handleAddItem).Methods(http.MethodPost)

	api.HandleFunc("/calendar/{id}/status", s.handleUpdateStatus).Methods(http.MethodPost)
	api.Handle("/calendar/{id}/revise", s.generating(s.handleReviseItem)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/{id}/versions", s.handleListVersions).Methods(http.MethodGet)
	api.HandleFunc("/calendar/{id}/feedback", s.handleListFeedback).Methods(http.MethodGet)
	api.Handle("/calendar/{id}/script", s.generating(s.handleGenerateScript)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/{id}/script", s.handleSaveManualScript).Methods(http.MethodPut)
	api.HandleFunc("/calendar/{id}/script", s.handleGetScript).Methods(http.MethodGet)
	api.HandleFunc("/calendar/{id}/media", s.handleAttachMedia).Methods(http.MethodPost)
	api.HandleFunc("/calendar/{id}/media", s.handleMediaURL).Methods(http.MethodGet)

	api.HandleFunc("/approvals/send", s.handleSendForApproval).Methods(http.MethodPost)

	api.Handle("/scripts/{id}/revise", s.generating(s.handleReviseScript)).Methods(http.MethodPost)
	api.HandleFunc("/scripts/{id}/approve", s.handleApproveScript).Methods(http.MethodPost)
	api.HandleFunc("/scripts/{id}/versions", s.handleListScriptVersions).Methods(http.MethodGet)
	api.HandleFunc("/scripts/{id}/tone/{tone}", s.handleSwitchTone).Methods(http.MethodGet)
	api.HandleFunc("/scripts/{id}/schedule", s.handleSchedulePost).Methods(http.MethodPost)
	api.HandleFunc("/scripts/{id}/schedules", s.handleListSchedules).Methods(http.MethodGet)

	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods(http.MethodPost)

	api.Handle("/assist/brief", s.generating(s.handleAssistBrief)).Methods(http.MethodPost)

	r.HandleFunc("/feedback/{token}", s.handleApprovalPage).Methods(http.MethodGet)
	r.HandleFunc("/feedback/{token}", s.handleExternalDecision).Methods(http.MethodPost)

	return r
}

// generating bounds a handler that waits on the AI gateway.
func (s *Server) generating(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.genTimeout)
		defer cancel()
		h(w, r.WithContext(ctx))
	})
}

func (s *Server) debug(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, args...)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeError(w, s.logger, err)
}
