package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/delivery"
	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/metrics"
	"github.com/JakeFAU/competitor-radar/internal/pipeline"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*radar.RadarReport, error)
}

// Deliverer hands a finished report downstream.
type Deliverer interface {
	Deliver(ctx context.Context, report radar.RadarReport, requester delivery.Requester) (delivery.Receipt, error)
}

// Options tunes server middleware.
type Options struct {
	// APIKey enables key checks on /v1 routes when non-empty.
	APIKey string
	// RequestTimeout bounds each request when positive.
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the pipeline and report store.
type Server struct {
	router    chi.Router
	runner    Runner
	deliverer Deliverer
	reports   radar.ReportStore
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, deliverer Deliverer, reports radar.ReportStore, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		runner:    runner,
		deliverer: deliverer,
		reports:   reports,
		logger:    logging.OrNop(logger).Named("api"),
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(metrics.Middleware)
	if opts.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(opts.RequestTimeout))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if opts.APIKey != "" {
			r.Use(apiKeyMiddleware(opts.APIKey))
		}
		r.Post("/reports", s.createReport)
		r.Get("/reports/{report_id}", s.getReport)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type createReportRequest struct {
	YourURL        string   `json:"yourUrl"`
	CompetitorURLs []string `json:"competitorUrls"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Company        string   `json:"company"`
}

type createReportResponse struct {
	ID     string            `json:"id"`
	Report radar.RadarReport `json:"report"`
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	report, err := s.runner.Run(r.Context(), pipeline.Request{
		SubjectURL:     req.YourURL,
		CompetitorURLs: req.CompetitorURLs,
	})
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("pipeline failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
			writeError(w, status, "internal server error")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	requester := delivery.Requester{Name: req.Name, Email: req.Email, Company: req.Company}
	if _, err := s.deliverer.Deliver(r.Context(), *report, requester); err != nil {
		s.logger.Warn("report hand-off incomplete",
			zap.String("report_id", report.ID),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusCreated, createReportResponse{ID: report.ID, Report: *report})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")
	report, ok := s.reports.Get(reportID)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, radar.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, radar.ErrSubjectUnavailable), errors.Is(err, radar.ErrNoCompetitors):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
