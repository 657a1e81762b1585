package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trendyol/parser/internal/client"
	"trendyol/parser/internal/domain"
	"trendyol/parser/internal/service"
	"trendyol/parser/internal/state"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Parser is the synchronous parsing surface
type Parser interface {
	Parse(ctx context.Context, url string) (*domain.ParserResponse, error)
	ParseSingle(ctx context.Context, url string) (*domain.ParserResponse, error)
	GetAggregations(ctx context.Context, slug string) []domain.Aggregation
	GetProducts(ctx context.Context, slug string, page int) domain.SearchResult
}

// Jobs is the asynchronous parsing surface
type Jobs interface {
	Enqueue(ctx context.Context, url string, single bool) (*domain.Job, error)
	Job(ctx context.Context, jobID string) (*domain.Job, *domain.ParserResponse, error)
}

type Handlers struct {
	parser      Parser
	jobs        Jobs
	siteBaseURL string
}

// NewHandlers builds the API handlers. Only URLs on the host of siteBaseURL
// are accepted for parsing.
func NewHandlers(parser Parser, jobs Jobs, siteBaseURL string) *Handlers {
	return &Handlers{
		parser:      parser,
		jobs:        jobs,
		siteBaseURL: siteBaseURL,
	}
}

// ParseRequest is the body of the parse and job endpoints
type ParseRequest struct {
	URL    string `json:"url"`
	Single bool   `json:"single"`
}

type AggregationsResponse struct {
	Aggregations []domain.Aggregation `json:"aggregations"`
}

type JobResponse struct {
	Job    *domain.Job            `json:"job"`
	Result *domain.ParserResponse `json:"result,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Parse handles synchronous parse requests
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeParseRequest(w, r)
	if !ok {
		return
	}

	var (
		resp *domain.ParserResponse
		err  error
	)
	if req.Single {
		resp, err = h.parser.ParseSingle(r.Context(), req.URL)
	} else {
		resp, err = h.parser.Parse(r.Context(), req.URL)
	}
	if err != nil {
		log.WithError(err).WithField("url", req.URL).Warn("parse failed")
		status := statusFor(err)
		h.respondError(w, status, errorMessage(status, err))
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetAggregations(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.respondJSON(w, http.StatusOK, AggregationsResponse{
		Aggregations: h.parser.GetAggregations(r.Context(), slug),
	})
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			h.respondError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = p
	}

	h.respondJSON(w, http.StatusOK, h.parser.GetProducts(r.Context(), slug, page))
}

// CreateJob enqueues an asynchronous parse
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeParseRequest(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.Enqueue(r.Context(), req.URL, req.Single)
	if err != nil {
		log.WithError(err).Error("failed to enqueue job")
		status := statusFor(err)
		h.respondError(w, status, errorMessage(status, err))
		return
	}

	h.respondJSON(w, http.StatusAccepted, JobResponse{Job: job})
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, result, err := h.jobs.Job(r.Context(), jobID)
	if err != nil {
		if !errors.Is(err, state.ErrJobNotFound) {
			log.WithError(err).WithField("job_id", jobID).Error("failed to get job")
		}
		status := statusFor(err)
		h.respondError(w, status, errorMessage(status, err))
		return
	}

	h.respondJSON(w, http.StatusOK, JobResponse{Job: job, Result: result})
}

func (h *Handlers) decodeParseRequest(w http.ResponseWriter, r *http.Request) (ParseRequest, bool) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	if err := service.CheckProductURL(req.URL, h.siteBaseURL); err != nil {
		h.respondError(w, statusFor(err), errorMessage(statusFor(err), err))
		return req, false
	}

	return req, true
}

func statusFor(err error) int {
	var (
		transportErr *client.TransportError
		decodeErr    *client.DecodeError
	)

	switch {
	case errors.Is(err, service.ErrEmptyURL), errors.Is(err, service.ErrForeignURL):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrJobNotFound):
		return http.StatusNotFound
	case errors.As(err, &transportErr), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps upstream and internal error details out of responses;
// they are logged instead.
func errorMessage(status int, err error) string {
	switch {
	case status == http.StatusBadGateway:
		return "upstream request failed"
	case status >= http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
