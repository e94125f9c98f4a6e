// Package chi is the HTTP gateway: it exposes config-defined models for
// querying by scope, template and fragment.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope"
	healthuc "github.com/kailas-cloud/vecscope/internal/usecase/health"
	"github.com/kailas-cloud/vecscope/internal/usecase/query"
	"github.com/kailas-cloud/vecscope/internal/version"
)

const maxBodyBytes = 1 << 20

// Queries runs queries against served models.
type Queries interface {
	Models() []string
	Scopes(model string) ([]string, error)
	Get(ctx context.Context, model, id string, fields []string) (vecscope.Found[vecscope.Document], error)
	Search(ctx context.Context, model string, op query.Op, req query.Request) (*vecscope.Result[vecscope.Document], error)
	Count(ctx context.Context, model string, req query.Request) (int, error)
	Scan(ctx context.Context, model string, req query.Request, fn func(*vecscope.Result[vecscope.Document]) error) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the gateway handlers.
type Server struct {
	queries       Queries
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(queries Queries, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		queries:       queries,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts the handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/", s.ListModels)
		r.Get("/{model}/docs/{id}", s.GetDocument)
		r.Post("/{model}/{op}", s.RunQuery)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// degraded still serves traffic
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
		Build:  version.Get(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListModels handles GET /v1.
func (s *Server) ListModels(w http.ResponseWriter, _ *http.Request) {
	names := s.queries.Models()
	out := make([]ModelResponse, 0, len(names))
	for _, name := range names {
		scopes, err := s.queries.Scopes(name)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		out = append(out, ModelResponse{Name: name, Scopes: scopes})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDocument handles GET /v1/{model}/docs/{id}?fields=a,b.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	model, id := chi.URLParam(r, "model"), chi.URLParam(r, "id")

	var fields []string
	if raw := r.URL.Query().Get("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	found, err := s.queries.Get(r.Context(), model, id, fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !found.OK {
		writeError(w, http.StatusNotFound, CodeDocumentNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, found.Item)
}

// RunQuery handles POST /v1/{model}/{op}.
func (s *Server) RunQuery(w http.ResponseWriter, r *http.Request) {
	model, op := chi.URLParam(r, "model"), query.Op(chi.URLParam(r, "op"))

	var body QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req, err := body.toQuery()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	switch op {
	case query.OpCount:
		n, err := s.queries.Count(r.Context(), model, req)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CountResponse{Count: n})
	case query.OpScan:
		s.scan(w, r, model, req)
	default:
		res, err := s.queries.Search(r.Context(), model, op, req)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResultResponse(res))
	}
}

// scan streams hits as NDJSON, flushing after every batch. Once the first
// batch is out, a failure is reported as a final {"code", "message"} line.
func (s *Server) scan(w http.ResponseWriter, r *http.Request, model string, req query.Request) {
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false

	err := s.queries.Scan(r.Context(), model, req, func(batch *vecscope.Result[vecscope.Document]) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		for _, h := range toHits(batch) {
			if err := enc.Encode(h); err != nil {
				return err
			}
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	switch {
	case err == nil && !started:
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
	case err != nil && !started:
		s.handleDomainError(w, err)
	case err != nil:
		s.logger.Warn("scan aborted", zap.String("model", model), zap.Error(err))
		_ = enc.Encode(ErrorResponse{Code: CodeInternalError, Message: safeDomainMessage(err)})
	}
}
