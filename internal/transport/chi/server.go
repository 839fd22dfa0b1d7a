package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/kbsearch/internal/logger"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
	"github.com/kailas-cloud/kbsearch/internal/telemetry"
	healthuc "github.com/kailas-cloud/kbsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kbsearch/internal/usecase/search"
)

const (
	msgInternal      = "internal error"
	msgNAsInteger    = "n must be an integer."
	msgNPositive     = "n must be a positive integer."
	msgNotFoundRoute = "not found"
)

// Searcher resolves knowledge bases and queries them.
type Searcher interface {
	Resolve(ctx context.Context, name string) (domcol.Collection, error)
	Query(ctx context.Context, col domcol.Collection, text string, n *int) ([]result.Result, error)
}

// HealthReporter aggregates dependency checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// SearchParams are the query parameters of the search endpoint.
type SearchParams struct {
	Query *string
	N     *int
}

// SearchResultItem is a single ranked hit.
type SearchResultItem struct {
	ID      string  `json:"id"`
	Rank    int     `json:"rank"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	TotalResults int                `json:"totalResults"`
	Results      []SearchResultItem `json:"results"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server serves the knowledge base search API.
type Server struct {
	search Searcher
	health HealthReporter
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthReporter, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// Router builds the chi router. apiKey guards everything under /api/v1.
func (s *Server) Router(apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(sentryMiddleware)
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFoundRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(apiKey))
		r.Get("/knowledgebases/{knowledgeBaseId}/search", s.SearchKnowledgeBase)
	})

	return r
}

// SearchKnowledgeBase handles GET /api/v1/knowledgebases/{knowledgeBaseId}/search.
func (s *Server) SearchKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	kbID, err := pathParam(r, "knowledgeBaseId")
	if err != nil || kbID == "" {
		metrics.SearchRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid knowledgeBaseId")
		return
	}

	col, err := s.search.Resolve(r.Context(), kbID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.SearchRequestsTotal.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, fmt.Sprintf("Collection %s does not exist.", kbID))
			return
		}
		s.internalError(w, r, err)
		return
	}

	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, msgNAsInteger)
		return
	}

	results, err := s.search.Query(r.Context(), col, derefString(params.Query), params.N)
	if err != nil {
		if errors.Is(err, searchuc.ErrInvalidLimit) {
			metrics.SearchRequestsTotal.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, msgNPositive)
			return
		}
		s.internalError(w, r, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, searchResponseFrom(results))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// pathParam returns a route parameter decoded exactly once. chi matches on
// RawPath when the request carries one, leaving the value escaped.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

// bindSearchParams reads query and n. Repeated keys keep their first value and
// n may carry surrounding whitespace.
func bindSearchParams(q url.Values) (SearchParams, error) {
	var params SearchParams
	if vs, ok := q["query"]; ok && len(vs) > 0 {
		params.Query = &vs[0]
	}
	if vs, ok := q["n"]; ok && len(vs) > 0 {
		var n int
		if err := runtime.BindStringToObject(strings.TrimSpace(vs[0]), &n); err != nil {
			return SearchParams{}, fmt.Errorf("bind n: %w", err)
		}
		params.N = &n
	}
	return params, nil
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
	logpkg.FromContext(r.Context()).Error("internal error", zap.Error(err))
	telemetry.CaptureError(r.Context(), err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// searchResponseFrom keeps the store order; rank is the position in it.
func searchResponseFrom(results []result.Result) SearchResponse {
	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = SearchResultItem{
			ID:      results[i].ID(),
			Rank:    i,
			Content: results[i].Content(),
			Score:   results[i].Distance(),
		}
	}
	return SearchResponse{TotalResults: len(items), Results: items}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
