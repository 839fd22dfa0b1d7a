package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/kbsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kbsearch/internal/usecase/search"
)

const testAPIKey = "top-secret"

// stubSearcher serves a single collection with canned results.
type stubSearcher struct {
	collection string
	results    []result.Result
	resolveErr error
	queryErr   error
	panicMsg   string

	resolved  []string
	lastText  string
	lastN     *int
	queryCall int
}

func (s *stubSearcher) Resolve(_ context.Context, name string) (domcol.Collection, error) {
	s.resolved = append(s.resolved, name)
	if s.resolveErr != nil {
		return domcol.Collection{}, s.resolveErr
	}
	if name != s.collection {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return domcol.Reconstruct(name, 3, 0), nil
}

func (s *stubSearcher) Query(_ context.Context, _ domcol.Collection, text string, n *int) ([]result.Result, error) {
	s.queryCall++
	s.lastText = text
	s.lastN = n
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if n != nil && *n < 1 {
		return nil, searchuc.ErrInvalidLimit
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	k := 2
	if n != nil {
		k = *n
	}
	return s.results[:min(k, len(s.results))], nil
}

type stubHealth struct {
	report healthuc.Report
}

func (h stubHealth) Check(context.Context) healthuc.Report { return h.report }

func defaultResults() []result.Result {
	return []result.Result{
		result.New("id4", "Florida's population was around 21.5 million in 2020.", 0.12),
		result.New("id8", "The population of Pennsylvania was roughly 12.8 million in 2020.", 0.31),
		result.New("id1", "Population of New York City is approximately 8.4 million as of 2020.", 0.35),
	}
}

func newStubSearcher() *stubSearcher {
	return &stubSearcher{collection: "my_knowledge_base", results: defaultResults()}
}

func newTestRouter(s Searcher, logger *zap.Logger) http.Handler {
	h := stubHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}}
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewServer(s, h, logger).Router(testAPIKey)
}

func doGet(t *testing.T, h http.Handler, target, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}
