package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/kbsearch/internal/db"
	domdoc "github.com/kailas-cloud/kbsearch/internal/domain/document"
	"github.com/kailas-cloud/kbsearch/internal/repository/keys"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	scanFn      func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keys.New("kbsearch:")), ms
}

func testDoc(t *testing.T, id, content string, vec []float32) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, content)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	doc.SetVector(vec)
	return doc
}
