package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/kbsearch/internal/db"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kbsearch/internal/repository/document"
	"github.com/kailas-cloud/kbsearch/internal/repository/keys"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs nearest-neighbor queries against a collection's index.
type Repo struct {
	store store
	keys  keys.Space
}

// New creates a search repository.
func New(s store, ks keys.Space) *Repo {
	return &Repo{store: s, keys: ks}
}

// SearchKNN returns up to topK documents nearest to vector, closest first.
// Fewer results are returned when the collection holds fewer documents.
func (r *Repo) SearchKNN(
	ctx context.Context, collectionName string, vector []float32, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    r.keys.Index(collectionName),
		VectorField:  document.FieldVector,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{document.FieldID, document.FieldContent},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collectionName, err)
	}

	return r.toResults(sr, collectionName), nil
}

// toResults keeps the store's ordering; it never re-sorts.
func (r *Repo) toResults(sr *db.SearchResult, collectionName string) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := entry.Fields[document.FieldID]
		if id == "" {
			id = r.keys.DocID(collectionName, entry.Key)
		}
		results = append(results, result.New(id, entry.Fields[document.FieldContent], entry.Score))
	}
	return results
}
