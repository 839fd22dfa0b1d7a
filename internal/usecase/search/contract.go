package search

import (
	"context"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
)

// Repository runs nearest-neighbor queries. Results come back closest first.
type Repository interface {
	SearchKNN(ctx context.Context, collectionName string, vector []float32, topK int) ([]result.Result, error)
}

// CollectionReader resolves collections; a missing one yields domain.ErrNotFound.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
