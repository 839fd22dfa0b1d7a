package seed

import (
	"context"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	domdoc "github.com/kailas-cloud/kbsearch/internal/domain/document"
)

// CollectionEnsurer creates a collection when absent; existing ones are returned as-is.
type CollectionEnsurer interface {
	Ensure(ctx context.Context, name string, vectorDim int) (domcol.Collection, error)
}

// DocumentWriter upserts documents by id.
type DocumentWriter interface {
	UpsertBatch(ctx context.Context, collectionName string, docs []domdoc.Document) error
	Count(ctx context.Context, collectionName string) (int, error)
}

// Embedder vectorizes document text. BatchEmbedder implementations are used natively.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
