package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domdoc "github.com/kailas-cloud/kbsearch/internal/domain/document"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
)

// Report summarizes a bootstrap run.
type Report struct {
	Collection string
	Upserted   int
	Stored     int
}

// Service populates a collection with a fixed set of documents.
type Service struct {
	colls     CollectionEnsurer
	docs      DocumentWriter
	embed     Embedder
	vectorDim int
	logger    *zap.Logger
}

// New creates a bootstrap service. vectorDim 0 takes the dimension of the first embedding.
func New(colls CollectionEnsurer, docs DocumentWriter, embed Embedder, vectorDim int, logger *zap.Logger) *Service {
	return &Service{colls: colls, docs: docs, embed: embed, vectorDim: vectorDim, logger: logger}
}

// Run ensures the collection exists and upserts fixtures into it.
// Re-running is safe: documents are keyed by id.
func (s *Service) Run(ctx context.Context, collectionName string, fixtures []Fixture) (Report, error) {
	if len(fixtures) == 0 {
		return Report{}, fmt.Errorf("%w: no documents to seed", domain.ErrInvalidSchema)
	}

	docs := make([]domdoc.Document, len(fixtures))
	texts := make([]string, len(fixtures))
	for i, f := range fixtures {
		doc, err := domdoc.New(f.ID, f.Content)
		if err != nil {
			return Report{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
		}
		docs[i] = doc
		texts[i] = f.Content
	}

	emb, err := domain.BatchEmbed(ctx, s.embed, texts)
	if err != nil {
		return Report{}, fmt.Errorf("embed documents: %w", err)
	}
	if len(emb.Embeddings) != len(docs) {
		return Report{}, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrEmbeddingProviderError, len(docs), len(emb.Embeddings))
	}

	dim := s.vectorDim
	if dim == 0 {
		dim = len(emb.Embeddings[0])
	}
	for i := range docs {
		if len(emb.Embeddings[i]) != dim {
			return Report{}, fmt.Errorf("%w: document %s has %d, want %d",
				domain.ErrVectorDimMismatch, docs[i].ID(), len(emb.Embeddings[i]), dim)
		}
		docs[i].SetVector(emb.Embeddings[i])
	}

	if _, err := s.colls.Ensure(ctx, collectionName, dim); err != nil {
		return Report{}, fmt.Errorf("ensure collection %s: %w", collectionName, err)
	}

	if err := s.docs.UpsertBatch(ctx, collectionName, docs); err != nil {
		return Report{}, fmt.Errorf("upsert documents: %w", err)
	}

	stored, err := s.docs.Count(ctx, collectionName)
	if err != nil {
		return Report{}, fmt.Errorf("count documents: %w", err)
	}
	metrics.SeededDocuments.WithLabelValues(collectionName).Set(float64(stored))

	s.logger.Info("Knowledge base seeded",
		zap.String("collection", collectionName),
		zap.Int("upserted", len(docs)),
		zap.Int("stored", stored),
		zap.Int("vector_dim", dim),
		zap.Int("total_tokens", emb.TotalTokens),
	)

	return Report{Collection: collectionName, Upserted: len(docs), Stored: stored}, nil
}
