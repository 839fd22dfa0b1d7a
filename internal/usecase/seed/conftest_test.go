package seed

import (
	"context"
	"errors"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	domdoc "github.com/kailas-cloud/kbsearch/internal/domain/document"
)

// memStore is an in-memory collection store keyed by collection, then document id.
type memStore struct {
	dims      map[string]int
	docs      map[string]map[string]domdoc.Document
	ensures   int
	upserts   int
	ensureErr error
	upsertErr error
	countErr  error
}

func newMemStore() *memStore {
	return &memStore{dims: map[string]int{}, docs: map[string]map[string]domdoc.Document{}}
}

func (m *memStore) Ensure(_ context.Context, name string, vectorDim int) (domcol.Collection, error) {
	m.ensures++
	if m.ensureErr != nil {
		return domcol.Collection{}, m.ensureErr
	}
	if dim, ok := m.dims[name]; ok {
		if dim != vectorDim {
			return domcol.Collection{}, domain.ErrVectorDimMismatch
		}
		return domcol.Reconstruct(name, dim, 0), nil
	}
	m.dims[name] = vectorDim
	m.docs[name] = map[string]domdoc.Document{}
	return domcol.Reconstruct(name, vectorDim, 0), nil
}

func (m *memStore) UpsertBatch(_ context.Context, collectionName string, docs []domdoc.Document) error {
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	coll, ok := m.docs[collectionName]
	if !ok {
		return errors.New("collection not ensured")
	}
	for _, d := range docs {
		coll[d.ID()] = d
	}
	return nil
}

func (m *memStore) Count(_ context.Context, collectionName string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.docs[collectionName]), nil
}

// fixedEmbedder returns a vector of dim floats derived from the text length.
type fixedEmbedder struct {
	dim   int
	calls int
	err   error
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = float32(len(text) + i)
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

// batchOnlyEmbedder exposes BatchEmbed and records how it was called.
type batchOnlyEmbedder struct {
	fixedEmbedder
	batchCalls int
	short      bool
}

func (e *batchOnlyEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batchCalls++
	out := domain.BatchEmbeddingResult{}
	for _, t := range texts {
		res, err := e.fixedEmbedder.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings = append(out.Embeddings, res.Embedding)
	}
	if e.short {
		out.Embeddings = out.Embeddings[:len(out.Embeddings)-1]
	}
	return out, nil
}

// raggedEmbedder returns one vector with a different dimension.
type raggedEmbedder struct{}

func (raggedEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if text == DefaultDocuments[4].Content {
		return domain.EmbeddingResult{Embedding: []float32{1, 2}}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2, 3}}, nil
}
