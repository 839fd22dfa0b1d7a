package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
)

// ErrInvalidLimit is returned for a result count below one.
var ErrInvalidLimit = errors.New("n must be a positive integer")

// Limits bounds the number of results per query. Max <= 0 leaves n uncapped.
type Limits struct {
	Default int
	Max     int
}

// Service answers semantic queries against a named collection.
type Service struct {
	colls  CollectionReader
	repo   Repository
	embed  Embedder
	limits Limits
}

// New creates a search service.
func New(colls CollectionReader, repo Repository, embed Embedder, limits Limits) *Service {
	if limits.Default <= 0 {
		limits.Default = 2
	}
	if limits.Max < 0 {
		limits.Max = 0
	}
	if limits.Max > 0 && limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	return &Service{colls: colls, repo: repo, embed: embed, limits: limits}
}

// Resolve looks up a collection by name. Returns domain.ErrNotFound when absent.
func (s *Service) Resolve(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.colls.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection %s: %w", name, err)
	}
	return col, nil
}

// Query embeds text and returns up to n nearest documents of col, closest first.
// A nil n uses the default; n above a configured maximum is clamped.
func (s *Service) Query(ctx context.Context, col domcol.Collection, text string, n *int) ([]result.Result, error) {
	k, err := s.resolveLimit(n)
	if err != nil {
		return nil, err
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if dim := col.VectorDim(); dim > 0 && len(emb.Embedding) != dim {
		return nil, fmt.Errorf("%w: query has %d, collection %s has %d",
			domain.ErrVectorDimMismatch, len(emb.Embedding), col.Name(), dim)
	}

	results, err := s.repo.SearchKNN(ctx, col.Name(), emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", col.Name(), err)
	}

	metrics.SearchResultsReturned.Observe(float64(len(results)))
	return results, nil
}

func (s *Service) resolveLimit(n *int) (int, error) {
	if n == nil {
		return s.limits.Default, nil
	}
	if *n < 1 {
		return 0, ErrInvalidLimit
	}
	if s.limits.Max > 0 {
		return min(*n, s.limits.Max), nil
	}
	return *n, nil
}
