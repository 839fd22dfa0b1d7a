package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/kbsearch/internal/db"
	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/repository/document"
	"github.com/kailas-cloud/kbsearch/internal/repository/keys"
)

// VectorField is the hash field indexed for KNN queries.
const VectorField = document.FieldVector

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores collection metadata and owns the FT index lifecycle.
type Repo struct {
	store store
	keys  keys.Space
	hnsw  HNSWConfig
	now   func() time.Time
}

// New creates a collection repository.
func New(s store, ks keys.Space) *Repo {
	return &Repo{store: s, keys: ks, hnsw: HNSWConfig{M: 16, EFConstruct: 200}, now: time.Now}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Get retrieves a collection by name. Returns domain.ErrNotFound when absent.
// Names outside the storable alphabet are never stored, so they are not found.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	if !domcol.ValidName(name) {
		return domcol.Collection{}, domain.ErrNotFound
	}
	m, err := r.store.HGetAll(ctx, r.keys.Meta(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return fromHash(m)
}

// Ensure returns the named collection, creating metadata and index when absent.
// An existing collection with a different dimension yields domain.ErrVectorDimMismatch.
func (r *Repo) Ensure(ctx context.Context, name string, vectorDim int) (domcol.Collection, error) {
	if !domcol.ValidName(name) {
		return domcol.Collection{}, fmt.Errorf("%w: invalid collection name %q", domain.ErrInvalidSchema, name)
	}
	if vectorDim <= 0 {
		return domcol.Collection{}, fmt.Errorf("%w: vector dimension must be positive", domain.ErrInvalidSchema)
	}

	col, err := r.Get(ctx, name)
	switch {
	case err == nil:
		if col.VectorDim() != vectorDim {
			return domcol.Collection{}, fmt.Errorf("%w: collection %s has dim %d, embeddings have %d",
				domain.ErrVectorDimMismatch, name, col.VectorDim(), vectorDim)
		}
		// Metadata can outlive the index when the search module restarts without persistence.
		if err := r.ensureIndex(ctx, col); err != nil {
			return domcol.Collection{}, err
		}
		return col, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domcol.Collection{}, err
	}

	col = domcol.Reconstruct(name, vectorDim, r.now().UnixMilli())
	if err := r.create(ctx, col); err != nil {
		return domcol.Collection{}, err
	}
	return col, nil
}

// create stores metadata then runs FT.CREATE, rolling back the HSET on failure.
func (r *Repo) create(ctx context.Context, col domcol.Collection) error {
	def, err := r.indexDefinition(col)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	metaKey := r.keys.Meta(col.Name())
	if err := r.store.HSet(ctx, metaKey, toHash(col)); err != nil {
		return fmt.Errorf("hset collection %s: %w", col.Name(), err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(fmt.Errorf("create index %s: %w", def.Name, err), cleanupErr)
	}
	return nil
}

func (r *Repo) ensureIndex(ctx context.Context, col domcol.Collection) error {
	exists, err := r.store.IndexExists(ctx, r.keys.Index(col.Name()))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := r.indexDefinition(col)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

func (r *Repo) indexDefinition(col domcol.Collection) (*db.IndexDefinition, error) {
	return db.NewIndex(r.keys.Index(col.Name())).
		Prefix(r.keys.DocPrefix(col.Name())).
		Vector(VectorField, col.VectorDim()).
		HNSW(r.hnsw.M, r.hnsw.EFConstruct).
		Build()
}

func toHash(col domcol.Collection) map[string]string {
	return map[string]string{
		"name":       col.Name(),
		"vector_dim": strconv.Itoa(col.VectorDim()),
		"created_at": strconv.FormatInt(col.CreatedAt(), 10),
	}
}

func fromHash(m map[string]string) (domcol.Collection, error) {
	dim, err := strconv.Atoi(m["vector_dim"])
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("invalid vector_dim: %w", err)
	}
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domcol.Reconstruct(m["name"], dim, createdAt), nil
}
