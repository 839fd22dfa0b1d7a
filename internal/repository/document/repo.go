package document

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/kbsearch/internal/db"
	"github.com/kailas-cloud/kbsearch/internal/domain"
	domdoc "github.com/kailas-cloud/kbsearch/internal/domain/document"
	"github.com/kailas-cloud/kbsearch/internal/repository/keys"
)

// Hash field names of a stored document. The FT index covers VectorField.
const (
	FieldID      = "id"
	FieldContent = "content"
	FieldVector  = "vector"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo writes documents into a collection's key space.
type Repo struct {
	store store
	keys  keys.Space
}

// New creates a document repository.
func New(s store, ks keys.Space) *Repo {
	return &Repo{store: s, keys: ks}
}

// UpsertBatch writes all documents in one pipelined round trip.
// Documents are keyed by id: an existing id is overwritten, never duplicated.
func (r *Repo) UpsertBatch(ctx context.Context, collectionName string, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		doc := &docs[i]
		if len(doc.Vector()) == 0 {
			return fmt.Errorf("%w: document %s has no vector", domain.ErrInvalidSchema, doc.ID())
		}
		items[i] = db.HashSetItem{
			Key:    r.keys.Doc(collectionName, doc.ID()),
			Fields: toHash(doc),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d documents into %s: %w", len(docs), collectionName, err)
	}
	return nil
}

// Count returns the number of documents stored in a collection.
func (r *Repo) Count(ctx context.Context, collectionName string) (int, error) {
	found, err := r.store.Scan(ctx, r.keys.DocPattern(collectionName))
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", collectionName, err)
	}
	return len(found), nil
}

func toHash(doc *domdoc.Document) map[string]string {
	return map[string]string{
		FieldID:      doc.ID(),
		FieldContent: doc.Content(),
		FieldVector:  vectorToBytes(doc.Vector()),
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
