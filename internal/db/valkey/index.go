package valkey

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/kbsearch/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if replyContains(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether FT.INFO knows the index.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.client.B().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isMissingIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// isMissingIndex matches both RediSearch ("Unknown index name") and
// valkey-search ("Index with name '...' not found") replies.
func isMissingIndex(err error) bool {
	return replyContains(err, "unknown index name") || replyContains(err, "not found")
}

// buildCreateArgs renders FT.CREATE arguments:
//
//	<name> ON HASH PREFIX n <p...> SCHEMA <field> VECTOR HNSW <count> TYPE FLOAT32 DIM d DISTANCE_METRIC m [M x] [EF_CONSTRUCTION y]
func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx == nil {
		return nil, errors.New("index definition is required")
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH", "PREFIX", strconv.Itoa(len(idx.Prefixes))}
	args = append(args, idx.Prefixes...)

	v := idx.Vector
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(v.Distance),
	}
	if v.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(v.M))
	}
	if v.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
	}

	args = append(args, "SCHEMA", v.Name, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
	return append(args, attrs...), nil
}
