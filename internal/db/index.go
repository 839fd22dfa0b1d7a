package db

import (
	"errors"
	"fmt"
)

// DistanceMetric is the vector distance reported as the KNN score.
type DistanceMetric string

const (
	// DistanceCosine is 1 - cosine similarity, in [0, 2].
	DistanceCosine DistanceMetric = "COSINE"
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
)

func (m DistanceMetric) valid() bool {
	switch m {
	case DistanceCosine, DistanceL2, DistanceIP:
		return true
	}
	return false
}

// VectorField is the single FLOAT32 HNSW vector attribute of an index.
// Zero M or EFConstruct keeps the engine default.
type VectorField struct {
	Name        string
	Dim         int
	Distance    DistanceMetric
	M           int
	EFConstruct int
}

// IndexDefinition describes an FT index over HASH keys sharing a prefix.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Vector   VectorField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Prefixes) == 0 {
		return errors.New("at least one key prefix is required")
	}
	v := idx.Vector
	if v.Name == "" {
		return errors.New("vector field name is required")
	}
	if v.Dim <= 0 {
		return fmt.Errorf("vector field %s requires positive DIM, got %d", v.Name, v.Dim)
	}
	if !v.Distance.valid() {
		return fmt.Errorf("unknown distance metric %q", v.Distance)
	}
	if v.M < 0 || v.EFConstruct < 0 {
		return errors.New("HNSW parameters must not be negative")
	}
	return nil
}

// IsValidIdentifier reports whether s is non-empty and matches [a-zA-Z0-9_:.{}-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-', r == '.', r == '{', r == '}':
		default:
			return false
		}
	}
	return true
}
