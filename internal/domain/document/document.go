package document

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is a piece of searchable text identified by an id unique within its collection.
type Document struct {
	id      string
	content string
	vector  []float32
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_.:-]+$, 1-256 chars. Content: non-empty, max 160KB.
func New(id, content string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID %q contains invalid characters", id)
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Document{id: id, content: content}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, content string, vector []float32) Document {
	return Document{id: id, content: content, vector: vector}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding vector, nil until SetVector is called.
func (d *Document) Vector() []float32 { return d.vector }

// SetVector attaches the embedding computed for the content.
func (d *Document) SetVector(v []float32) { d.vector = v }
