// Package keys defines the Valkey key layout shared by the repositories.
//
//	<prefix>collection:<name>   collection metadata hash
//	<prefix>idx:{<name>}        FT index over the collection's documents
//	<prefix>doc:{<name>}:<id>   document hash (id, content, vector)
//	<prefix>emb:<sha256>        cached embedding
//
// Each kind lives under its own tag and the name is closed by "}", so no
// collection's document prefix covers another collection or the cache.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Space namespaces every key under a single prefix (e.g. "kbsearch:").
type Space struct {
	prefix string
}

// New creates a key space.
func New(prefix string) Space {
	return Space{prefix: prefix}
}

// Prefix returns the raw prefix.
func (s Space) Prefix() string { return s.prefix }

// Meta is the collection metadata key.
func (s Space) Meta(collection string) string {
	return s.prefix + "collection:" + collection
}

// Index is the FT index name of a collection.
func (s Space) Index(collection string) string {
	return s.prefix + "idx:{" + collection + "}"
}

// DocPrefix is the key prefix covered by the collection's index.
func (s Space) DocPrefix(collection string) string {
	return s.prefix + "doc:{" + collection + "}:"
}

// DocPattern is a SCAN MATCH pattern for every document of a collection.
// Glob metacharacters in the prefix are escaped.
func (s Space) DocPattern(collection string) string {
	return escapeGlob(s.DocPrefix(collection)) + "*"
}

// Doc is the hash key of a single document.
func (s Space) Doc(collection, id string) string {
	return s.DocPrefix(collection) + id
}

// DocID strips the collection prefix from a document key.
func (s Space) DocID(collection, key string) string {
	p := s.DocPrefix(collection)
	if len(key) > len(p) && key[:len(p)] == p {
		return key[len(p):]
	}
	return key
}

// Embedding is the cache key for a (model, text) pair.
func (s Space) Embedding(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return s.prefix + "emb:" + hex.EncodeToString(h[:])
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
