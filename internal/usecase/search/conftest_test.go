package search

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kailas-cloud/kbsearch/internal/domain"
	domcol "github.com/kailas-cloud/kbsearch/internal/domain/collection"
	"github.com/kailas-cloud/kbsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kbsearch/internal/usecase/seed"
)

var stopwords = map[string]bool{
	"the": true, "of": true, "in": true, "is": true, "was": true, "as": true, "s": true,
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

// bagOfWords is a deterministic embedder over a fixed vocabulary.
type bagOfWords struct {
	vocab map[string]int
	calls int
	err   error
}

func newBagOfWords(corpus []seed.Fixture) *bagOfWords {
	vocab := map[string]int{}
	for _, f := range corpus {
		for _, tok := range tokenize(f.Content) {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}
	return &bagOfWords{vocab: vocab}
}

func (b *bagOfWords) dim() int { return len(b.vocab) }

func (b *bagOfWords) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	b.calls++
	if b.err != nil {
		return domain.EmbeddingResult{}, b.err
	}
	vec := make([]float32, len(b.vocab))
	for _, tok := range tokenize(text) {
		if i, ok := b.vocab[tok]; ok {
			vec[i]++
		}
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

type storedDoc struct {
	id      string
	content string
	vector  []float32
}

// memIndex is an in-memory cosine-distance KNN index.
type memIndex struct {
	docs  map[string][]storedDoc
	lastK int
}

func newMemIndex(ctx context.Context, e *bagOfWords, collection string, corpus []seed.Fixture) *memIndex {
	idx := &memIndex{docs: map[string][]storedDoc{}}
	for _, f := range corpus {
		res, _ := e.Embed(ctx, f.Content)
		idx.docs[collection] = append(idx.docs[collection], storedDoc{id: f.ID, content: f.Content, vector: res.Embedding})
	}
	e.calls = 0
	return idx
}

func (m *memIndex) SearchKNN(_ context.Context, collection string, vector []float32, topK int) ([]result.Result, error) {
	m.lastK = topK
	type hit struct {
		doc  storedDoc
		dist float64
	}
	hits := make([]hit, 0, len(m.docs[collection]))
	for _, d := range m.docs[collection] {
		hits = append(hits, hit{doc: d, dist: cosineDistance(vector, d.vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]result.Result, len(hits))
	for i, h := range hits {
		out[i] = result.New(h.doc.id, h.doc.content, h.dist)
	}
	return out, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// mockCollections resolves a fixed set of collections.
type mockCollections struct {
	known map[string]domcol.Collection
	err   error
}

func (m *mockCollections) Get(_ context.Context, name string) (domcol.Collection, error) {
	if m.err != nil {
		return domcol.Collection{}, m.err
	}
	col, ok := m.known[name]
	if !ok {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return col, nil
}

// mockRepo returns canned results.
type mockRepo struct {
	results []result.Result
	err     error
}

func (m *mockRepo) SearchKNN(_ context.Context, _ string, _ []float32, _ int) ([]result.Result, error) {
	return m.results, m.err
}

type fixture struct {
	svc   *Service
	embed *bagOfWords
	index *memIndex
	col   domcol.Collection
}

func newFixture(limits Limits) fixture {
	ctx := context.Background()
	e := newBagOfWords(seed.DefaultDocuments)
	idx := newMemIndex(ctx, e, seed.DefaultCollection, seed.DefaultDocuments)
	col := domcol.Reconstruct(seed.DefaultCollection, e.dim(), 1700000000000)
	colls := &mockCollections{known: map[string]domcol.Collection{seed.DefaultCollection: col}}
	return fixture{svc: New(colls, idx, e, limits), embed: e, index: idx, col: col}
}

func intPtr(n int) *int { return &n }
