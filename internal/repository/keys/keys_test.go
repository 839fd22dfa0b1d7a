package keys

import (
	"strings"
	"testing"
)

func TestSpace_Layout(t *testing.T) {
	s := New("kbsearch:")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"meta", s.Meta("my_knowledge_base"), "kbsearch:collection:my_knowledge_base"},
		{"index", s.Index("my_knowledge_base"), "kbsearch:idx:{my_knowledge_base}"},
		{"doc prefix", s.DocPrefix("my_knowledge_base"), "kbsearch:doc:{my_knowledge_base}:"},
		{"doc", s.Doc("my_knowledge_base", "id1"), "kbsearch:doc:{my_knowledge_base}:id1"},
		{"doc pattern", s.DocPattern("my_knowledge_base"), "kbsearch:doc:{my_knowledge_base}:*"},
		{"pattern escapes glob", s.DocPattern("a*[b]?"), `kbsearch:doc:{a\*\[b\]\?}:*`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestSpace_DocID(t *testing.T) {
	s := New("kbsearch:")
	if got := s.DocID("kb", "kbsearch:doc:{kb}:id7"); got != "id7" {
		t.Errorf("got %q, want id7", got)
	}
	if got := s.DocID("kb", "other:key"); got != "other:key" {
		t.Errorf("foreign key should pass through, got %q", got)
	}
}

func TestSpace_CollectionsDoNotOverlap(t *testing.T) {
	s := New("kbsearch:")

	keysOf := map[string][]string{
		"a":   {s.Doc("a", "b:c"), s.Meta("a"), s.Index("a")},
		"a:b": {s.Doc("a:b", "c"), s.Meta("a:b"), s.Index("a:b")},
		"emb": {s.Doc("emb", "x")},
		"ab":  {s.Doc("ab", "x")},
	}
	cache := s.Embedding("m", "text")

	for name := range keysOf {
		prefix := s.DocPrefix(name)
		if strings.HasPrefix(cache, prefix) {
			t.Errorf("%q doc prefix covers cache key %s", name, cache)
		}
		for other, ks := range keysOf {
			if other == name {
				continue
			}
			for _, k := range ks {
				if strings.HasPrefix(k, prefix) {
					t.Errorf("%q doc prefix %s covers %q key %s", name, prefix, other, k)
				}
			}
		}
	}
}

func TestSpace_Embedding(t *testing.T) {
	s := New("kbsearch:")

	a := s.Embedding("m1", "hello")
	if !strings.HasPrefix(a, "kbsearch:emb:") {
		t.Fatalf("unexpected key: %s", a)
	}
	if a != s.Embedding("m1", "hello") {
		t.Error("key must be deterministic")
	}
	if a == s.Embedding("m2", "hello") {
		t.Error("different models must not share a key")
	}
	if a == s.Embedding("m1", "hello ") {
		t.Error("different texts must not share a key")
	}
}
