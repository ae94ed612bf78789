package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/semtext/pkg/semtext/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	docs map[string]store.Doc
	refs map[string][]store.Ref
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs: make(map[string]store.Doc),
		refs: make(map[string][]store.Ref),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Put inserts or replaces a document, keyed by ID.
func (s *Store) Put(ctx context.Context, d store.Doc) (store.Doc, error) {
	d = store.Prepare(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[d.ID] = d
	s.refs[d.ID] = store.Refs(d.SemanticString)
	return d, nil
}

// Get returns a document by ID.
func (s *Store) Get(ctx context.Context, id string) (store.Doc, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	return d, ok, nil
}

// List returns documents newest first.
func (s *Store) List(ctx context.Context, limit int) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]store.Doc, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return newer(docs[i], docs[j]) })
	return truncate(docs, limit), nil
}

func (s *Store) FindByConcept(ctx context.Context, id int64, limit int) ([]store.Doc, error) {
	return s.findByRef(store.RefConcept, id, limit), nil
}

func (s *Store) FindByEntity(ctx context.Context, id int64, limit int) ([]store.Doc, error) {
	return s.findByRef(store.RefEntity, id, limit), nil
}

func (s *Store) findByRef(kind store.RefKind, id int64, limit int) []store.Doc {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type match struct {
		doc    store.Doc
		weight float64
	}
	var matches []match
	for docID, refs := range s.refs {
		for _, r := range refs {
			if r.Kind == kind && r.ID == id {
				matches = append(matches, match{doc: s.docs[docID], weight: r.Weight})
				break
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].weight != matches[j].weight {
			return matches[i].weight > matches[j].weight
		}
		return newer(matches[i].doc, matches[j].doc)
	})

	docs := make([]store.Doc, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, m.doc)
	}
	return truncate(docs, limit)
}

func newer(a, b store.Doc) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func truncate(docs []store.Doc, limit int) []store.Doc {
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}
