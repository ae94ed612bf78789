package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/semtext/pkg/semtext/sstring"
	"github.com/cognicore/semtext/pkg/semtext/store"
)

func ptr[T any](v T) *T { return &v }

func sampleString(text string, concepts []sstring.ConceptTerm, instances []sstring.InstanceTerm) *sstring.SemanticString {
	return &sstring.SemanticString{
		Text: ptr(text),
		ComplexConcepts: []sstring.ComplexConcept{{Terms: []sstring.SemanticTerm{{
			Offset:        ptr(0),
			Text:          text,
			ConceptTerms:  concepts,
			InstanceTerms: instances,
			StringTerms:   []sstring.StringTerm{sstring.String(text, 1.0)},
		}}}},
	}
}

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteIntegrationBasic tests basic put and get
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	ss := sampleString("hall", []sstring.ConceptTerm{sstring.Concept(5, 5.0)}, nil)
	saved, err := st.Put(ctx, store.Doc{SemanticString: ss})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Put should assign an id")
	}
	if saved.Text != "hall" {
		t.Errorf("Expected text hall, got %q", saved.Text)
	}

	got, found, err := st.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("Document should be found")
	}
	if !reflect.DeepEqual(got.SemanticString, ss) {
		t.Errorf("Expected %+v, got %+v", ss, got.SemanticString)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("Expected created at %v, got %v", saved.CreatedAt, got.CreatedAt)
	}

	if _, found, err := st.Get(ctx, "missing"); err != nil || found {
		t.Errorf("Expected missing doc not found, got found=%v err=%v", found, err)
	}
}

func TestSQLiteFindByRef(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	low, err := st.Put(ctx, store.Doc{SemanticString: sampleString("big",
		[]sstring.ConceptTerm{sstring.Concept(9, 0.3)}, []sstring.InstanceTerm{sstring.Instance(11, 5.0)})})
	if err != nil {
		t.Fatal(err)
	}
	high, err := st.Put(ctx, store.Doc{SemanticString: sampleString("large",
		[]sstring.ConceptTerm{sstring.Concept(9, 5.0)}, nil)})
	if err != nil {
		t.Fatal(err)
	}

	docs, err := st.FindByConcept(ctx, 9, 0)
	if err != nil {
		t.Fatalf("FindByConcept: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != high.ID || docs[1].ID != low.ID {
		t.Errorf("Expected [%s %s], got %v", high.ID, low.ID, ids(docs))
	}

	docs, err = st.FindByEntity(ctx, 11, 10)
	if err != nil {
		t.Fatalf("FindByEntity: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != low.ID {
		t.Errorf("Expected [%s], got %v", low.ID, ids(docs))
	}

	docs, err = st.FindByConcept(ctx, 11, 10)
	if err != nil || len(docs) != 0 {
		t.Errorf("Entity ids should not match concepts, got %v (%v)", ids(docs), err)
	}
}

func TestSQLiteReplaceRefs(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	d, err := st.Put(ctx, store.Doc{SemanticString: sampleString("a", []sstring.ConceptTerm{sstring.Concept(1, 1.0)}, nil)})
	if err != nil {
		t.Fatal(err)
	}
	d.SemanticString = sampleString("a", []sstring.ConceptTerm{sstring.Concept(2, 1.0)}, nil)
	if _, err := st.Put(ctx, d); err != nil {
		t.Fatal(err)
	}

	if docs, _ := st.FindByConcept(ctx, 1, 10); len(docs) != 0 {
		t.Errorf("Old refs should be replaced, got %v", ids(docs))
	}
	if docs, _ := st.FindByConcept(ctx, 2, 10); len(docs) != 1 {
		t.Errorf("Expected new ref to match, got %v", ids(docs))
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	var want []string
	for _, text := range []string{"one", "two", "three"} {
		d, err := st.Put(ctx, store.Doc{Text: text})
		if err != nil {
			t.Fatal(err)
		}
		want = append([]string{d.ID}, want...)
	}

	docs, err := st.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, want[:2]) {
		t.Errorf("Expected %v, got %v", want[:2], got)
	}
	if docs[0].SemanticString != nil {
		t.Error("Doc without semantic string should load as nil")
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if _, err := st.Put(ctx, store.Doc{ID: "doc-1", CreatedAt: created, Text: "x"}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	d, found, err := st.Get(ctx, "doc-1")
	if err != nil || !found {
		t.Fatalf("Expected doc after reopen, found=%v err=%v", found, err)
	}
	if !d.CreatedAt.Equal(created) {
		t.Errorf("Expected %v, got %v", created, d.CreatedAt)
	}
}

func ids(docs []store.Doc) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestSQLiteListOrdersByCreatedAt(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, d := range []store.Doc{
		{ID: "z-old", CreatedAt: base, Text: "old"},
		{ID: "a-new", CreatedAt: base.Add(1500 * time.Millisecond), Text: "new"},
		{ID: "m-mid", CreatedAt: base.Add(500 * time.Millisecond), Text: "mid"},
	} {
		if _, err := st.Put(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := st.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := ids(docs), []string{"a-new", "m-mid", "z-old"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
