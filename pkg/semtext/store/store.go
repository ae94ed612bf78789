package store

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/semtext/pkg/semtext/sstring"
)

// Store persists encoded semantic strings and looks them up by reference
type Store interface {
	Close() error

	// Put stores d, replacing any document with the same ID. An empty ID
	// gets a fresh one and a zero CreatedAt gets the current time.
	Put(ctx context.Context, d Doc) (Doc, error)
	Get(ctx context.Context, id string) (Doc, bool, error)
	// List returns the most recent documents first, by CreatedAt and then
	// by descending ID.
	List(ctx context.Context, limit int) ([]Doc, error)

	// FindByConcept and FindByEntity return the documents referencing id,
	// highest weight first, then most recent first.
	FindByConcept(ctx context.Context, id int64, limit int) ([]Doc, error)
	FindByEntity(ctx context.Context, id int64, limit int) ([]Doc, error)
}

// Doc represents a stored document
type Doc struct {
	ID             string
	CreatedAt      time.Time
	Text           string
	SemanticString *sstring.SemanticString
}

// DefaultLimit caps lookups called with a non-positive limit.
const DefaultLimit = 20

// RefKind is the kind of a reference held by a semantic string
type RefKind string

const (
	RefConcept RefKind = "concept"
	RefEntity  RefKind = "entity"
)

// Ref is a concept or entity reference with its highest weight in a document
type Ref struct {
	Kind   RefKind
	ID     int64
	Weight float64
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable document ID.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Prepare fills the ID, timestamp and text of d where they are missing.
func Prepare(d Doc) Doc {
	if d.ID == "" {
		d.ID = NewID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.Text == "" && d.SemanticString != nil && d.SemanticString.Text != nil {
		d.Text = *d.SemanticString.Text
	}
	return d
}

// Refs collects the distinct references of ss. References without a value
// are skipped; repeated ones keep their highest weight.
func Refs(ss *sstring.SemanticString) []Ref {
	type key struct {
		kind RefKind
		id   int64
	}
	best := make(map[key]float64)
	var order []key
	add := func(kind RefKind, v *int64, w *float64) {
		if v == nil {
			return
		}
		k := key{kind, *v}
		weight := sstring.WeightOr(w)
		cur, ok := best[k]
		if !ok {
			order = append(order, k)
		}
		if !ok || weight > cur {
			best[k] = weight
		}
	}
	for _, term := range ss.Terms() {
		for _, c := range term.ConceptTerms {
			add(RefConcept, c.Value, c.Weight)
		}
		for _, e := range term.InstanceTerms {
			add(RefEntity, e.Value, e.Weight)
		}
	}

	refs := make([]Ref, 0, len(order))
	for _, k := range order {
		refs = append(refs, Ref{Kind: k.kind, ID: k.id, Weight: best[k]})
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].ID < refs[j].ID
	})
	return refs
}
