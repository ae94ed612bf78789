// Package index keeps an in-memory full text index over stored semantic
// strings.
//
// Each document is indexed with four fields: its display text and string
// terms go through the standard analyzer, while concept and entity ids are
// kept verbatim with the keyword analyzer so that an id only ever matches
// itself. Hits are ordered by score, ties broken by document id.
package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/cognicore/semtext/pkg/semtext/internalerr"
	"github.com/cognicore/semtext/pkg/semtext/store"
)

// Field names.
const (
	FieldText     = "text"
	FieldStrings  = "strings"
	FieldConcepts = "concepts"
	FieldEntities = "entities"
)

// DefaultMaxResults caps searches without a limit.
const DefaultMaxResults = 20

// Options configures an Index.
type Options struct {
	MaxResults int
	Logger     *zap.Logger
}

// Index wraps a memory-only bleve index.
type Index struct {
	idx        bleve.Index
	maxResults int
	logger     *zap.Logger
}

// Query selects documents. Empty fields are ignored; a query with no
// fields set matches every document.
type Query struct {
	Text      string
	ConceptID *int64
	EntityID  *int64
	Limit     int
}

// Hit is a scored search result.
type Hit struct {
	ID    string
	Score float64
}

// New creates an empty index.
func New(opts Options) (*Index, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{idx: idx, maxResults: opts.MaxResults, logger: opts.Logger}, nil
}

func buildMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name

	idField := bleve.NewKeywordFieldMapping()
	idField.Analyzer = keyword.Name

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(FieldText, textField)
	doc.AddFieldMappingsAt(FieldStrings, textField)
	doc.AddFieldMappingsAt(FieldConcepts, idField)
	doc.AddFieldMappingsAt(FieldEntities, idField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	return m
}

// Add indexes d, replacing any document with the same ID.
func (i *Index) Add(d store.Doc) error {
	if d.ID == "" {
		return fmt.Errorf("%w: document without id", internalerr.ErrInvalidInput)
	}

	fields := map[string]interface{}{
		FieldText:     d.Text,
		FieldStrings:  d.SemanticString.Strings(),
		FieldConcepts: formatIDs(d.SemanticString.ConceptIDs()),
		FieldEntities: formatIDs(d.SemanticString.InstanceIDs()),
	}
	if err := i.idx.Index(d.ID, fields); err != nil {
		return fmt.Errorf("index doc %s: %w", d.ID, err)
	}
	i.logger.Debug("indexed document", zap.String("id", d.ID))
	return nil
}

// Search runs q and returns the matching document ids.
func (i *Index) Search(ctx context.Context, q Query) ([]Hit, error) {
	limit := q.Limit
	if limit <= 0 || limit > i.maxResults {
		limit = i.maxResults
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func buildQuery(q Query) query.Query {
	var parts []query.Query
	if q.Text != "" {
		text := bleve.NewMatchQuery(q.Text)
		text.SetField(FieldText)
		strs := bleve.NewMatchQuery(q.Text)
		strs.SetField(FieldStrings)
		parts = append(parts, bleve.NewDisjunctionQuery(text, strs))
	}
	if q.ConceptID != nil {
		parts = append(parts, termQuery(FieldConcepts, *q.ConceptID))
	}
	if q.EntityID != nil {
		parts = append(parts, termQuery(FieldEntities, *q.EntityID))
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return parts[0]
	default:
		return bleve.NewConjunctionQuery(parts...)
	}
}

func termQuery(field string, id int64) query.Query {
	tq := bleve.NewTermQuery(strconv.FormatInt(id, 10))
	tq.SetField(field)
	return tq
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
