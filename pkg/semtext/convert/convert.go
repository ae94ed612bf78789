// Package convert turns NLP annotations into semantic text and semantic
// text to and from semantic strings.
//
// Converters are immutable and safe for concurrent use. They hold the id
// mapper used to build meaning URLs and a logger for the lossy paths:
// skipped tokens and terms are logged at Warn, absorbed hard failures at
// Error.
package convert

import (
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"github.com/cognicore/semtext/pkg/semtext/urlmap"
)

// Namespace is the metadata key under which converters store the
// annotation details they carry along for indexing.
const Namespace = "nltext"

// MeaningMetadata keeps the raw lemma and summary of an annotated meaning.
type MeaningMetadata struct {
	Lemma   string `json:"lemma"`
	Summary string `json:"summary"`
}

// TermMetadata keeps the stems and derived lemmas of an annotated term.
// They become the string references of the term in a semantic string.
type TermMetadata struct {
	Stems         []string `json:"stems"`
	DerivedLemmas []string `json:"derivedLemmas"`
}

// Strings returns derived lemmas followed by stems.
func (m TermMetadata) Strings() []string {
	out := slices.Clone(m.DerivedLemmas)
	return append(out, m.Stems...)
}

// Options configures a converter.
type Options struct {
	// Mapper builds meaning URLs from numeric ids. Defaults to urlmap.Default().
	Mapper urlmap.IDMapper
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Mapper == nil {
		o.Mapper = urlmap.Default()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// termMetadata extracts TermMetadata from a term metadata value. Values
// decoded from JSON arrive as generic maps and are converted back.
func termMetadata(v any) (TermMetadata, bool) {
	switch md := v.(type) {
	case TermMetadata:
		return md, true
	case *TermMetadata:
		if md == nil {
			return TermMetadata{}, false
		}
		return *md, true
	case map[string]any:
		b, err := json.Marshal(md)
		if err != nil {
			return TermMetadata{}, false
		}
		var out TermMetadata
		if err := json.Unmarshal(b, &out); err != nil {
			return TermMetadata{}, false
		}
		return out, true
	default:
		return TermMetadata{}, false
	}
}
