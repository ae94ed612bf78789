// Package semtext defines the semantic text model: a text split into
// sentences, each holding non-overlapping terms annotated with the meanings
// (concepts or entities) they may refer to.
//
// Values in this package are built once by constructors or converters and
// are never mutated afterwards. Offsets are byte offsets into Text.Text and
// spans are half-open.
package semtext

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"
)

// MeaningKind tells whether a meaning is a concept or a real-world entity.
type MeaningKind int

const (
	Unknown MeaningKind = iota
	Concept
	Entity
)

var meaningKindNames = [...]string{
	Unknown: "UNKNOWN",
	Concept: "CONCEPT",
	Entity:  "ENTITY",
}

func (k MeaningKind) String() string {
	if int(k) >= 0 && int(k) < len(meaningKindNames) {
		return meaningKindNames[k]
	}
	return fmt.Sprintf("MeaningKind(%d)", int(k))
}

// MarshalText encodes the kind by name (e.g. "CONCEPT").
func (k MeaningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *MeaningKind) UnmarshalText(b []byte) error {
	for i, name := range meaningKindNames {
		if name == string(b) {
			*k = MeaningKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown meaning kind: %q", string(b))
}

// MeaningStatus tells whether and how the meaning of a term was resolved.
//
// Selected and ToDisambiguate are used for automatically annotated text,
// Reviewed and NotSure for text a human has checked.
type MeaningStatus int

const (
	ToDisambiguate MeaningStatus = iota
	Selected
	NotSure
	Reviewed
)

var meaningStatusNames = [...]string{
	ToDisambiguate: "TO_DISAMBIGUATE",
	Selected:       "SELECTED",
	NotSure:        "NOT_SURE",
	Reviewed:       "REVIEWED",
}

func (s MeaningStatus) String() string {
	if int(s) >= 0 && int(s) < len(meaningStatusNames) {
		return meaningStatusNames[s]
	}
	return fmt.Sprintf("MeaningStatus(%d)", int(s))
}

// MarshalText encodes the status by name (e.g. "NOT_SURE").
func (s MeaningStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *MeaningStatus) UnmarshalText(b []byte) error {
	for i, name := range meaningStatusNames {
		if name == string(b) {
			*s = MeaningStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown meaning status: %q", string(b))
}

// HasSelection reports whether the status implies a selected meaning.
func (s MeaningStatus) HasSelection() bool {
	return s == Selected || s == Reviewed
}

// StatusFor picks the status for a term. reviewed marks text checked by a
// human; hasSelected tells whether a meaning was picked for the term.
func StatusFor(hasSelected, reviewed bool) MeaningStatus {
	switch {
	case hasSelected && reviewed:
		return Reviewed
	case hasSelected:
		return Selected
	case reviewed:
		return NotSure
	default:
		return ToDisambiguate
	}
}

// Meaning is a disambiguated sense (concept) or referent (entity) with the
// confidence it has for a term. An empty ID means the meaning is unknown.
type Meaning struct {
	ID          string         `json:"id"`
	Kind        MeaningKind    `json:"kind"`
	Probability float64        `json:"probability"`
	Name        Dict           `json:"name"`
	Description Dict           `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewMeaning returns a meaning with empty name and description.
func NewMeaning(id string, kind MeaningKind, probability float64) Meaning {
	return Meaning{ID: id, Kind: kind, Probability: probability}
}

// WithMetadata returns a copy of m whose metadata holds value under namespace.
func (m Meaning) WithMetadata(namespace string, value any) Meaning {
	m.Metadata = withMetadata(m.Metadata, namespace, value)
	return m
}

// Term is an annotated span of the text.
type Term struct {
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Status   MeaningStatus  `json:"status"`
	Selected *Meaning       `json:"selected,omitempty"`
	Meanings []Meaning      `json:"meanings"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTerm builds a term, copying meanings and metadata so the caller's
// slices can be reused.
func NewTerm(start, end int, status MeaningStatus, selected *Meaning, meanings []Meaning, metadata map[string]any) Term {
	t := Term{
		Start:    start,
		End:      end,
		Status:   status,
		Meanings: slices.Clone(meanings),
	}
	if t.Meanings == nil {
		t.Meanings = []Meaning{}
	}
	if selected != nil {
		sel := *selected
		t.Selected = &sel
	}
	for ns, v := range metadata {
		t.Metadata = withMetadata(t.Metadata, ns, v)
	}
	return t
}

// Sentence groups the terms found in [Start, End).
type Sentence struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Terms []Term `json:"terms"`
}

// NewSentence builds a sentence, copying terms.
func NewSentence(start, end int, terms ...Term) Sentence {
	s := Sentence{Start: start, End: end, Terms: slices.Clone(terms)}
	if s.Terms == nil {
		s.Terms = []Term{}
	}
	return s
}

// Text is a semantic text. Locale language.Und stands for an unknown or
// root locale.
type Text struct {
	Locale    language.Tag `json:"locale"`
	Text      string       `json:"text"`
	Sentences []Sentence   `json:"sentences"`
}

// NewText builds a text from its sentences.
func NewText(locale language.Tag, text string, sentences ...Sentence) Text {
	t := Text{Locale: locale, Text: text, Sentences: slices.Clone(sentences)}
	if t.Sentences == nil {
		t.Sentences = []Sentence{}
	}
	return t
}

// TextOfTerms returns a text with a single sentence spanning the whole text.
func TextOfTerms(locale language.Tag, text string, terms ...Term) Text {
	return NewText(locale, text, NewSentence(0, len(text), terms...))
}

// Terms returns the terms of all sentences in order.
func (t Text) Terms() []Term {
	var out []Term
	for _, s := range t.Sentences {
		out = append(out, s.Terms...)
	}
	return out
}

// TermText returns the substring covered by term, clamped to the text bounds.
func (t Text) TermText(term Term) string {
	start, end := term.Start, term.End
	if start < 0 {
		start = 0
	}
	if end > len(t.Text) {
		end = len(t.Text)
	}
	if start >= end {
		return ""
	}
	return t.Text[start:end]
}

func withMetadata(md map[string]any, namespace string, value any) map[string]any {
	out := make(map[string]any, len(md)+1)
	for k, v := range md {
		out[k] = v
	}
	out[namespace] = value
	return out
}
