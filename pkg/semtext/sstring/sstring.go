// Package sstring models the semantic string, the weighted reference format
// consumed by the indexing backend. A semantic string carries no sentence
// segmentation and no explicit selected meaning: weights are all there is.
package sstring

// DefaultWeight is the weight of a reference that carries none.
const DefaultWeight = 1.0

// SemanticString is a text with its complex concepts.
type SemanticString struct {
	Text            *string          `json:"text,omitempty"`
	ComplexConcepts []ComplexConcept `json:"complexConcepts"`
}

// ComplexConcept groups semantic terms.
type ComplexConcept struct {
	Terms []SemanticTerm `json:"terms"`
}

// SemanticTerm is a span of the text, identified by its byte offset and its
// display text, with the references it may stand for.
type SemanticTerm struct {
	Offset        *int           `json:"offset,omitempty"`
	Text          string         `json:"text"`
	ConceptTerms  []ConceptTerm  `json:"conceptTerms,omitempty"`
	InstanceTerms []InstanceTerm `json:"instanceTerms,omitempty"`
	StringTerms   []StringTerm   `json:"stringTerms,omitempty"`
}

// ConceptTerm references a concept by numeric id.
type ConceptTerm struct {
	Value  *int64   `json:"value,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// InstanceTerm references an entity by numeric id.
type InstanceTerm struct {
	Value  *int64   `json:"value,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// StringTerm is an indexable string.
type StringTerm struct {
	Value  string   `json:"value"`
	Weight *float64 `json:"weight,omitempty"`
}

// WeightOr returns w, or DefaultWeight if w is nil.
func WeightOr(w *float64) float64 {
	if w == nil {
		return DefaultWeight
	}
	return *w
}

// Concept returns a concept reference.
func Concept(id int64, weight float64) ConceptTerm {
	return ConceptTerm{Value: &id, Weight: &weight}
}

// Instance returns an instance reference.
func Instance(id int64, weight float64) InstanceTerm {
	return InstanceTerm{Value: &id, Weight: &weight}
}

// String returns a string reference.
func String(value string, weight float64) StringTerm {
	return StringTerm{Value: value, Weight: &weight}
}

// Terms returns all semantic terms in order.
func (s *SemanticString) Terms() []SemanticTerm {
	if s == nil {
		return nil
	}
	var out []SemanticTerm
	for _, cc := range s.ComplexConcepts {
		out = append(out, cc.Terms...)
	}
	return out
}

// ConceptIDs returns the distinct concept ids referenced by s, in first-seen order.
func (s *SemanticString) ConceptIDs() []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, t := range s.Terms() {
		for _, c := range t.ConceptTerms {
			if c.Value != nil && !seen[*c.Value] {
				seen[*c.Value] = true
				ids = append(ids, *c.Value)
			}
		}
	}
	return ids
}

// InstanceIDs returns the distinct instance ids referenced by s, in first-seen order.
func (s *SemanticString) InstanceIDs() []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, t := range s.Terms() {
		for _, c := range t.InstanceTerms {
			if c.Value != nil && !seen[*c.Value] {
				seen[*c.Value] = true
				ids = append(ids, *c.Value)
			}
		}
	}
	return ids
}

// Strings returns every string reference value, in order.
func (s *SemanticString) Strings() []string {
	var out []string
	for _, t := range s.Terms() {
		for _, st := range t.StringTerms {
			out = append(out, st.Value)
		}
	}
	return out
}
