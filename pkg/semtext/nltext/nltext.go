// Package nltext models the output of an NLP annotation pipeline: sentences
// of tokens, multi-word and named-entity groups over those tokens, and the
// candidate sense or entity meanings attached to both.
//
// A Sentence owns its tokens, groups and meanings. Tokens and groups refer to
// each other and to meanings by index into the owning sentence, so the model
// has no back-pointers and can be decoded from JSON as is.
package nltext

import (
	"fmt"
)

// GroupKind tells what kind of complex token a group is.
type GroupKind int

const (
	MultiWord GroupKind = iota
	NamedEntity
	OtherGroup
)

var groupKindNames = [...]string{
	MultiWord:   "MULTI_WORD",
	NamedEntity: "NAMED_ENTITY",
	OtherGroup:  "OTHER",
}

func (k GroupKind) String() string {
	if int(k) >= 0 && int(k) < len(groupKindNames) {
		return groupKindNames[k]
	}
	return fmt.Sprintf("GroupKind(%d)", int(k))
}

func (k GroupKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GroupKind) UnmarshalText(b []byte) error {
	for i, name := range groupKindNames {
		if name == string(b) {
			*k = GroupKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown group kind: %q", string(b))
}

// MeaningType selects which variant of Meaning is populated.
type MeaningType int

const (
	SenseMeaning MeaningType = iota
	EntityMeaning
	UnsupportedMeaning
)

var meaningTypeNames = [...]string{
	SenseMeaning:       "SENSE",
	EntityMeaning:      "ENTITY",
	UnsupportedMeaning: "UNSUPPORTED",
}

func (t MeaningType) String() string {
	if int(t) >= 0 && int(t) < len(meaningTypeNames) {
		return meaningTypeNames[t]
	}
	return fmt.Sprintf("MeaningType(%d)", int(t))
}

func (t MeaningType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *MeaningType) UnmarshalText(b []byte) error {
	for i, name := range meaningTypeNames {
		if name == string(b) {
			*t = MeaningType(i)
			return nil
		}
	}
	// Anything the pipeline emits that we don't know about.
	*t = UnsupportedMeaning
	return nil
}

// Text is an annotated text.
type Text struct {
	Text      string     `json:"text"`
	Language  *string    `json:"language,omitempty"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence is a span of the text with its annotation arena.
type Sentence struct {
	Start    *int      `json:"start,omitempty"`
	End      *int      `json:"end,omitempty"`
	Tokens   []Token   `json:"tokens"`
	Groups   []Group   `json:"groups,omitempty"`
	Meanings []Meaning `json:"meanings,omitempty"`
}

// Token is a single word. Start and End are relative to the sentence start.
type Token struct {
	Text          string   `json:"text"`
	Start         *int     `json:"start,omitempty"`
	End           *int     `json:"end,omitempty"`
	Meanings      []int    `json:"meanings,omitempty"`
	Selected      *int     `json:"selected,omitempty"`
	Groups        []int    `json:"groups,omitempty"`
	DerivedStem   *string  `json:"derivedStem,omitempty"`
	DerivedLemmas []string `json:"derivedLemmas,omitempty"`
}

// Group is a multi-word expression or named entity spanning Tokens.
type Group struct {
	Kind          GroupKind `json:"kind"`
	Tokens        []int     `json:"tokens"`
	Meanings      []int     `json:"meanings,omitempty"`
	Selected      *int      `json:"selected,omitempty"`
	DerivedLemmas []string  `json:"derivedLemmas,omitempty"`
}

// Meaning is a candidate meaning. Exactly one of Sense and Entity is set,
// according to Type; both are nil for UnsupportedMeaning.
type Meaning struct {
	Type        MeaningType `json:"type"`
	Lemma       *string     `json:"lemma,omitempty"`
	Summary     *string     `json:"summary,omitempty"`
	Probability float64     `json:"probability"`
	Sense       *Sense      `json:"sense,omitempty"`
	Entity      *Entity     `json:"entity,omitempty"`
}

// Sense is a word sense from a lexical knowledge base. Glosses maps a
// language tag ("en", "it") to the gloss in that language.
type Sense struct {
	ConceptID        *int64            `json:"conceptId,omitempty"`
	SynonymousLemmas []string          `json:"synonymousLemmas,omitempty"`
	Glosses          map[string]string `json:"glosses,omitempty"`
}

// Entity is a reference to a real-world object.
type Entity struct {
	ObjectID    *int64  `json:"objectId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// NewSense returns a sense meaning for conceptID.
func NewSense(lemma string, probability float64, conceptID int64, synonyms ...string) Meaning {
	return Meaning{
		Type:        SenseMeaning,
		Lemma:       &lemma,
		Probability: probability,
		Sense:       &Sense{ConceptID: &conceptID, SynonymousLemmas: synonyms},
	}
}

// NewEntity returns an entity meaning for objectID.
func NewEntity(lemma string, probability float64, objectID int64) Meaning {
	return Meaning{
		Type:        EntityMeaning,
		Lemma:       &lemma,
		Probability: probability,
		Entity:      &Entity{ObjectID: &objectID},
	}
}

// AddMeaning appends m to the sentence and returns its index.
func (s *Sentence) AddMeaning(m Meaning) int {
	s.Meanings = append(s.Meanings, m)
	return len(s.Meanings) - 1
}

// AddToken appends a token spanning [start, end) relative to the sentence
// and returns its index.
func (s *Sentence) AddToken(text string, start, end int) int {
	s.Tokens = append(s.Tokens, Token{Text: text, Start: &start, End: &end})
	return len(s.Tokens) - 1
}

// AddMultiWord adds a multi-word group over tokens and returns its index.
func (s *Sentence) AddMultiWord(tokens ...int) (int, error) {
	return s.addGroup(MultiWord, tokens)
}

// AddNamedEntity adds a named-entity group over tokens and returns its index.
func (s *Sentence) AddNamedEntity(tokens ...int) (int, error) {
	return s.addGroup(NamedEntity, tokens)
}

func (s *Sentence) addGroup(kind GroupKind, tokens []int) (int, error) {
	if len(tokens) == 0 {
		return 0, fmt.Errorf("group has no tokens")
	}
	for _, ti := range tokens {
		if ti < 0 || ti >= len(s.Tokens) {
			return 0, fmt.Errorf("token index %d out of range", ti)
		}
	}
	gi := len(s.Groups)
	s.Groups = append(s.Groups, Group{Kind: kind, Tokens: append([]int(nil), tokens...)})
	for _, ti := range tokens {
		s.Tokens[ti].Groups = append(s.Tokens[ti].Groups, gi)
	}
	return gi, nil
}

// SetSpan sets the absolute span of the sentence.
func (s *Sentence) SetSpan(start, end int) {
	s.Start, s.End = &start, &end
}

// Meaning returns the meaning at index i.
func (s *Sentence) Meaning(i int) (*Meaning, bool) {
	if i < 0 || i >= len(s.Meanings) {
		return nil, false
	}
	return &s.Meanings[i], true
}

// Group returns the group at index i.
func (s *Sentence) Group(i int) (*Group, bool) {
	if i < 0 || i >= len(s.Groups) {
		return nil, false
	}
	return &s.Groups[i], true
}

// HasMeanings reports whether the token carries a candidate or selected meaning.
func (t Token) HasMeanings() bool {
	return len(t.Meanings) > 0 || t.Selected != nil
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
