package semtext

import (
	"encoding/json"
	"reflect"
	"testing"

	"golang.org/x/text/language"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		hasSelected bool
		reviewed    bool
		want        MeaningStatus
	}{
		{true, false, Selected},
		{false, false, ToDisambiguate},
		{true, true, Reviewed},
		{false, true, NotSure},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.hasSelected, tt.reviewed); got != tt.want {
			t.Errorf("StatusFor(%v, %v) = %v, want %v", tt.hasSelected, tt.reviewed, got, tt.want)
		}
	}
}

func TestMeaningStatusHasSelection(t *testing.T) {
	if !Selected.HasSelection() || !Reviewed.HasSelection() {
		t.Error("Selected and Reviewed should imply a selection")
	}
	if ToDisambiguate.HasSelection() || NotSure.HasSelection() {
		t.Error("ToDisambiguate and NotSure should not imply a selection")
	}
}

func TestMeaningKindText(t *testing.T) {
	for _, k := range []MeaningKind{Unknown, Concept, Entity} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got MeaningKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != k {
			t.Errorf("Expected %v, got %v", k, got)
		}
	}

	var k MeaningKind
	if err := k.UnmarshalText([]byte("SENSE")); err == nil {
		t.Error("Should reject unknown kind name")
	}
	if s := MeaningKind(42).String(); s != "MeaningKind(42)" {
		t.Errorf("Unexpected string for out of range kind: %s", s)
	}
}

func TestDictWith(t *testing.T) {
	d := DictOf(Root, "a", "", "b")
	if got := d.Strings(Root); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", got)
	}

	d2 := d.With(language.Italian, "ciao")
	if d.String(language.Italian) != "" {
		t.Error("With should not modify the receiver")
	}
	if d2.String(language.Italian) != "ciao" {
		t.Errorf("Expected ciao, got %q", d2.String(language.Italian))
	}
	if len(d2.Locales()) != 2 {
		t.Errorf("Expected 2 locales, got %v", d2.Locales())
	}
}

func TestDictEmpty(t *testing.T) {
	var d Dict
	if !d.IsEmpty() {
		t.Error("Zero dict should be empty")
	}
	if !DictOf(Root, "").IsEmpty() {
		t.Error("Dict of empty strings should be empty")
	}
	if d.String(Root) != "" {
		t.Error("Empty dict should return empty string")
	}
}

func TestDictJSON(t *testing.T) {
	d := DictOf(language.English, "hello", "hi").With(Root, "x")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var got Dict
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Strings(language.English), []string{"hello", "hi"}) {
		t.Errorf("Unexpected english strings: %v", got.Strings(language.English))
	}
	if got.String(Root) != "x" {
		t.Errorf("Expected root string x, got %q", got.String(Root))
	}
}

func TestDisambiguate(t *testing.T) {
	if Disambiguate(nil) != nil {
		t.Error("No meanings should give no selection")
	}

	c := NewMeaning("c1", Concept, 0.1)
	e := NewMeaning("e2", Entity, 5.0)
	got := Disambiguate([]Meaning{c, e})
	if got == nil || got.ID != "e2" {
		t.Errorf("Expected e2 to be selected, got %v", got)
	}

	tie := Disambiguate([]Meaning{NewMeaning("a", Concept, 0.5), NewMeaning("b", Concept, 0.5)})
	if tie != nil {
		t.Errorf("Tied meanings should not be disambiguated, got %v", tie)
	}

	close := Disambiguate([]Meaning{NewMeaning("a", Concept, 0.55), NewMeaning("b", Concept, 0.5)})
	if close != nil {
		t.Errorf("Meanings within the margin should not be disambiguated, got %v", close)
	}

	single := Disambiguate([]Meaning{NewMeaning("a", Concept, 1.0)})
	if single == nil || single.ID != "a" {
		t.Errorf("Single confident meaning should be selected, got %v", single)
	}
}

func TestSortByProbabilityStable(t *testing.T) {
	in := []Meaning{
		NewMeaning("low", Concept, 0.1),
		NewMeaning("first", Concept, 0.8),
		NewMeaning("second", Concept, 0.8),
	}
	got := SortByProbability(in)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	if !reflect.DeepEqual(ids, []string{"first", "second", "low"}) {
		t.Errorf("Expected [first second low], got %v", ids)
	}
	if in[0].ID != "low" {
		t.Error("SortByProbability should not modify its input")
	}
}

func TestTermText(t *testing.T) {
	text := TextOfTerms(Root, "hello dear world",
		NewTerm(6, 10, ToDisambiguate, nil, nil, nil),
		NewTerm(12, 40, ToDisambiguate, nil, nil, nil),
	)
	terms := text.Terms()
	if len(terms) != 2 {
		t.Fatalf("Expected 2 terms, got %d", len(terms))
	}
	if got := text.TermText(terms[0]); got != "dear" {
		t.Errorf("Expected dear, got %q", got)
	}
	if got := text.TermText(terms[1]); got != "orld" {
		t.Errorf("Out of bounds term should be clamped, got %q", got)
	}
}

func TestNewTermCopies(t *testing.T) {
	meanings := []Meaning{NewMeaning("a", Concept, 0.5)}
	sel := NewMeaning("a", Concept, 0.5)
	term := NewTerm(0, 1, Selected, &sel, meanings, map[string]any{"ns": 1})

	meanings[0].ID = "changed"
	sel.ID = "changed"
	if term.Meanings[0].ID != "a" || term.Selected.ID != "a" {
		t.Error("NewTerm should copy its inputs")
	}
	if term.Metadata["ns"] != 1 {
		t.Errorf("Expected metadata to be kept, got %v", term.Metadata)
	}

	empty := NewTerm(0, 1, ToDisambiguate, nil, nil, nil)
	if empty.Meanings == nil {
		t.Error("Meanings should never be nil")
	}
}

func TestMeaningWithMetadata(t *testing.T) {
	m := NewMeaning("a", Concept, 1)
	m2 := m.WithMetadata("ns", "v")
	if m.Metadata != nil {
		t.Error("WithMetadata should not modify the receiver")
	}
	if m2.Metadata["ns"] != "v" {
		t.Errorf("Expected metadata v, got %v", m2.Metadata)
	}
}
