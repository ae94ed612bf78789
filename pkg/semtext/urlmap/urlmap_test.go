package urlmap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/semtext/pkg/semtext/internalerr"
)

func TestMapperPrefixes(t *testing.T) {
	m := New("entities/", "concepts/")

	url, err := m.ConceptIDToURL(3)
	if err != nil {
		t.Fatal(err)
	}
	if url != "concepts/3" {
		t.Errorf("Expected concepts/3, got %q", url)
	}

	id, err := m.URLToConceptID("concepts/3")
	if err != nil {
		t.Fatalf("URLToConceptID: %v", err)
	}
	if id != 3 {
		t.Errorf("Expected 3, got %d", id)
	}

	if _, err := m.URLToConceptID("wrong/3"); !errors.Is(err, internalerr.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL for wrong prefix, got %v", err)
	}
}

func TestMapperEntities(t *testing.T) {
	m := New("a", "b")

	url, _ := m.EntityIDToURL(3)
	if url != "a3" {
		t.Errorf("Expected a3, got %q", url)
	}
	url, _ = m.ConceptIDToURL(3)
	if url != "b3" {
		t.Errorf("Expected b3, got %q", url)
	}
	id, err := m.URLToEntityID("a3")
	if err != nil || id != 3 {
		t.Errorf("Expected 3, got %d (%v)", id, err)
	}
}

func TestDefaultMapper(t *testing.T) {
	m := Default()
	url, _ := m.ConceptIDToURL(42)
	if url != "42" {
		t.Errorf("Expected 42, got %q", url)
	}
	id, err := m.URLToEntityID("-7")
	if err != nil || id != -7 {
		t.Errorf("Expected -7, got %d (%v)", id, err)
	}
}

func TestParseNumericalID(t *testing.T) {
	tests := []struct {
		prefix string
		url    string
		want   int64
		ok     bool
	}{
		{"c/", "c/12", 12, true},
		{"", "12", 12, true},
		{"c/", "c/", 0, false},
		{"c/", "c/12x", 0, false},
		{"c/", "", 0, false},
		{"c/", "d/12", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseNumericalID(tt.prefix, tt.url)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseNumericalID(%q, %q) = %d, %v; want %d", tt.prefix, tt.url, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, internalerr.ErrInvalidURL) {
			t.Errorf("ParseNumericalID(%q, %q) should fail with ErrInvalidURL, got %v", tt.prefix, tt.url, err)
		}
	}
}

func TestClientMapperDefaults(t *testing.T) {
	c, err := NewClient("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("Expected %s, got %s", DefaultBaseURL, c.BaseURL())
	}

	url, err := c.ConceptIDToURL(5)
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost/concepts/5" {
		t.Errorf("Unexpected concept url %q", url)
	}
	id, err := c.URLToConceptID("http://localhost/concepts/5?foo=bar")
	if err != nil || id != 5 {
		t.Errorf("Expected 5, got %d (%v)", id, err)
	}
}

func TestClientMapperBaseNormalization(t *testing.T) {
	c, err := NewClient("http://Bücher.example:8080/api/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != "http://xn--bcher-kva.example:8080/api" {
		t.Errorf("Unexpected base %q", c.BaseURL())
	}

	url, _ := c.EntityIDToURL(9)
	id, err := c.URLToEntityID(url)
	if err != nil || id != 9 {
		t.Errorf("Expected 9, got %d (%v)", id, err)
	}

	if _, err := NewClient("not a url", nil); !errors.Is(err, internalerr.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL for relative base, got %v", err)
	}
}

func TestClientMapperNamespaces(t *testing.T) {
	c, _ := NewClient("http://kb.example/api", nil)

	url, _ := c.NewEntityIDToURL(4)
	if url != "http://kb.example/api/instances/new/4" {
		t.Errorf("Unexpected new entity url %q", url)
	}
	if id, err := c.NewEntityURLToID(url); err != nil || id != 4 {
		t.Errorf("Expected 4, got %d (%v)", id, err)
	}
	if _, err := c.URLToEntityID(url); err == nil {
		t.Error("New entity url is not a plain entity url")
	}

	url, _ = c.EtypeIDToURL(8)
	if id, err := c.EtypeURLToID(url); err != nil || id != 8 {
		t.Errorf("Expected 8, got %d (%v)", id, err)
	}
	if !c.IsEtypeURL(url) || c.IsConceptURL(url) {
		t.Errorf("Predicates disagree on %q", url)
	}

	url, err := c.AttrDefIDToURL(10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://kb.example/api/attributedefinitions/10?debugConceptId=20" {
		t.Errorf("Unexpected attribute definition url %q", url)
	}
	if id, _ := c.AttrDefURLToID(url); id != 10 {
		t.Errorf("Expected attr def 10, got %d", id)
	}
	if id, _ := c.AttrDefURLToConceptID(url); id != 20 {
		t.Errorf("Expected concept 20, got %d", id)
	}
	if !c.IsAttrDefURL(url) {
		t.Error("Should be an attribute definition url")
	}
}

func TestClientMapperGlobalConceptID(t *testing.T) {
	c, _ := NewClient("", nil)
	id, err := c.ConceptURLToGlobalID("http://localhost/concepts/3?debugGlobalConceptId=77")
	if err != nil || id != 77 {
		t.Errorf("Expected 77, got %d (%v)", id, err)
	}
	if _, err := c.ConceptURLToGlobalID("http://localhost/concepts/3"); err == nil {
		t.Error("Missing parameter should fail")
	}
	if _, err := c.ConceptURLToGlobalID("http://localhost/concepts/3?debugGlobalConceptId=1&debugGlobalConceptId=2"); err == nil {
		t.Error("Repeated parameter should fail")
	}
}

func TestClientMapperIDChecks(t *testing.T) {
	c, _ := NewClient("", nil)

	if _, err := c.ConceptIDToURL(-2); !errors.Is(err, internalerr.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID for -2, got %v", err)
	}
	if _, err := c.EntityIDToURL(UnknownID); err != nil {
		t.Errorf("-1 is a valid unknown id: %v", err)
	}
	if _, err := c.AttrDefIDToURL(UnknownID, UnknownID); err != nil {
		t.Errorf("All unknown ids are congruent: %v", err)
	}
	if _, err := c.AttrDefIDToURL(UnknownID, 3); !errors.Is(err, internalerr.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID for -1 before a proper id, got %v", err)
	}
	if _, err := c.AttrDefIDToURL(3, UnknownID); !errors.Is(err, internalerr.ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID for -1 after a proper id, got %v", err)
	}
}

func TestClientMapperClampsIDs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, _ := NewClient("", zap.New(core))

	id, err := c.URLToConceptID("http://localhost/concepts/-5")
	if err != nil {
		t.Fatal(err)
	}
	if id != UnknownID {
		t.Errorf("Expected -1, got %d", id)
	}
	if logs.Len() != 1 {
		t.Errorf("Expected one warning, got %d", logs.Len())
	}
}

func TestClientMapperRejects(t *testing.T) {
	c, _ := NewClient("", nil)
	bad := []string{
		"",
		"concepts/3",
		"http://otherhost/concepts/3",
		"http://localhost/instances/3",
		"http://localhost/concepts/abc",
	}
	for _, raw := range bad {
		if _, err := c.URLToConceptID(raw); !errors.Is(err, internalerr.ErrInvalidURL) {
			t.Errorf("URLToConceptID(%q) should fail with ErrInvalidURL, got %v", raw, err)
		}
	}
	if c.IsEntityURL("") || c.IsConceptURL("") {
		t.Error("Empty input is never a url of any kind")
	}
}
