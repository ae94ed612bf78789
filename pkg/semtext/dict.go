package semtext

import (
	"encoding/json"
	"slices"
	"sort"

	"golang.org/x/text/language"
)

// Root is the locale used when the language of a string is unknown.
var Root = language.Und

// Dict holds localized strings: for each locale an ordered list of
// alternatives, the first being the preferred one. The zero value is an
// empty Dict. Dicts are immutable; With returns a new Dict.
type Dict struct {
	entries map[language.Tag][]string
}

// NewDict returns an empty Dict.
func NewDict() Dict {
	return Dict{}
}

// DictOf returns a Dict holding strings under locale. Empty strings are dropped.
func DictOf(locale language.Tag, strs ...string) Dict {
	return NewDict().With(locale, strs...)
}

// With returns a copy of d with strs appended under locale.
// Empty strings are dropped.
func (d Dict) With(locale language.Tag, strs ...string) Dict {
	var kept []string
	for _, s := range strs {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return d
	}
	out := make(map[language.Tag][]string, len(d.entries)+1)
	for k, v := range d.entries {
		out[k] = v
	}
	out[locale] = append(slices.Clone(out[locale]), kept...)
	return Dict{entries: out}
}

// String returns the preferred string for locale, or "" if there is none.
func (d Dict) String(locale language.Tag) string {
	if s := d.entries[locale]; len(s) > 0 {
		return s[0]
	}
	return ""
}

// Strings returns all strings for locale.
func (d Dict) Strings(locale language.Tag) []string {
	return slices.Clone(d.entries[locale])
}

// Locales returns the locales present in d, sorted by tag string.
func (d Dict) Locales() []language.Tag {
	out := make([]language.Tag, 0, len(d.entries))
	for k := range d.entries {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// IsEmpty reports whether d holds no strings.
func (d Dict) IsEmpty() bool {
	return len(d.entries) == 0
}

// MarshalJSON encodes d as an object of language tag → strings.
func (d Dict) MarshalJSON() ([]byte, error) {
	m := make(map[string][]string, len(d.entries))
	for k, v := range d.entries {
		m[k.String()] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object of language tag → strings.
func (d *Dict) UnmarshalJSON(b []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := NewDict()
	for k, v := range m {
		tag, err := language.Parse(k)
		if err != nil {
			return err
		}
		out = out.With(tag, v...)
	}
	*d = out
	return nil
}
