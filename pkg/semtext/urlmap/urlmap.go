// Package urlmap maps numeric concept and entity ids to URLs and back.
package urlmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/semtext/pkg/semtext/internalerr"
)

// IDMapper converts between numeric ids and URL identifiers. Decoding
// errors wrap internalerr.ErrInvalidURL, encoding errors wrap
// internalerr.ErrInvalidID.
type IDMapper interface {
	ConceptIDToURL(id int64) (string, error)
	EntityIDToURL(id int64) (string, error)
	URLToConceptID(url string) (int64, error)
	URLToEntityID(url string) (int64, error)
}

// Mapper maps ids by plain prefix concatenation. The zero value uses empty
// prefixes, so ids map to their decimal string.
type Mapper struct {
	entityPrefix  string
	conceptPrefix string
}

var _ IDMapper = Mapper{}

// New returns a mapper with the given prefixes.
func New(entityPrefix, conceptPrefix string) Mapper {
	return Mapper{entityPrefix: entityPrefix, conceptPrefix: conceptPrefix}
}

// Default returns the mapper with empty prefixes.
func Default() Mapper {
	return Mapper{}
}

func (m Mapper) EntityPrefix() string  { return m.entityPrefix }
func (m Mapper) ConceptPrefix() string { return m.conceptPrefix }

func (m Mapper) ConceptIDToURL(id int64) (string, error) {
	return m.conceptPrefix + strconv.FormatInt(id, 10), nil
}

func (m Mapper) EntityIDToURL(id int64) (string, error) {
	return m.entityPrefix + strconv.FormatInt(id, 10), nil
}

func (m Mapper) URLToConceptID(url string) (int64, error) {
	return ParseNumericalID(m.conceptPrefix, url)
}

func (m Mapper) URLToEntityID(url string) (int64, error) {
	return ParseNumericalID(m.entityPrefix, url)
}

// ParseNumericalID strips prefix from url and parses the rest as a base-10
// integer.
func ParseNumericalID(prefix, url string) (int64, error) {
	if url == "" {
		return 0, fmt.Errorf("empty url: %w", internalerr.ErrInvalidURL)
	}
	rest, ok := strings.CutPrefix(url, prefix)
	if !ok {
		return 0, fmt.Errorf("url %q does not start with prefix %q: %w", url, prefix, internalerr.ErrInvalidURL)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("url %q has no numeric id after prefix %q: %w", url, prefix, internalerr.ErrInvalidURL)
	}
	return id, nil
}
