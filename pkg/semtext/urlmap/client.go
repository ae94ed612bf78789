package urlmap

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/cognicore/semtext/pkg/semtext/internalerr"
)

// DefaultBaseURL is the knowledge base endpoint used when none is configured.
const DefaultBaseURL = "http://localhost"

// UnknownID stands for an id that is not known yet.
const UnknownID int64 = -1

const (
	conceptPath = "/concepts"
	entityPath  = "/instances"
	newEntity   = "/instances/new"
	etypePath   = "/types"
	attrDefPath = "/attributedefinitions"

	paramConceptID       = "debugConceptId"
	paramGlobalConceptID = "debugGlobalConceptId"
)

// ClientMapper maps ids of a remote knowledge base to full URLs such as
// http://host/api/concepts/12. Besides concepts and entities it knows about
// entity types, attribute definitions and not yet persisted entities.
//
// Id -1 means unknown. Parsed ids below -1 are read as -1.
type ClientMapper struct {
	base   string
	logger *zap.Logger
}

var _ IDMapper = (*ClientMapper)(nil)

// NewClient returns a mapper for the endpoint baseURL, like
// "http://example.org/api". An empty baseURL means DefaultBaseURL.
// Trailing slashes are dropped and the host is converted to its ASCII form.
func NewClient(baseURL string, logger *zap.Logger) (*ClientMapper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, internalerr.ErrInvalidURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs scheme and host: %w", baseURL, internalerr.ErrInvalidURL)
	}
	host, err := asciiHost(u.Host)
	if err != nil {
		return nil, fmt.Errorf("base url %q: %w", baseURL, err)
	}
	return &ClientMapper{
		base:   u.Scheme + "://" + host + u.EscapedPath(),
		logger: logger,
	}, nil
}

// BaseURL returns the normalized endpoint.
func (c *ClientMapper) BaseURL() string {
	return c.base
}

func (c *ClientMapper) ConceptIDToURL(id int64) (string, error) {
	if err := checkValidID(id, "concept"); err != nil {
		return "", err
	}
	return c.base + conceptPath + "/" + strconv.FormatInt(id, 10), nil
}

func (c *ClientMapper) URLToConceptID(raw string) (int64, error) {
	return c.parseIDFromPrefix(conceptPath, raw)
}

// ConceptURLToGlobalID extracts the global concept id a concept URL
// carries in its debugGlobalConceptId parameter.
func (c *ClientMapper) ConceptURLToGlobalID(raw string) (int64, error) {
	return c.parseIDFromParam(paramGlobalConceptID, raw)
}

func (c *ClientMapper) EntityIDToURL(id int64) (string, error) {
	if err := checkValidID(id, "entity"); err != nil {
		return "", err
	}
	return c.base + entityPath + "/" + strconv.FormatInt(id, 10), nil
}

func (c *ClientMapper) URLToEntityID(raw string) (int64, error) {
	return c.parseIDFromPrefix(entityPath, raw)
}

// NewEntityIDToURL returns the URL of an entity that is not persisted yet.
func (c *ClientMapper) NewEntityIDToURL(id int64) (string, error) {
	if err := checkValidID(id, "entity"); err != nil {
		return "", err
	}
	return c.base + newEntity + "/" + strconv.FormatInt(id, 10), nil
}

func (c *ClientMapper) NewEntityURLToID(raw string) (int64, error) {
	return c.parseIDFromPrefix(newEntity, raw)
}

func (c *ClientMapper) EtypeIDToURL(id int64) (string, error) {
	if err := checkValidID(id, "etype"); err != nil {
		return "", err
	}
	return c.base + etypePath + "/" + strconv.FormatInt(id, 10), nil
}

func (c *ClientMapper) EtypeURLToID(raw string) (int64, error) {
	return c.parseIDFromPrefix(etypePath, raw)
}

// AttrDefIDToURL returns the URL of an attribute definition. The concept
// of the attribute travels along in the debugConceptId parameter. Either
// both ids are unknown or neither is.
func (c *ClientMapper) AttrDefIDToURL(attrDefID, conceptID int64) (string, error) {
	if err := checkValidID(attrDefID, "attribute definition"); err != nil {
		return "", err
	}
	if err := checkValidID(conceptID, "concept"); err != nil {
		return "", err
	}
	if err := checkCongruent(attrDefID, conceptID); err != nil {
		return "", err
	}
	q := url.Values{paramConceptID: {strconv.FormatInt(conceptID, 10)}}
	return c.base + attrDefPath + "/" + strconv.FormatInt(attrDefID, 10) + "?" + q.Encode(), nil
}

func (c *ClientMapper) AttrDefURLToID(raw string) (int64, error) {
	return c.parseIDFromPrefix(attrDefPath, raw)
}

func (c *ClientMapper) AttrDefURLToConceptID(raw string) (int64, error) {
	return c.parseIDFromParam(paramConceptID, raw)
}

// IsEntityURL reports whether raw looks like an entity URL. Empty input is
// never one.
func (c *ClientMapper) IsEntityURL(raw string) bool {
	return raw != "" && strings.Contains(raw, entityPath)
}

func (c *ClientMapper) IsConceptURL(raw string) bool {
	return raw != "" && strings.Contains(raw, conceptPath)
}

func (c *ClientMapper) IsEtypeURL(raw string) bool {
	return raw != "" && strings.Contains(raw, etypePath)
}

func (c *ClientMapper) IsAttrDefURL(raw string) bool {
	return raw != "" && strings.Contains(raw, attrDefPath)
}

func (c *ClientMapper) parseIDFromPrefix(prefix, raw string) (int64, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return 0, err
	}
	host, err := asciiHost(u.Host)
	if err != nil {
		return 0, err
	}
	withoutQuery := u.Scheme + "://" + host + u.EscapedPath()
	rest, ok := strings.CutPrefix(withoutQuery, c.base+prefix+"/")
	if !ok {
		return 0, fmt.Errorf("url %q is not under %s%s: %w", raw, c.base, prefix, internalerr.ErrInvalidURL)
	}
	id, err := c.parseID(rest)
	if err != nil {
		return 0, fmt.Errorf("url %q for prefix %s: %w", raw, prefix, err)
	}
	return id, nil
}

func (c *ClientMapper) parseIDFromParam(param, raw string) (int64, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return 0, err
	}
	values := u.Query()[param]
	if len(values) != 1 {
		return 0, fmt.Errorf("expected one %s in %q, found %d: %w", param, raw, len(values), internalerr.ErrInvalidURL)
	}
	id, err := c.parseID(values[0])
	if err != nil {
		return 0, fmt.Errorf("param %s of %q: %w", param, raw, err)
	}
	return id, nil
}

func (c *ClientMapper) parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a numeric id %q: %w", s, internalerr.ErrInvalidURL)
	}
	if id < UnknownID {
		c.logger.Warn("id below -1, reading it as -1", zap.Int64("id", id))
		return UnknownID, nil
	}
	return id, nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("found invalid url %q: %w", raw, internalerr.ErrInvalidURL)
	}
	return u, nil
}

// asciiHost converts the host part of hostport to its IDNA ASCII form,
// keeping the port.
func asciiHost(hostport string) (string, error) {
	host, port := hostport, ""
	if i := strings.LastIndexByte(hostport, ':'); i >= 0 && !strings.Contains(hostport[i:], "]") {
		host, port = hostport[:i], hostport[i:]
	}
	if strings.HasPrefix(host, "[") {
		return hostport, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, internalerr.ErrInvalidURL)
	}
	return ascii + port, nil
}

func checkValidID(id int64, what string) error {
	if id < UnknownID {
		return fmt.Errorf("%s id %d is less than -1: %w", what, id, internalerr.ErrInvalidID)
	}
	return nil
}

func checkCongruent(ids ...int64) error {
	unknown, known := false, false
	for _, id := range ids {
		if id == UnknownID {
			unknown = true
		} else {
			known = true
		}
	}
	if unknown && known {
		return fmt.Errorf("ids must be either all -1 or all proper ids, got %v: %w", ids, internalerr.ErrInvalidID)
	}
	return nil
}
