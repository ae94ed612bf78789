package convert

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cognicore/semtext/pkg/semtext"
	"github.com/cognicore/semtext/pkg/semtext/internalerr"
	"github.com/cognicore/semtext/pkg/semtext/nltext"
	"github.com/cognicore/semtext/pkg/semtext/urlmap"
)

// NLTextConverter converts annotated text into semantic text.
type NLTextConverter struct {
	mapper urlmap.IDMapper
	logger *zap.Logger
}

// NewNLText returns a converter configured by opts.
func NewNLText(opts Options) *NLTextConverter {
	opts = opts.withDefaults()
	return &NLTextConverter{mapper: opts.Mapper, logger: opts.Logger}
}

// Mapper returns the id mapper of the converter.
func (c *NLTextConverter) Mapper() urlmap.IDMapper {
	return c.mapper
}

// Convert converts text. reviewed marks annotations checked by a human and
// selects the REVIEWED/NOT_SURE statuses instead of SELECTED/TO_DISAMBIGUATE.
//
// Conversion never fails as a whole: sentences without offsets and tokens
// that cannot be converted are logged and skipped.
func (c *NLTextConverter) Convert(text *nltext.Text, reviewed bool) semtext.Text {
	if text == nil {
		c.logger.Warn("nil annotated text, returning empty semantic text")
		return semtext.NewText(semtext.Root, "")
	}

	locale := c.locale(text)
	sentences := make([]semtext.Sentence, 0, len(text.Sentences))
	for i := range text.Sentences {
		s, err := c.sentence(&text.Sentences[i], locale, reviewed)
		if err != nil {
			c.logger.Warn("skipping sentence", zap.Int("sentence", i), zap.Error(err))
			continue
		}
		sentences = append(sentences, s)
	}
	return semtext.NewText(locale, text.Text, sentences...)
}

func (c *NLTextConverter) locale(text *nltext.Text) language.Tag {
	if text.Language == nil {
		c.logger.Warn("annotated text has no language, using root locale")
		return semtext.Root
	}
	tag, err := language.Parse(*text.Language)
	if err != nil {
		c.logger.Warn("unparseable language, using root locale",
			zap.String("language", *text.Language), zap.Error(err))
		return semtext.Root
	}
	return tag
}

// Meaning converts one annotated meaning. It never fails: unsupported
// meanings and mapping errors are logged and give an empty meaning.
func (c *NLTextConverter) Meaning(m *nltext.Meaning, locale language.Tag) semtext.Meaning {
	if m == nil {
		c.logger.Warn("nil meaning, returning empty meaning")
		return semtext.Meaning{}
	}
	out, err := c.resolveMeaning(m, locale)
	if err != nil {
		c.logger.Error("cannot convert meaning, returning empty meaning",
			zap.Stringer("type", m.Type), zap.Error(err))
		return semtext.Meaning{}
	}
	return out
}

func (c *NLTextConverter) resolveMeaning(m *nltext.Meaning, locale language.Tag) (semtext.Meaning, error) {
	var out semtext.Meaning
	switch m.Type {
	case nltext.SenseMeaning:
		sense := m.Sense
		if sense == nil {
			sense = &nltext.Sense{}
		}
		id := ""
		if sense.ConceptID != nil {
			url, err := c.mapper.ConceptIDToURL(*sense.ConceptID)
			if err != nil {
				return semtext.Meaning{}, err
			}
			id = url
		}
		out = semtext.NewMeaning(id, semtext.Concept, m.Probability)
		out.Name = semtext.DictOf(locale, lemmas(m.Lemma, sense.SynonymousLemmas)...)
		out.Description = c.glossDict(sense.Glosses)

	case nltext.EntityMeaning:
		entity := m.Entity
		if entity == nil {
			entity = &nltext.Entity{}
		}
		id := ""
		if entity.ObjectID != nil {
			url, err := c.mapper.EntityIDToURL(*entity.ObjectID)
			if err != nil {
				return semtext.Meaning{}, err
			}
			id = url
		}
		out = semtext.NewMeaning(id, semtext.Entity, m.Probability)
		out.Name = semtext.DictOf(locale, id)
		out.Description = semtext.DictOf(locale, c.sanitize(entity.Description, "entity description"))

	default:
		return semtext.Meaning{}, fmt.Errorf("meaning type %v: %w", m.Type, internalerr.ErrUnsupportedMeaning)
	}

	return out.WithMetadata(Namespace, MeaningMetadata{
		Lemma:   c.sanitize(m.Lemma, "lemma"),
		Summary: c.sanitize(m.Summary, "summary"),
	}), nil
}

// lemmas returns the primary lemma followed by the synonyms, without
// duplicates or empty strings.
func lemmas(lemma *string, synonyms []string) []string {
	var out []string
	if lemma != nil && *lemma != "" {
		out = append(out, *lemma)
	}
	for _, s := range synonyms {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (c *NLTextConverter) glossDict(glosses map[string]string) semtext.Dict {
	d := semtext.NewDict()
	for key, gloss := range glosses {
		tag, err := language.Parse(key)
		if err != nil {
			c.logger.Warn("skipping gloss with unparseable language", zap.String("language", key))
			continue
		}
		d = d.With(tag, gloss)
	}
	return d
}

func (c *NLTextConverter) sanitize(s *string, what string) string {
	if s == nil {
		c.logger.Debug("missing string, using empty string", zap.String("field", what))
		return ""
	}
	return *s
}
