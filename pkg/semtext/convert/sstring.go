package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/semtext/pkg/semtext"
	"github.com/cognicore/semtext/pkg/semtext/internalerr"
	"github.com/cognicore/semtext/pkg/semtext/sstring"
	"github.com/cognicore/semtext/pkg/semtext/urlmap"
)

// SelectedWeight is the weight a selected meaning gets in a semantic
// string. It is above any probability so the selection can be recovered
// from the weights alone.
const SelectedWeight = 5.0

// SemanticStringConverter converts semantic text to and from semantic strings.
type SemanticStringConverter struct {
	mapper urlmap.IDMapper
	logger *zap.Logger
}

// NewSemanticString returns a converter configured by opts.
func NewSemanticString(opts Options) *SemanticStringConverter {
	opts = opts.withDefaults()
	return &SemanticStringConverter{mapper: opts.Mapper, logger: opts.Logger}
}

// Mapper returns the id mapper of the converter.
func (c *SemanticStringConverter) Mapper() urlmap.IDMapper {
	return c.mapper
}

// SemanticString encodes st. Every term becomes one complex concept
// holding one semantic term. The selected meaning is weighted
// SelectedWeight, the other candidates keep their probability. Terms
// without a selected meaning only carry their strings.
//
// Meaning URLs that the mapper cannot decode and meanings of unknown kind
// with an id are errors.
func (c *SemanticStringConverter) SemanticString(st semtext.Text) (*sstring.SemanticString, error) {
	text := st.Text
	out := &sstring.SemanticString{Text: &text, ComplexConcepts: []sstring.ComplexConcept{}}

	for _, sentence := range st.Sentences {
		for _, term := range sentence.Terms {
			semTerm, err := c.semanticTerm(st, term)
			if err != nil {
				return nil, fmt.Errorf("term [%d, %d): %w", term.Start, term.End, err)
			}
			out.ComplexConcepts = append(out.ComplexConcepts, sstring.ComplexConcept{
				Terms: []sstring.SemanticTerm{semTerm},
			})
		}
	}
	return out, nil
}

func (c *SemanticStringConverter) semanticTerm(st semtext.Text, term semtext.Term) (sstring.SemanticTerm, error) {
	offset := term.Start
	out := sstring.SemanticTerm{Offset: &offset, Text: st.TermText(term)}

	// Without a selection no reference is written: decoding would
	// otherwise pick the most probable candidate.
	if term.Status.HasSelection() && term.Selected != nil {
		selected := term.Selected
		if err := c.addMeaning(&out, *selected, SelectedWeight); err != nil {
			return sstring.SemanticTerm{}, err
		}
		for _, m := range term.Meanings {
			if m.ID == selected.ID {
				continue
			}
			if err := c.addMeaning(&out, m, m.Probability); err != nil {
				return sstring.SemanticTerm{}, err
			}
		}
	}

	var strs []string
	if md, ok := termMetadata(term.Metadata[Namespace]); ok {
		strs = md.Strings()
	}
	if len(strs) == 0 {
		c.logger.Debug("term has no indexable strings, using its text",
			zap.Int("start", term.Start), zap.Int("end", term.End))
		strs = []string{out.Text}
	}
	for _, s := range strs {
		out.StringTerms = append(out.StringTerms, sstring.String(s, sstring.DefaultWeight))
	}
	return out, nil
}

func (c *SemanticStringConverter) addMeaning(out *sstring.SemanticTerm, m semtext.Meaning, weight float64) error {
	if m.ID == "" {
		return nil
	}
	switch m.Kind {
	case semtext.Concept:
		id, err := c.mapper.URLToConceptID(m.ID)
		if err != nil {
			return err
		}
		out.ConceptTerms = append(out.ConceptTerms, sstring.Concept(id, weight))
	case semtext.Entity:
		id, err := c.mapper.URLToEntityID(m.ID)
		if err != nil {
			return err
		}
		out.InstanceTerms = append(out.InstanceTerms, sstring.Instance(id, weight))
	default:
		return fmt.Errorf("meaning %q of kind %v: %w", m.ID, m.Kind, internalerr.ErrUnsupportedMeaning)
	}
	return nil
}

// SemText decodes ss into a semantic text with a single sentence spanning
// the whole text. A term is kept only if it starts at or after the end of
// the previous kept term, its end being offset plus the byte length of its
// display text, and if it references at least one concept or entity. The
// selected meaning is picked by semtext.Disambiguate.
func (c *SemanticStringConverter) SemText(ss *sstring.SemanticString, reviewed bool) semtext.Text {
	if ss == nil {
		c.logger.Warn("nil semantic string, returning empty semantic text")
		return semtext.NewText(semtext.Root, "")
	}
	text := ""
	if ss.Text != nil {
		text = *ss.Text
	}

	var terms []semtext.Term
	pos := 0
	for _, cc := range ss.ComplexConcepts {
		for _, st := range cc.Terms {
			if st.Offset == nil {
				c.logger.Warn("skipping semantic term without offset", zap.String("text", st.Text))
				continue
			}
			if *st.Offset < pos {
				c.logger.Debug("skipping overlapping semantic term",
					zap.Int("offset", *st.Offset), zap.Int("previousEnd", pos))
				continue
			}
			meanings := c.meanings(st)
			if len(meanings) == 0 {
				continue
			}
			selected := semtext.Disambiguate(meanings)
			end := *st.Offset + len(st.Text)

			var md map[string]any
			if len(st.StringTerms) > 0 {
				stems := make([]string, 0, len(st.StringTerms))
				for _, s := range st.StringTerms {
					stems = append(stems, s.Value)
				}
				md = map[string]any{Namespace: TermMetadata{Stems: stems, DerivedLemmas: []string{}}}
			}

			terms = append(terms, semtext.NewTerm(
				*st.Offset,
				end,
				semtext.StatusFor(selected != nil, reviewed),
				selected,
				semtext.SortByProbability(meanings),
				md,
			))
			pos = end
		}
	}
	return semtext.TextOfTerms(semtext.Root, text, terms...)
}

func (c *SemanticStringConverter) meanings(st sstring.SemanticTerm) []semtext.Meaning {
	var out []semtext.Meaning
	for _, ct := range st.ConceptTerms {
		if ct.Value == nil {
			continue
		}
		url, err := c.mapper.ConceptIDToURL(*ct.Value)
		if err != nil {
			c.logger.Warn("skipping concept reference", zap.Int64("id", *ct.Value), zap.Error(err))
			continue
		}
		out = append(out, semtext.NewMeaning(url, semtext.Concept, sstring.WeightOr(ct.Weight)))
	}
	for _, it := range st.InstanceTerms {
		if it.Value == nil {
			continue
		}
		url, err := c.mapper.EntityIDToURL(*it.Value)
		if err != nil {
			c.logger.Warn("skipping instance reference", zap.Int64("id", *it.Value), zap.Error(err))
			continue
		}
		out = append(out, semtext.NewMeaning(url, semtext.Entity, sstring.WeightOr(it.Weight)))
	}
	return out
}
