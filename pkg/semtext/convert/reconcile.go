package convert

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cognicore/semtext/pkg/semtext"
	"github.com/cognicore/semtext/pkg/semtext/internalerr"
	"github.com/cognicore/semtext/pkg/semtext/nltext"
)

// sentence merges the tokens and groups of s into non-overlapping terms.
//
// Tokens are walked left to right. A token inside a group emits one term
// for the best group it belongs to, covering the run of following tokens in
// that group; a plain token emits a term for itself if it has meanings.
// Tokens starting before the end of the last term are skipped.
func (c *NLTextConverter) sentence(s *nltext.Sentence, locale language.Tag, reviewed bool) (semtext.Sentence, error) {
	if s.Start == nil || s.End == nil {
		return semtext.Sentence{}, fmt.Errorf("sentence: %w", internalerr.ErrMissingOffset)
	}
	start, end := *s.Start, *s.End

	var terms []semtext.Term
	lastEnd := math.MinInt
	for i := 0; i < len(s.Tokens); {
		term, next, err := c.termAt(s, i, start, lastEnd, locale, reviewed)
		if err != nil {
			c.logger.Warn("skipping token",
				zap.Int("token", i), zap.String("text", s.Tokens[i].Text), zap.Error(err))
			i++
			continue
		}
		if term != nil {
			terms = append(terms, *term)
			lastEnd = term.End
		}
		i = next
	}
	return semtext.NewSentence(start, end, terms...), nil
}

// termAt builds the term starting at token i, if any, and returns the index
// of the next token to look at.
func (c *NLTextConverter) termAt(s *nltext.Sentence, i, sentenceStart, lastEnd int, locale language.Tag, reviewed bool) (*semtext.Term, int, error) {
	tok := &s.Tokens[i]
	if tok.Start == nil {
		return nil, 0, fmt.Errorf("token start: %w", internalerr.ErrMissingOffset)
	}
	if lastEnd > sentenceStart+*tok.Start {
		return nil, i + 1, nil
	}

	if len(tok.Groups) == 0 {
		if !tok.HasMeanings() {
			return nil, i + 1, nil
		}
		if tok.End == nil {
			c.logger.Warn("skipping token without end offset",
				zap.Int("token", i), zap.String("text", tok.Text))
			return nil, i + 1, nil
		}
		term, err := c.tokenTerm(s, tok, sentenceStart, locale, reviewed)
		if err != nil {
			return nil, 0, err
		}
		return &term, i + 1, nil
	}

	gi, err := bestGroup(s, tok)
	if err != nil {
		return nil, 0, err
	}
	run := 1
	for j := i + 1; j < len(s.Tokens) && slices.Contains(s.Tokens[j].Groups, gi); j++ {
		run++
	}
	last := &s.Tokens[i+run-1]
	if last.End == nil {
		c.logger.Warn("skipping group without end offset",
			zap.Int("token", i), zap.Int("group", gi), zap.Int("tokens", run))
		return nil, i + run, nil
	}
	term, err := c.groupTerm(s, &s.Groups[gi], sentenceStart+*tok.Start, sentenceStart+*last.End, locale, reviewed)
	if err != nil {
		return nil, 0, err
	}
	return &term, i + run, nil
}

// bestGroup picks among the groups of tok: more tokens wins; on equal size
// a group with a selected meaning beats one without, and a named entity
// with a selected meaning beats a multi-word. Otherwise the first seen stays.
func bestGroup(s *nltext.Sentence, tok *nltext.Token) (int, error) {
	best := -1
	for _, gi := range tok.Groups {
		cand, ok := s.Group(gi)
		if !ok {
			return 0, fmt.Errorf("group index %d: %w", gi, internalerr.ErrInvalidInput)
		}
		if best < 0 {
			best = gi
			continue
		}
		cur := &s.Groups[best]
		switch {
		case len(cand.Tokens) > len(cur.Tokens):
			best = gi
		case len(cand.Tokens) < len(cur.Tokens):
		case cur.Selected == nil && cand.Selected != nil:
			best = gi
		case cur.Selected != nil && cand.Selected != nil &&
			cand.Kind == nltext.NamedEntity && cur.Kind == nltext.MultiWord:
			best = gi
		}
	}
	return best, nil
}

func (c *NLTextConverter) tokenTerm(s *nltext.Sentence, tok *nltext.Token, sentenceStart int, locale language.Tag, reviewed bool) (semtext.Term, error) {
	meanings, err := c.candidates(s, tok.Meanings, locale)
	if err != nil {
		return semtext.Term{}, err
	}
	selected, err := c.selected(s, tok.Selected, locale)
	if err != nil {
		return semtext.Term{}, err
	}

	var stems []string
	if tok.DerivedStem != nil && *tok.DerivedStem != "" {
		stems = append(stems, *tok.DerivedStem)
	} else {
		c.logger.Debug("token has no derived stem", zap.String("text", tok.Text))
	}
	if tok.Text != "" {
		stems = append(stems, tok.Text)
	}
	md := TermMetadata{Stems: nonNil(stems), DerivedLemmas: nonNil(slices.Clone(tok.DerivedLemmas))}

	return semtext.NewTerm(
		sentenceStart+*tok.Start,
		sentenceStart+*tok.End,
		semtext.StatusFor(selected != nil, reviewed),
		selected,
		meanings,
		map[string]any{Namespace: md},
	), nil
}

func (c *NLTextConverter) groupTerm(s *nltext.Sentence, g *nltext.Group, start, end int, locale language.Tag, reviewed bool) (semtext.Term, error) {
	meanings, err := c.candidates(s, g.Meanings, locale)
	if err != nil {
		return semtext.Term{}, err
	}
	selected, err := c.selected(s, g.Selected, locale)
	if err != nil {
		return semtext.Term{}, err
	}

	if len(meanings) == 0 && selected == nil {
		if kind := c.groupKind(g); kind != semtext.Unknown {
			placeholder := semtext.NewMeaning("", kind, 1.0).WithMetadata(Namespace, MeaningMetadata{})
			meanings = []semtext.Meaning{placeholder}
		}
	}

	md := TermMetadata{Stems: []string{}, DerivedLemmas: nonNil(slices.Clone(g.DerivedLemmas))}
	return semtext.NewTerm(
		start,
		end,
		semtext.StatusFor(selected != nil, reviewed),
		selected,
		meanings,
		map[string]any{Namespace: md},
	), nil
}

// candidates resolves the meanings at idxs, dropping repeated indices, and
// sorts them by descending probability.
func (c *NLTextConverter) candidates(s *nltext.Sentence, idxs []int, locale language.Tag) ([]semtext.Meaning, error) {
	seen := make(map[int]bool, len(idxs))
	var out []semtext.Meaning
	for _, mi := range idxs {
		if seen[mi] {
			continue
		}
		seen[mi] = true
		m, ok := s.Meaning(mi)
		if !ok {
			return nil, fmt.Errorf("meaning index %d: %w", mi, internalerr.ErrInvalidInput)
		}
		out = append(out, c.Meaning(m, locale))
	}
	return semtext.SortByProbability(out), nil
}

// selected resolves the selected meaning at idx. A meaning that resolves
// to an empty id counts as no selection.
func (c *NLTextConverter) selected(s *nltext.Sentence, idx *int, locale language.Tag) (*semtext.Meaning, error) {
	if idx == nil {
		return nil, nil
	}
	m, ok := s.Meaning(*idx)
	if !ok {
		return nil, fmt.Errorf("selected meaning index %d: %w", *idx, internalerr.ErrInvalidInput)
	}
	out := c.Meaning(m, locale)
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

func (c *NLTextConverter) groupKind(g *nltext.Group) semtext.MeaningKind {
	switch g.Kind {
	case nltext.MultiWord:
		return semtext.Concept
	case nltext.NamedEntity:
		return semtext.Entity
	default:
		c.logger.Warn("group of unhandled kind, meaning kind is unknown", zap.Stringer("kind", g.Kind))
		return semtext.Unknown
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
