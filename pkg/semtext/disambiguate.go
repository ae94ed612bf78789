package semtext

import (
	"slices"
	"sort"
)

// DisambiguationMargin is how much the most probable meaning must lead the
// runner-up to be picked by Disambiguate.
const DisambiguationMargin = 0.1

// Disambiguate returns the meaning judged most likely among meanings, or nil
// if no meaning is clearly better than the others. A single meaning is
// picked when its probability exceeds the margin.
func Disambiguate(meanings []Meaning) *Meaning {
	if len(meanings) == 0 {
		return nil
	}
	sorted := SortByProbability(meanings)
	best := sorted[0]
	runnerUp := 0.0
	if len(sorted) > 1 {
		runnerUp = sorted[1].Probability
	}
	if best.Probability-runnerUp <= DisambiguationMargin {
		return nil
	}
	return &best
}

// SortByProbability returns a copy of meanings ordered by descending
// probability. Meanings with equal probability keep their relative order.
func SortByProbability(meanings []Meaning) []Meaning {
	out := slices.Clone(meanings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}
