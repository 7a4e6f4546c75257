package diag

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a candidate may be from the input.
const maxSuggestDistance = 2

// Suggest returns the closest candidate to name, or "" when none is close
// enough. Ties resolve to the lexically smallest candidate.
func Suggest(name string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, c := range sorted {
		if c == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDistance && d < len([]rune(name)) {
			best = c
			bestDistance = d
		}
	}
	return best
}

// DidYouMean formats a hint suffix for Suggest, or "" without a match.
func DidYouMean(name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" {
		return fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	return ""
}
