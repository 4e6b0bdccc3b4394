package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/fragment-engine/pkg/types"
)

// conceptPattern matches bracket-delimited spans, non-greedy.
var conceptPattern = regexp.MustCompile(`(?s)\[.*?\]`)

// ScanConcepts collects every bracketed concept list in text. Each match
// is stripped of its brackets and split on ", "; the groups are appended
// under the single "all concepts" key in match order. An empty span
// yields a single empty token, per the splitter's contract.
func ScanConcepts(text string) types.ConceptSpace {
	matches := conceptPattern.FindAllString(text, -1)

	space := types.ConceptSpace{AllConcepts: make([][]string, 0, len(matches))}
	for _, m := range matches {
		inner := strings.Trim(m, "[]")
		space.AllConcepts = append(space.AllConcepts, strings.Split(inner, ", "))
	}

	return space
}
