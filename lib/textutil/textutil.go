package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`[\s\p{Zs}]+`)

// NormalizeName lowercases a name and strips all whitespace from it, this is only
// meant for comparing names, never for displaying them.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// ClosestMatch returns the candidate most similar to `name` (Jaro-Winkler over
// normalized names) as long as the similarity reaches `threshold`.
func ClosestMatch(name string, candidates []string, threshold float64) (string, bool) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return "", false
	}

	var best string
	var bestSimilarity float64
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = c
		}
	}
	if bestSimilarity < threshold || best == "" {
		return "", false
	}
	return best, true
}
