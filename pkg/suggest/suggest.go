// Package suggest finds command names similar to a mistyped one.
package suggest

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// threshold is the minimum similarity score required for a string to be considered similar.
	threshold = 0.5
	// abbreviationScore is given to candidates that contain every character of the target in
	// order, e.g. "dpl" for "deploy-service".
	abbreviationScore = 0.75
)

// FindSimilar returns a list of similar strings to the target string from a list of candidates.
func FindSimilar(target string, candidates []string, maxResults int) []string {
	// Early returns for invalid inputs
	if target == "" || maxResults <= 0 {
		return []string{}
	}

	type scored struct {
		name  string
		score float64
	}
	suggestions := make([]scored, 0, len(candidates))

	for _, name := range candidates {
		score := calculateSimilarity(target, name)
		if score > threshold {
			suggestions = append(suggestions, scored{name, score})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].score == suggestions[j].score {
			return suggestions[i].name < suggestions[j].name
		}
		return suggestions[i].score > suggestions[j].score
	})

	result := make([]string, 0, maxResults)
	for i := 0; i < len(suggestions) && i < maxResults; i++ {
		result = append(result, suggestions[i].name)
	}
	return result
}

func calculateSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	if strings.HasPrefix(b, a) {
		return 0.9
	}
	distance := levenshteinDistance(a, b)
	maxLen := float64(max(len(a), len(b)))
	similarity := 1.0 - float64(distance)/maxLen

	if a != "" && similarity < abbreviationScore && fuzzy.Match(a, b) {
		return abbreviationScore
	}
	return similarity
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
