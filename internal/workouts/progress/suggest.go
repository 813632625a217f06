package progress

import (
	"sort"
	"unicode/utf8"

	"github.com/2beens/workouttracker/internal/workouts/matching"
)

const (
	minSuggestInputLen = 2
	maxSuggestions     = 3
)

// Suggest returns up to 3 candidates scoring above matching.SuggestionThreshold
// against the user input, best first. Ties keep candidate order.
func Suggest(userInput string, candidates []string) []string {
	if utf8.RuneCountInString(userInput) < minSuggestInputLen {
		return []string{}
	}

	type scored struct {
		name  string
		score float64
	}

	seen := make(map[string]bool, len(candidates))
	var matches []scored
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true

		if score := matching.Similarity(userInput, c); score > matching.SuggestionThreshold {
			matches = append(matches, scored{name: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.name)
	}
	return suggestions
}

// SuggestWithCatalog merges suggestions from the user's past exercise names
// with suggestions from the predefined catalog, past names first, no duplicates.
func SuggestWithCatalog(userInput string, pastNames []string) []string {
	suggestions := Suggest(userInput, pastNames)

	seen := make(map[string]bool, len(suggestions))
	for _, s := range suggestions {
		seen[s] = true
	}
	for _, s := range Suggest(userInput, Catalog()) {
		if !seen[s] {
			seen[s] = true
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}
