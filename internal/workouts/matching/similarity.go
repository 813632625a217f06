package matching

import "unicode/utf8"

const (
	// SuggestionThreshold is the similarity a candidate must exceed to be suggested.
	SuggestionThreshold = 75.0
	// IdentityThreshold is the similarity two names must exceed to count as the same exercise.
	IdentityThreshold = 85.0
)

// EditDistance returns the Levenshtein distance between the normalized forms of a and b.
func EditDistance(a, b string) int {
	return distance([]rune(Normalize(a)), []rune(Normalize(b)))
}

// Similarity scores two names in [0, 100], 100 meaning identical after normalization.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}

	d := distance([]rune(na), []rune(nb))
	return (float64(maxLen-d) / float64(maxLen)) * 100
}

// ClampPercent bounds a score to [0, 100] for display.
func ClampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// distance fills a (len(s2)+1) x (len(s1)+1) matrix and returns its bottom right cell.
func distance(s1, s2 []rune) int {
	matrix := make([][]int, len(s2)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s1)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s1); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s2); i++ {
		for j := 1; j <= len(s1); j++ {
			if s2[i-1] == s1[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = min(
				matrix[i-1][j-1]+1, // substitution
				matrix[i][j-1]+1,   // insertion
				matrix[i-1][j]+1,   // deletion
			)
		}
	}

	return matrix[len(s2)][len(s1)]
}
