package matching

import "strings"

var punctuationRemover = strings.NewReplacer(",", "", "!", "", "?", "", ".", "")

// Normalize canonicalizes an exercise name: lower case, no ",!?." and
// single spaces between words. Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	n := strings.ToLower(name)
	n = punctuationRemover.Replace(n)
	return strings.Join(strings.Fields(n), " ")
}
