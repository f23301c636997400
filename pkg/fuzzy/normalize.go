// Package fuzzy decides whether a search result is textually relevant to a query,
// tolerating script variants and punctuation noise.
package fuzzy

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
)

var (
	parenRegex      = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize folds text into the form relevance comparisons run on: compatibility
// folded, simplified Chinese, lower case, without parenthesized asides, with
// punctuation runs collapsed to single spaces. Normalize(Normalize(s)) == Normalize(s).
//
// Folding is lossy: every nonspacing mark is dropped, including ones that carry
// meaning. Kana voicing folds away (ガ and カ compare equal) and Indic vowel signs
// disappear. Normalized text is for comparison only, never for display.
func Normalize(text string) string {
	if folded, _, err := transform.String(foldTransformer(), text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	text = parenRegex.ReplaceAllString(text, " ")
	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Similarity returns the rune-level longest common subsequence of a and b divided by
// the longer length, in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	r1, r2 := []rune(a), []rune(b)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	return float64(longestCommonSubsequence(r1, r2)) / float64(max(len(r1), len(r2)))
}

func longestCommonSubsequence(s1, s2 []rune) int {
	m, n := len(s1), len(s2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
