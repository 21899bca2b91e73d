package resolve

import (
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// fold normalizes a term for comparison: Unicode case folding plus
// surrounding whitespace removal happens at the call sites that need it.
func fold(s string) string {
	return foldCaser.String(s)
}

// Similarity returns a normalized string-similarity ratio in [0,1]
// between two terms, computed as 2*LCS/(len(a)+len(b)) over case-folded
// runes. Identical terms score 1; disjoint terms score 0.
func Similarity(a, b string) float64 {
	ra := []rune(fold(a))
	rb := []rune(fold(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := lcsLength(ra, rb)
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest-common-subsequence length with a
// two-row DP table.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
