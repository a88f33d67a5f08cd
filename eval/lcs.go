package eval

import "unicode/utf8"

// LongestCommonSubstring returns the length, in runes, of the longest
// contiguous run of runes shared by text and pattern. Matching is exact:
// case and whitespace count.
func LongestCommonSubstring(text, pattern string) int {
	t := []rune(text)
	p := []rune(pattern)
	if len(t) == 0 || len(p) == 0 {
		return 0
	}

	// prev[j] / curr[j]: length of the common run ending at t[i-1], p[j-1].
	prev := make([]int, len(p)+1)
	curr := make([]int, len(p)+1)
	best := 0
	for i := 1; i <= len(t); i++ {
		for j := 1; j <= len(p); j++ {
			if t[i-1] == p[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		if best == len(p) {
			return best
		}
		prev, curr = curr, prev
	}
	return best
}

// LCSRatio is LongestCommonSubstring(text, answer) over the rune length of
// answer. An empty answer scores 0.
func LCSRatio(text, answer string) float64 {
	n := utf8.RuneCountInString(answer)
	if n == 0 {
		return 0
	}
	return float64(LongestCommonSubstring(text, answer)) / float64(n)
}
