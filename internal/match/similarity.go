package match

// Ratio computes a Ratcliff/Obershelp similarity between two strings:
// twice the number of characters in common matching blocks divided by the
// total length. Identical strings score 1.0, fully disjoint strings 0.0,
// and the measure is symmetric.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return 2.0 * float64(matchingTotal(ra, rb)) / float64(total)
}

// RatioUpperBound returns a cheap upper bound on Ratio based on character
// multisets. It never underestimates, so a window whose bound cannot beat
// the current best score can be skipped without affecting the result.
func RatioUpperBound(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	counts := make(map[rune]int, len(ra))
	for _, r := range ra {
		counts[r]++
	}
	common := 0
	for _, r := range rb {
		if counts[r] > 0 {
			counts[r]--
			common++
		}
	}
	return 2.0 * float64(common) / float64(total)
}

// matchingTotal sums the sizes of all matching blocks: the longest common
// block plus, recursively, the matches to its left and right.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingTotal(a[:ai], b[:bi]) +
		matchingTotal(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest contiguous block common to a and b.
// Among equally long blocks it prefers the one starting earliest in a,
// then earliest in b, which keeps Ratio deterministic.
func longestCommonBlock(a, b []rune) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// j2len[j] = length of the common block ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int, len(b2j[r]))
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return bestA, bestB, bestSize
}
