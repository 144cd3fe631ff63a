package tools

// similarChars counts matching characters between two strings by recursively
// locating the longest common substring and scoring the remainders on each
// side of it.
func similarChars(a, b string) int {
	posA, posB, max := longestCommonRun(a, b)
	if max == 0 {
		return 0
	}
	sum := max
	sum += similarChars(a[:posA], b[:posB])
	sum += similarChars(a[posA+max:], b[posB+max:])
	return sum
}

// longestCommonRun finds the first longest common substring of a and b and
// returns its start offsets and length.
func longestCommonRun(a, b string) (posA, posB, max int) {
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			n := 0
			for i+n < len(a) && j+n < len(b) && a[i+n] == b[j+n] {
				n++
			}
			if n > max {
				posA, posB, max = i, j, n
			}
		}
	}
	return posA, posB, max
}

// SimilarityPercent is the symmetric character-similarity score between two
// strings: twice the matching character count over the combined length, as a
// percentage.
func SimilarityPercent(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	matching := similarChars(a, b)
	return float64(matching) * 2 * 100 / float64(len(a)+len(b))
}
