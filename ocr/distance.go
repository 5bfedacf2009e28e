package ocr

// Levenshtein returns the edit distance between a and b counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// MatchDistance returns the index of the candidate closest to text and its
// edit distance. Ties go to the earlier candidate.
func MatchDistance(text string, candidates []string) (int, int, error) {
	if len(candidates) == 0 {
		return 0, 0, ErrNoCandidates
	}
	best, bestDist := 0, Levenshtein(text, candidates[0])
	for i, c := range candidates[1:] {
		if d := Levenshtein(text, c); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best, bestDist, nil
}
