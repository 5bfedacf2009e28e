package segment

// DividerByJumps locates the divider bar on a vertical strip by its first two
// edges. ok is false when the strip has fewer than two edges.
func DividerByJumps(column []int, threshold int) (top, bottom int, ok bool) {
	jumps := FindJumps(column, threshold)
	if len(jumps) < 2 {
		return 0, 0, false
	}
	return jumps[0], jumps[1], true
}

// DividerByRowSum locates the divider bar as the span of rows whose sum
// exceeds ratio times the largest row sum. top is the first such row and
// bottom is one past the last. Both are 0 when no row qualifies.
func DividerByRowSum(rowSums []int, ratio float64) (top, bottom int) {
	if len(rowSums) == 0 {
		return 0, 0
	}
	maxSum := rowSums[0]
	for _, s := range rowSums[1:] {
		if s > maxSum {
			maxSum = s
		}
	}
	limit := float64(maxSum) * ratio

	for i, s := range rowSums {
		if float64(s) > limit {
			top = i
			break
		}
	}
	for i := len(rowSums) - 1; i >= 0; i-- {
		if float64(rowSums[i]) > limit {
			bottom = i + 1
			break
		}
	}
	return top, bottom
}

// DividerByDerivative locates the divider bar at the strongest rise and the
// strongest fall between consecutive row sums. Each position is one past the
// first index of the extreme difference. ok is false for fewer than two rows.
func DividerByDerivative(rowSums []int) (top, bottom int, ok bool) {
	if len(rowSums) < 2 {
		return 0, 0, false
	}
	maxIdx, minIdx := 0, 0
	maxDiff := rowSums[1] - rowSums[0]
	minDiff := maxDiff
	for i := 1; i+1 < len(rowSums); i++ {
		d := rowSums[i+1] - rowSums[i]
		if d > maxDiff {
			maxDiff, maxIdx = d, i
		}
		if d < minDiff {
			minDiff, minIdx = d, i
		}
	}
	return maxIdx + 1, minIdx + 1, true
}
