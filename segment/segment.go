// Package segment finds group boundaries and divider bars in 1-D intensity
// profiles taken from the results screen.
package segment

import (
	"errors"
	"fmt"
)

// JumpThreshold is the minimum step between neighbouring samples that counts
// as an edge on the results screen.
const JumpThreshold = 55

// ErrIncompleteItemList is returned when a profile yields an odd number of
// boundary points, which happens when the reward list runs off the screen.
var ErrIncompleteItemList = errors.New("possibly incomplete item list")

// FindJumps returns the positions of sharp steps in values.
//
// Differences between neighbours whose magnitude reaches threshold are kept
// and clustered while their sign stays the same. Each cluster contributes one
// point: the |diff|-weighted mean of its indices, truncated, plus one.
func FindJumps(values []int, threshold int) []int {
	type step struct {
		index int
		diff  int
	}
	var kept []step
	for i := 0; i+1 < len(values); i++ {
		d := values[i+1] - values[i]
		if abs(d) >= threshold {
			kept = append(kept, step{i, d})
		}
	}
	if len(kept) == 0 {
		return nil
	}

	var clusters [][]step
	clusters = append(clusters, []step{kept[0]})
	for _, s := range kept[1:] {
		last := clusters[len(clusters)-1]
		if sign(s.diff) == sign(last[len(last)-1].diff) {
			clusters[len(clusters)-1] = append(last, s)
		} else {
			clusters = append(clusters, []step{s})
		}
	}

	points := make([]int, 0, len(clusters))
	for _, c := range clusters {
		var sum, weights float64
		for _, s := range c {
			w := float64(abs(s.diff))
			sum += float64(s.index) * w
			weights += w
		}
		points = append(points, int(sum/weights)+1)
	}
	return points
}

// Pair groups boundary points two at a time into [start, end) spans.
func Pair(points []int) ([][2]int, error) {
	if len(points)%2 != 0 {
		return nil, fmt.Errorf("%w: %d boundary points", ErrIncompleteItemList, len(points))
	}
	pairs := make([][2]int, 0, len(points)/2)
	for i := 0; i < len(points); i += 2 {
		pairs = append(pairs, [2]int{points[i], points[i+1]})
	}
	return pairs, nil
}

// Groups splits a horizontal profile of the divider bar into group spans. The
// profile is expected to start inside the first group, so 0 is always the
// first boundary.
func Groups(profile []int, threshold int) ([][2]int, error) {
	points := append([]int{0}, FindJumps(profile, threshold)...)
	return Pair(points)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
