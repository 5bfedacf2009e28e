package endoperation

import "github.com/akhelper/endop-service/item"

// GroupResult is one labelled reward group in screen order.
type GroupResult struct {
	Group string                `json:"group"`
	Items []item.RecognizedItem `json:"items"`
}

// Result is everything read from one results screen.
type Result struct {
	Operation     string        `json:"operation"`
	Stars         [3]bool       `json:"stars"`
	Items         []GroupResult `json:"items"`
	LowConfidence bool          `json:"low_confidence"`
}

// StarCount returns the number of lit stars.
func (r *Result) StarCount() int {
	n := 0
	for _, s := range r.Stars {
		if s {
			n++
		}
	}
	return n
}

// ItemCount returns the number of items over all groups.
func (r *Result) ItemCount() int {
	n := 0
	for _, g := range r.Items {
		n += len(g.Items)
	}
	return n
}
