package endoperation

import (
	"image"
	"testing"
)

// starsImage is 36x10: each star slice is 12 wide and the threshold is 30
// bright pixels.
func starsImage(counts [3]int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 36, 10))
	for s, n := range counts {
		for i := 0; i < n; i++ {
			x, y := s*12+i%12, i/12
			g.Pix[y*g.Stride+x] = 200
		}
	}
	return g
}

func TestReadStarsThresholdIsStrict(t *testing.T) {
	tests := []struct {
		counts [3]int
		want   [3]bool
	}{
		{[3]int{120, 120, 120}, [3]bool{true, true, true}},
		{[3]int{31, 30, 0}, [3]bool{true, false, false}},
		{[3]int{0, 0, 31}, [3]bool{false, false, true}},
		{[3]int{0, 0, 0}, [3]bool{false, false, false}},
	}
	for _, tt := range tests {
		if got := ReadStars(starsImage(tt.counts)); got != tt.want {
			t.Errorf("ReadStars(%v) = %v, want %v", tt.counts, got, tt.want)
		}
	}
}

func TestReadStarsDimPixelsIgnored(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 36, 10))
	for i := range g.Pix {
		g.Pix[i] = 96
	}
	if got := ReadStars(g); got != [3]bool{} {
		t.Fatalf("ReadStars() = %v for pixels at the level", got)
	}
}

func TestReadStarsLastSliceTakesRemainder(t *testing.T) {
	// width 38: slices of 12, 12 and 14; threshold 10*38/12 = 31.67
	g := image.NewGray(image.Rect(0, 0, 38, 10))
	for y := 0; y < 10; y++ {
		for x := 34; x < 38; x++ {
			g.Pix[y*g.Stride+x] = 255
		}
	}
	if got := ReadStars(g); got != [3]bool{false, false, true} {
		t.Fatalf("ReadStars() = %v, want [false false true]", got)
	}
}
