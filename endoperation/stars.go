package endoperation

import (
	"image"

	"github.com/akhelper/endop-service/imgops"
)

// starLevel is the luminance above which a pixel belongs to a lit star.
const starLevel = 96

// ReadStars splits img into three equal slices, the last one taking any
// remainder, and reports a star as lit when its slice has more bright pixels
// than height*width/12 of the whole image.
func ReadStars(img image.Image) [3]bool {
	g := imgops.Gray(img)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	starWidth := w / 3
	threshold := float64(h) * (float64(w) / 12)

	bounds := [4]int{0, starWidth, starWidth * 2, w}
	var stars [3]bool
	for i := range stars {
		count := 0
		for y := 0; y < h; y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+w]
			for _, v := range row[bounds[i]:bounds[i+1]] {
				if v > starLevel {
					count++
				}
			}
		}
		stars[i] = float64(count) > threshold
	}
	return stars
}
