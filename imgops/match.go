package imgops

import (
	"errors"
	"image"
	"math"
)

// ErrTemplateTooLarge is returned when a template does not fit inside the
// image it is matched against.
var ErrTemplateTooLarge = errors.New("image smaller than template")

// integral holds summed-area tables of values and squared values with one
// row and column of zero padding.
type integral struct {
	w, h int
	sum  []float64
	sq   []float64
}

func newIntegral(g *image.Gray) *integral {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	it := &integral{w: w, h: h, sum: make([]float64, (w+1)*(h+1)), sq: make([]float64, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		var rs, rq float64
		for x := 0; x < w; x++ {
			v := float64(g.Pix[y*g.Stride+x])
			rs += v
			rq += v * v
			i := (y+1)*(w+1) + x + 1
			it.sum[i] = it.sum[i-(w+1)] + rs
			it.sq[i] = it.sq[i-(w+1)] + rq
		}
	}
	return it
}

func (it *integral) window(t []float64, x, y, w, h int) float64 {
	s := it.w + 1
	return t[(y+h)*s+x+w] - t[y*s+x+w] - t[(y+h)*s+x] + t[y*s+x]
}

func templateStats(t *image.Gray) (sum, sq float64) {
	b := t.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range t.Pix[y*t.Stride : y*t.Stride+b.Dx()] {
			f := float64(v)
			sum += f
			sq += f * f
		}
	}
	return sum, sq
}

func cross(g, t *image.Gray, x, y int) float64 {
	tw, th := t.Bounds().Dx(), t.Bounds().Dy()
	var s float64
	for ty := 0; ty < th; ty++ {
		gi := (y+ty)*g.Stride + x
		ti := ty * t.Stride
		for tx := 0; tx < tw; tx++ {
			s += float64(g.Pix[gi+tx]) * float64(t.Pix[ti+tx])
		}
	}
	return s
}

// MatchTemplate slides t over g and returns the position with the lowest
// normalized squared difference together with that score (0 is a perfect
// match).
func MatchTemplate(g, t *image.Gray) (image.Point, float64, error) {
	gw, gh := g.Bounds().Dx(), g.Bounds().Dy()
	tw, th := t.Bounds().Dx(), t.Bounds().Dy()
	if tw > gw || th > gh {
		return image.Point{}, 0, ErrTemplateTooLarge
	}
	it := newIntegral(g)
	_, tsq := templateStats(t)

	best := math.Inf(1)
	var loc image.Point
	for y := 0; y+th <= gh; y++ {
		for x := 0; x+tw <= gw; x++ {
			isq := it.window(it.sq, x, y, tw, th)
			num := isq - 2*cross(g, t, x, y) + tsq
			den := math.Sqrt(isq * tsq)
			var score float64
			switch {
			case den > 0:
				score = num / den
			case num > 0:
				score = 1
			}
			if score < best {
				best, loc = score, image.Pt(x, y)
			}
		}
	}
	return loc, best, nil
}

// MatchTemplateCCoeff slides t over g and returns the position with the
// highest normalized correlation coefficient together with that score.
func MatchTemplateCCoeff(g, t *image.Gray) (image.Point, float64, error) {
	gw, gh := g.Bounds().Dx(), g.Bounds().Dy()
	tw, th := t.Bounds().Dx(), t.Bounds().Dy()
	if tw > gw || th > gh {
		return image.Point{}, 0, ErrTemplateTooLarge
	}
	n := float64(tw * th)
	it := newIntegral(g)
	tsum, tsq := templateStats(t)
	tvar := tsq - tsum*tsum/n
	tmean := tsum / n

	best := math.Inf(-1)
	var loc image.Point
	for y := 0; y+th <= gh; y++ {
		for x := 0; x+tw <= gw; x++ {
			isum := it.window(it.sum, x, y, tw, th)
			ivar := it.window(it.sq, x, y, tw, th) - isum*isum/n
			num := cross(g, t, x, y) - tmean*isum
			var score float64
			if den := math.Sqrt(tvar * ivar); den > 1e-9 {
				score = num / den
			}
			if score > best {
				best, loc = score, image.Pt(x, y)
			}
		}
	}
	return loc, best, nil
}

// MSE is the mean squared difference between two equally sized images over
// their red, green and blue samples. Gray images compare as their single
// level.
func MSE(a, b image.Image) float64 {
	ga, aGray := a.(*image.Gray)
	gb, bGray := b.(*image.Gray)
	if aGray && bGray {
		return mseGray(Gray(ga), Gray(gb))
	}
	na, nb := NRGBA(a), NRGBA(b)
	w := min(na.Rect.Dx(), nb.Rect.Dx())
	h := min(na.Rect.Dy(), nb.Rect.Dy())
	if w == 0 || h == 0 {
		return math.Inf(1)
	}
	var s float64
	for y := 0; y < h; y++ {
		ia, ib := y*na.Stride, y*nb.Stride
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				d := float64(na.Pix[ia+c]) - float64(nb.Pix[ib+c])
				s += d * d
			}
			ia += 4
			ib += 4
		}
	}
	return s / float64(w*h*3)
}

func mseGray(a, b *image.Gray) float64 {
	w := min(a.Rect.Dx(), b.Rect.Dx())
	h := min(a.Rect.Dy(), b.Rect.Dy())
	if w == 0 || h == 0 {
		return math.Inf(1)
	}
	var s float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := float64(a.Pix[y*a.Stride+x]) - float64(b.Pix[y*b.Stride+x])
			s += d * d
		}
	}
	return s / float64(w*h)
}

// UniformSize brings two images to a common size: the taller one is scaled
// down to the other's height, then the wider one is cropped to the other's
// width. Gray inputs stay gray.
func UniformSize(a, b image.Image) (image.Image, image.Image) {
	ah, bh := a.Bounds().Dy(), b.Bounds().Dy()
	if ah < bh {
		b = scaleAnyToHeight(b, ah)
	} else if ah > bh {
		a = scaleAnyToHeight(a, bh)
	}
	aw, bw := a.Bounds().Dx(), b.Bounds().Dx()
	if aw > bw {
		a = cropAny(a, image.Rect(0, 0, bw, a.Bounds().Dy()))
	} else if bw > aw {
		b = cropAny(b, image.Rect(0, 0, aw, b.Bounds().Dy()))
	}
	return a, b
}

func scaleAnyToHeight(img image.Image, h int) image.Image {
	if g, ok := img.(*image.Gray); ok {
		return ScaleToHeight(Gray(g), h)
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * float64(h) / float64(b.Dy()))
	return ResizeBilinear(img, w, h)
}

func cropAny(img image.Image, r image.Rectangle) image.Image {
	if g, ok := img.(*image.Gray); ok {
		return CropGray(Gray(g), r)
	}
	return Crop(img, r)
}
