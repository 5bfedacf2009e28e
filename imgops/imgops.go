// Package imgops holds the pixel operations used by the results screen
// recognizer. Images handed around are zero-origin: color crops are
// *image.NRGBA and luminance planes are *image.Gray.
package imgops

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// NRGBA returns img as a zero-origin *image.NRGBA, copying only when needed.
func NRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Crop returns the part of img inside r. r is clipped to the image.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, r)
}

// CropGray returns a zero-origin copy of the part of g inside r.
func CropGray(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Rect)
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		src := g.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], g.Pix[src:src+r.Dx()])
	}
	return dst
}

// Luminance converts an RGB triple the same way ITU-R 601-2 luma is computed
// for 8-bit "L" images.
func Luminance(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Gray converts img to a zero-origin luminance plane.
func Gray(img image.Image) *image.Gray {
	switch src := img.(type) {
	case *image.Gray:
		if src.Rect.Min == (image.Point{}) {
			return src
		}
		return CropGray(src, src.Rect)
	case *image.NRGBA:
		b := src.Rect
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
			for x := range row {
				row[x] = Luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				i += 4
			}
		}
		return dst
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[y*dst.Stride+x] = Luminance(c.R, c.G, c.B)
		}
	}
	return dst
}

// Threshold binarises g in place: values above t become 255, the rest 0.
func Threshold(g *image.Gray, t uint8) *image.Gray {
	for i, v := range g.Pix {
		if v > t {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
	return g
}

// EnhanceContrast stretches the levels [lower, upper) linearly onto [0, 255).
// Levels below lower go to 0 and levels from upper on go to 255. A negative
// upper uses the brightest level of g.
func EnhanceContrast(g *image.Gray, lower, upper int) *image.Gray {
	if upper < 0 {
		upper = 0
		for _, v := range g.Pix {
			if int(v) > upper {
				upper = int(v)
			}
		}
	}
	var lut [256]uint8
	for x := 0; x < 256; x++ {
		switch {
		case x >= upper:
			lut[x] = 255
		case x >= lower:
			lut[x] = uint8(255 * (x - lower) / (upper - lower))
		}
	}
	dst := image.NewGray(g.Rect)
	for i, v := range g.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}

// ScaleToHeight resizes g bilinearly to height h keeping the aspect ratio.
// The width is truncated.
func ScaleToHeight(g *image.Gray, h int) *image.Gray {
	b := g.Bounds()
	w := int(float64(b.Dx()) * float64(h) / float64(b.Dy()))
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// ResizeBilinear resizes img to w x h with a bilinear kernel.
func ResizeBilinear(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// InvertPad inverts g and surrounds it with pad pixels of white.
func InvertPad(g *image.Gray, pad int) *image.Gray {
	b := g.Bounds()
	canvas := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.White)
	canvas = imaging.Paste(canvas, imaging.Invert(g), image.Pt(pad, pad))
	return Gray(canvas)
}

// BrightLevel is the level above which a pixel counts as content when
// trimming black edges.
const BrightLevel = 127

// BlackEdgeBox returns the smallest rectangle holding every column with at
// least xThreshold bright pixels and every row with at least yThreshold
// bright pixels. ok is false when nothing qualifies.
func BlackEdgeBox(g *image.Gray, xThreshold, yThreshold int) (r image.Rectangle, ok bool) {
	b := g.Bounds()
	cols := make([]int, b.Dx())
	rows := make([]int, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for x, v := range row {
			if v > BrightLevel {
				cols[x]++
				rows[y]++
			}
		}
	}
	x0, x1 := span(cols, max(xThreshold, 1))
	y0, y1 := span(rows, max(yThreshold, 1))
	if x0 >= x1 || y0 >= y1 {
		return image.Rectangle{}, false
	}
	return image.Rect(x0, y0, x1, y1), true
}

// CropBlackEdge trims dark borders off g. g is returned unchanged when it
// holds no content.
func CropBlackEdge(g *image.Gray, threshold int) *image.Gray {
	r, ok := BlackEdgeBox(g, threshold, threshold)
	if !ok {
		return g
	}
	return CropGray(g, r)
}

func span(counts []int, threshold int) (lo, hi int) {
	lo, hi = -1, -1
	for i, c := range counts {
		if c >= threshold {
			if lo < 0 {
				lo = i
			}
			hi = i + 1
		}
	}
	if lo < 0 {
		return 0, 0
	}
	return lo, hi
}

// Row returns row y of g as ints.
func Row(g *image.Gray, y int) []int {
	w := g.Bounds().Dx()
	out := make([]int, w)
	for x, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
		out[x] = int(v)
	}
	return out
}

// Column returns column x of g as ints.
func Column(g *image.Gray, x int) []int {
	h := g.Bounds().Dy()
	out := make([]int, h)
	for y := 0; y < h; y++ {
		out[y] = int(g.Pix[y*g.Stride+x])
	}
	return out
}

// RowSums sums every row of g.
func RowSums(g *image.Gray) []int {
	b := g.Bounds()
	out := make([]int, b.Dy())
	for y := range out {
		s := 0
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+b.Dx()] {
			s += int(v)
		}
		out[y] = s
	}
	return out
}

// RowSumsRGB sums the red, green and blue samples of every row of img.
func RowSumsRGB(img *image.NRGBA) []int {
	b := img.Rect
	out := make([]int, b.Dy())
	for y := range out {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		s := 0
		for x := 0; x < b.Dx(); x++ {
			s += int(img.Pix[i]) + int(img.Pix[i+1]) + int(img.Pix[i+2])
			i += 4
		}
		out[y] = s
	}
	return out
}
