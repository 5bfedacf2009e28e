package viewport

import (
	"image"
	"math"
)

// Viewport carries the screenshot size and its viewport units. Every layout
// constant of the results screen is expressed in VW or VH so one set of
// numbers serves all resolutions.
type Viewport struct {
	Width  int
	Height int
	VW     float64 // Width / 100
	VH     float64 // Height / 100
}

// New returns the viewport of an image of the given size.
func New(size image.Point) Viewport {
	return Viewport{
		Width:  size.X,
		Height: size.Y,
		VW:     float64(size.X) / 100,
		VH:     float64(size.Y) / 100,
	}
}

// Of returns the viewport of img.
func Of(img image.Image) Viewport {
	return New(img.Bounds().Size())
}

// FromRight returns the x coordinate k*VH to the left of the right edge.
func (v Viewport) FromRight(k float64) float64 {
	return 100*v.VW - k*v.VH
}

// FromCenter returns the x coordinate k*VH away from the horizontal center.
func (v Viewport) FromCenter(k float64) float64 {
	return 50*v.VW + k*v.VH
}

// TemplateScale is the factor that maps assets authored at 1080p onto this
// viewport.
func (v Viewport) TemplateScale() float64 {
	return v.VH * 100 / 1080
}

// Rect converts a fractional box into pixel coordinates. Edges are rounded
// half to even, the same way crop boxes are rounded elsewhere.
func Rect(x1, y1, x2, y2 float64) image.Rectangle {
	return image.Rect(Round(x1), Round(y1), Round(x2), Round(y2))
}

// Box is a fractional rectangle in pixels, kept unrounded until it is used.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Rect rounds the box to pixels.
func (b Box) Rect() image.Rectangle {
	return Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Offset moves the box by (dx, dy).
func (b Box) Offset(dx, dy float64) Box {
	return Box{b.X1 + dx, b.Y1 + dy, b.X2 + dx, b.Y2 + dy}
}

// Round rounds half to even.
func Round(f float64) int {
	return int(math.RoundToEven(f))
}
