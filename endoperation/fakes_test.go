package endoperation

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/resource"
)

type mapProvider map[string]image.Image

func (m mapProvider) Image(name string) (image.Image, error) {
	if img, ok := m[name]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("%s: %w", name, resource.ErrNotFound)
}

type textEngine struct {
	text       string
	whitelists []string
}

func (e *textEngine) Recognize(_ image.Image, whitelist string) (*ocr.Result, error) {
	e.whitelists = append(e.whitelists, whitelist)
	return &ocr.Result{Text: e.text}, nil
}

type fixedRegistry struct {
	engine ocr.Engine
}

func (r fixedRegistry) Acquire(string) (ocr.Engine, error) {
	return r.engine, nil
}

// firstUnclaimedNamer names every group with the first label not yet
// claimed.
type firstUnclaimedNamer struct {
	calls int
}

func (n *firstUnclaimedNamer) NameGroup(_ *image.Gray, sess *Session) (string, float64, error) {
	n.calls++
	for _, gl := range GroupLabels {
		if !sess.Claimed(gl.Label) {
			return gl.Label, 0.1, nil
		}
	}
	return "", 0, ErrNoGroupLabel
}

type fixedNamer string

func (n fixedNamer) NameGroup(*image.Gray, *Session) (string, float64, error) {
	return string(n), 0.1, nil
}

// countingItems returns item-<n> for the n-th call and flags the calls
// listed in lowAt.
type countingItems struct {
	calls int
	sizes []image.Point
	lowAt map[int]bool
	opts  []item.Options
}

func (c *countingItems) Recognize(img image.Image, opts item.Options) (*item.RecognizedItem, error) {
	c.calls++
	c.sizes = append(c.sizes, img.Bounds().Size())
	c.opts = append(c.opts, opts)
	return &item.RecognizedItem{
		ItemID:        fmt.Sprintf("item-%d", c.calls),
		Name:          fmt.Sprintf("item-%d", c.calls),
		Quantity:      1,
		LowConfidence: c.lowAt[c.calls],
	}, nil
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func blackScreen(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Rect, color.Black)
	return img
}

// patternGray returns a w x h plane without repeating structure.
func patternGray(w, h, seed int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*g.Stride+x] = uint8(40 + (((x+seed)*73856093)^((y+3*seed)*19349663))%200)
		}
	}
	return g
}

// embed returns a w x h plane of level 30 with t pasted at p.
func embed(w, h int, t *image.Gray, p image.Point) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 30
	}
	draw.Draw(g, t.Rect.Add(p), t, image.Point{}, draw.Src)
	return g
}

// doubtfulNamer behaves like firstUnclaimedNamer but flags the session on
// the call numbered doubtAt.
type doubtfulNamer struct {
	firstUnclaimedNamer
	doubtAt int
}

func (n *doubtfulNamer) NameGroup(header *image.Gray, sess *Session) (string, float64, error) {
	label, score, err := n.firstUnclaimedNamer.NameGroup(header, sess)
	if n.calls == n.doubtAt {
		sess.MarkLowConfidence()
	}
	return label, score, err
}
