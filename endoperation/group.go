package endoperation

import (
	"fmt"
	"image"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/viewport"
	"github.com/rs/zerolog/log"
)

// headerContrastFloor is the level below which header pixels are treated as
// background.
const headerContrastFloor = 60

// cellLayout places the item boxes of a group image of the given size.
// barTop is the top of the divider bar in group coordinates.
type cellLayout func(vp viewport.Viewport, size image.Point, barTop float64) []image.Rectangle

// ItemCount is the number of cells of width itemWidth that fit a group,
// rounded to the nearest whole cell.
func ItemCount(groupWidth int, itemWidth float64) int {
	return viewport.Round(float64(groupWidth) / itemWidth)
}

// legacyCells lays out fixed-height cells of 20.370vh with an inner box from
// 0.093vh to 19.074vh.
func legacyCells(vp viewport.Viewport, size image.Point, _ float64) []image.Rectangle {
	vh := vp.VH
	itemWidth := 20.370 * vh
	bounds := image.Rectangle{Max: size}
	n := ItemCount(size.X, itemWidth)
	cells := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		c := viewport.Rect(itemWidth*float64(i), 0, itemWidth*float64(i+1), 18.981*vh).Intersect(bounds)
		inner := viewport.Rect(0.093*vh, 0, 19.074*vh, float64(c.Dy())).Add(c.Min).Intersect(c)
		cells = append(cells, inner)
	}
	return cells
}

// ep10Cells lays out cells of 19.167vh reaching down to the divider bar, each
// holding a centred square box of 16.492vh.
func ep10Cells(vp viewport.Viewport, size image.Point, barTop float64) []image.Rectangle {
	vh := vp.VH
	itemWidth := 19.167 * vh
	radius := 16.492 * vh / 2
	bounds := image.Rectangle{Max: size}
	n := ItemCount(size.X, itemWidth)
	cells := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		c := viewport.Rect(itemWidth*float64(i), 0, itemWidth*float64(i+1), barTop).Intersect(bounds)
		cx, cy := float64(c.Dx())/2, float64(c.Dy())/2
		inner := viewport.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1).Add(c.Min).Intersect(c)
		cells = append(cells, inner)
	}
	return cells
}

// groupReader names one group and recognizes its items.
type groupReader struct {
	namer HeaderNamer
	items item.Recognizer
	cells cellLayout
}

// read handles one group image spanning from the top of the items area to
// its bottom. barTop and barBottom are the divider bar edges in the same
// coordinates; the header text sits below barBottom.
func (g *groupReader) read(group image.Image, sess *Session, barTop, barBottom float64) (GroupResult, error) {
	size := group.Bounds().Size()
	header := imgops.Crop(group, viewport.Rect(0, barBottom, float64(size.X), float64(size.Y)))
	band := imgops.EnhanceContrast(imgops.Gray(header), headerContrastFloor, -1)

	label, score, err := g.namer.NameGroup(band, sess)
	if err != nil {
		return GroupResult{}, err
	}
	if label == LuckyDrops {
		return GroupResult{Group: label, Items: []item.RecognizedItem{item.Furniture()}}, nil
	}

	cells := g.cells(sess.Viewport, size, barTop)
	log.Debug().
		Str("group", label).
		Float64("score", score).
		Int("items", len(cells)).
		Msg("Group named")

	opts := item.Options{WithQuantity: true, LearnUnrecognized: sess.LearnUnrecognized}
	items := make([]item.RecognizedItem, 0, len(cells))
	for i, r := range cells {
		it, err := g.items.Recognize(imgops.Crop(group, r), opts)
		if err != nil {
			return GroupResult{}, fmt.Errorf("item %d of %s: %w", i, label, err)
		}
		if it.LowConfidence {
			sess.MarkLowConfidence()
		}
		items = append(items, *it)
	}
	return GroupResult{Group: label, Items: items}, nil
}
