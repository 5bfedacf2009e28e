package item

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/ocr"
)

const quantityWhitelist = "0123456789.万"

// QuantityReader reads the stack count printed in the lower right of a
// reward cell.
type QuantityReader struct {
	Engine ocr.Engine
}

// Read OCRs the count band of a cell. ok is false when no number was read.
func (q *QuantityReader) Read(cell image.Image) (int, bool, error) {
	b := cell.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	band := imgops.Crop(cell, image.Rect(
		b.Min.X+int(0.35*w), b.Min.Y+int(0.68*h),
		b.Min.X+int(0.95*w), b.Min.Y+int(0.92*h),
	))
	g := imgops.EnhanceContrast(imgops.Gray(band), 160, -1)
	res, err := q.Engine.Recognize(imgops.InvertPad(g, 4), quantityWhitelist)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read quantity: %w", err)
	}
	n, ok := ParseQuantity(res.Text)
	return n, ok, nil
}

// ParseQuantity parses counts such as "12", "1.5万" or "3万".
func ParseQuantity(text string) (int, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	mult := 1.0
	if strings.HasSuffix(text, "万") {
		mult = 10000
		text = strings.TrimSuffix(text, "万")
	}
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return int(v*mult + 0.5), true
}
