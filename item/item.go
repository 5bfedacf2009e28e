// Package item recognizes single reward cells of the results screen.
package item

import (
	"errors"
	"image"
)

// ErrModelUnavailable is returned when the material model cannot be loaded.
var ErrModelUnavailable = errors.New("item model unavailable")

// RecognizedItem is one reward as identified by a Recognizer.
type RecognizedItem struct {
	ItemID        string `json:"item_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity,omitempty"` // 0 when not read
	ItemType      string `json:"item_type"`
	LowConfidence bool   `json:"low_confidence"`
}

// Options controls a single recognition.
type Options struct {
	WithQuantity      bool
	LearnUnrecognized bool
}

// Recognizer identifies the item shown in a cropped reward cell.
type Recognizer interface {
	Recognize(img image.Image, opts Options) (*RecognizedItem, error)
}

// Furniture is the placeholder reported for the furniture drop group, whose
// cells are never classified.
func Furniture() RecognizedItem {
	return RecognizedItem{
		ItemID:   "furni",
		Name:     "(Furniture)",
		Quantity: 1,
		ItemType: "FURN",
	}
}
