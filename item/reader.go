package item

import "image"

// Classify is the classification half of a Recognizer.
type Classify interface {
	Classify(img image.Image, learn bool) (*RecognizedItem, error)
}

// Reader combines a classifier with a quantity reader. The classifier is
// usually shared while the quantity engine may be bound to one task.
type Reader struct {
	Classifier Classify
	Quantity   *QuantityReader
}

var _ Recognizer = &Reader{}

// Recognize implements Recognizer. A quantity that cannot be read flags the
// item low-confidence.
func (r *Reader) Recognize(img image.Image, opts Options) (*RecognizedItem, error) {
	result, err := r.Classifier.Classify(img, opts.LearnUnrecognized)
	if err != nil {
		return nil, err
	}
	if !opts.WithQuantity || r.Quantity == nil {
		return result, nil
	}
	n, ok, err := r.Quantity.Read(img)
	if err != nil {
		return nil, err
	}
	if ok {
		result.Quantity = n
	} else {
		result.LowConfidence = true
	}
	return result, nil
}
