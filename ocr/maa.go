package ocr

import (
	"fmt"
	"image"
	"strings"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
)

// MaaEngine runs OCR through a pipeline node of the running Maa task, so the
// agent reuses the OCR model bundled with the resource. The node is
// overridden to a plain OCR over the whole input image.
type MaaEngine struct {
	Ctx  *maa.Context
	Node string
}

// MaaFactory returns a Factory whose engines all run through ctx. Every
// language uses the same node since the model is chosen by the resource.
func MaaFactory(ctx *maa.Context, node string) Factory {
	return func(string) (Engine, error) {
		return &MaaEngine{Ctx: ctx, Node: node}, nil
	}
}

// Recognize implements Engine. The pipeline OCR has no character whitelist,
// so disallowed characters are dropped from its output.
func (e *MaaEngine) Recognize(img image.Image, whitelist string) (*Result, error) {
	b := img.Bounds()
	override := map[string]any{
		e.Node: map[string]any{
			"recognition": "OCR",
			"roi":         maa.Rect{0, 0, b.Dx(), b.Dy()},
			"only_rec":    true,
		},
	}
	detail, err := e.Ctx.RunRecognition(e.Node, img, override)
	if err != nil {
		return nil, fmt.Errorf("pipeline OCR %s failed: %w", e.Node, err)
	}
	if detail == nil || detail.Results == nil {
		return &Result{}, nil
	}

	var text string
	if detail.Results.Best != nil {
		if r, ok := detail.Results.Best.AsOCR(); ok {
			text = r.Text
		}
	}
	if text == "" {
		for _, res := range detail.Results.All {
			if r, ok := res.AsOCR(); ok && strings.TrimSpace(r.Text) != "" {
				text = r.Text
				break
			}
		}
	}
	return &Result{Text: FilterWhitelist(strings.TrimSpace(text), whitelist)}, nil
}
