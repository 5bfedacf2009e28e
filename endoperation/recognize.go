// Package endoperation reads the results screen shown after an operation:
// the operation code, the stars earned and the labelled reward groups.
package endoperation

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/resource"
	"github.com/akhelper/endop-service/segment"
	"github.com/akhelper/endop-service/viewport"
	"github.com/rs/zerolog/log"
)

const (
	operationLang      = "en-us"
	operationWhitelist = "0123456789-ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	operationLevel     = 180
	dividerRatio       = 0.8
)

// Options controls one recognition.
type Options struct {
	// LearnUnrecognized stores item cells the classifier is unsure about.
	LearnUnrecognized bool
}

// Recognizer reads results screens. Headers names the groups of the legacy
// and interlocking layouts, HeadersOCR those of the ep10 layout.
type Recognizer struct {
	OCR        ocr.Registry
	Items      item.Recognizer
	Headers    HeaderNamer
	HeadersOCR HeaderNamer
}

// New wires a Recognizer with template and OCR header naming.
func New(resources resource.Provider, registry ocr.Registry, items item.Recognizer) *Recognizer {
	return &Recognizer{
		OCR:        registry,
		Items:      items,
		Headers:    &TemplateNamer{Resources: resources},
		HeadersOCR: &OCRNamer{OCR: registry, Lang: headerLang},
	}
}

// Recognize reads a full-screen screenshot laid out as variant v. Uncertain
// readings are reported through Result.LowConfidence; layout failures are
// returned as errors for which IsStructural holds.
func (r *Recognizer) Recognize(v Variant, img image.Image, opts Options) (*Result, error) {
	t0 := time.Now()
	src := imgops.NRGBA(img)
	sess := NewSession(viewport.Of(src), opts.LearnUnrecognized)

	var (
		result *Result
		err    error
	)
	switch v {
	case Legacy:
		result, err = r.recognizeLegacy(src, sess)
	case EP10:
		result, err = r.recognizeEP10(src, sess)
	case Interlocking:
		result, err = r.recognizeInterlocking(src, sess)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
	}
	if err != nil {
		log.Error().Err(err).Str("variant", v.String()).Dur("elapsed", time.Since(t0)).Msg("Results screen recognition failed")
		return nil, err
	}

	result.LowConfidence = result.LowConfidence || sess.LowConfidence()
	if result.LowConfidence {
		log.Warn().Str("variant", v.String()).Msg("LOW CONFIDENCE")
	}
	log.Info().
		Str("variant", v.String()).
		Str("operation", result.Operation).
		Int("stars", result.StarCount()).
		Int("groups", len(result.Items)).
		Int("items", result.ItemCount()).
		Bool("lowConfidence", result.LowConfidence).
		Dur("elapsed", time.Since(t0)).
		Msg("Results screen recognized")
	return result, nil
}

// readOperation OCRs the operation code from its luminance crop.
func (r *Recognizer) readOperation(g *image.Gray) (string, error) {
	imgops.Threshold(g, operationLevel)
	engine, err := r.OCR.Acquire(operationLang)
	if err != nil {
		return "", fmt.Errorf("failed to acquire OCR engine %s: %w", operationLang, err)
	}
	res, err := engine.Recognize(imgops.InvertPad(g, 4), operationWhitelist)
	if err != nil {
		return "", fmt.Errorf("operation code OCR failed: %w", err)
	}
	return strings.ReplaceAll(res.Text, " ", ""), nil
}

// readGroups splits the items area along the bar profile and reads every
// group in screen order, claiming each label as it goes.
func (r *Recognizer) readGroups(reader *groupReader, items image.Image, profile []int, sess *Session, barTop, barBottom float64) ([]GroupResult, error) {
	spans, err := segment.Groups(profile, segment.JumpThreshold)
	if err != nil {
		return nil, err
	}
	log.Debug().Interface("groups", spans).Msg("Group boundaries found")

	h := items.Bounds().Dy()
	groups := make([]GroupResult, 0, len(spans))
	for _, s := range spans {
		group := imgops.Crop(items, image.Rect(s[0], 0, s[1], h))
		res, err := reader.read(group, sess, barTop, barBottom)
		if err != nil {
			return nil, err
		}
		sess.Claim(res.Group)
		groups = append(groups, res)
	}
	return groups, nil
}

// barProfile collapses a divider band to one row of luminance.
func barProfile(band image.Image) []int {
	w := band.Bounds().Dx()
	if w == 0 || band.Bounds().Dy() == 0 {
		return nil
	}
	return imgops.Row(imgops.Gray(imgops.ResizeBilinear(band, w, 1)), 0)
}

func (r *Recognizer) recognizeLegacy(src *image.NRGBA, sess *Session) (*Result, error) {
	vw, vh := sess.Viewport.VW, sess.Viewport.VH
	lower := imgops.Crop(src, viewport.Rect(0, 61.111*vh, 100*vw, 100*vh))

	op, err := r.readOperation(imgops.Gray(imgops.Crop(lower, viewport.Rect(0, 4.444*vh, 23.611*vh, 11.388*vh))))
	if err != nil {
		return nil, err
	}
	result := &Result{
		Operation: op,
		Stars:     ReadStars(imgops.Crop(lower, viewport.Rect(23.611*vh, 6.759*vh, 53.241*vh, 16.944*vh))),
		Items:     []GroupResult{},
	}

	items := imgops.Crop(lower, viewport.Rect(68.241*vh, 10.926*vh, float64(lower.Rect.Dx()), 35.000*vh))
	x, y := 6.667*vh, 18.519*vh
	strip := imgops.Gray(imgops.Crop(items, viewport.Rect(x, y, x+1, float64(items.Rect.Dy()))))
	if strip.Rect.Dx() == 0 {
		result.LowConfidence = true
		return result, nil
	}
	top, bottom, ok := segment.DividerByJumps(imgops.Column(strip, 0), segment.JumpThreshold)
	if !ok {
		log.Warn().Msg("Horizontal line detection failed")
		result.LowConfidence = true
		return result, nil
	}
	lineTop, lineBottom := float64(top)+y, float64(bottom)+y

	band := imgops.Crop(items, viewport.Rect(0, lineTop, float64(items.Rect.Dx()), lineBottom))
	reader := &groupReader{namer: r.Headers, items: r.Items, cells: legacyCells}
	result.Items, err = r.readGroups(reader, items, barProfile(band), sess, lineTop, lineBottom)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Recognizer) recognizeEP10(src *image.NRGBA, sess *Session) (*Result, error) {
	vh := sess.Viewport.VH
	w := float64(src.Rect.Dx())

	op, err := r.readOperation(imgops.Gray(imgops.Crop(src, viewport.Rect(20.278*vh, 10.000*vh, 39.889*vh, 15.093*vh))))
	if err != nil {
		return nil, err
	}
	result := &Result{
		Operation: op,
		Stars:     ReadStars(imgops.Crop(src, viewport.Rect(9.907*vh, 40.926*vh, 38.056*vh, 48.333*vh))),
	}

	itemsTop, detTop := 71.111*vh, 87.222*vh
	items := imgops.Crop(src, viewport.Rect(7.870*vh, itemsTop, w, 91.481*vh))
	det := imgops.Gray(imgops.Crop(src, viewport.Rect(7.870*vh, detTop, w, 89.259*vh)))
	top, bottom := segment.DividerByRowSum(imgops.RowSums(det), dividerRatio)
	if bottom <= top {
		return nil, ErrDividerNotFound
	}
	lineTop, lineBottom := float64(top)+detTop, float64(bottom)+detTop

	band := imgops.Gray(imgops.Crop(src, viewport.Rect(7.870*vh, lineTop, w, lineBottom)))
	if band.Rect.Dy() == 0 {
		return nil, ErrDividerNotFound
	}
	reader := &groupReader{namer: r.HeadersOCR, items: r.Items, cells: ep10Cells}
	result.Items, err = r.readGroups(reader, items, imgops.Row(band, 0), sess, lineTop-itemsTop, lineBottom-itemsTop)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Recognizer) recognizeInterlocking(src *image.NRGBA, sess *Session) (*Result, error) {
	vp := sess.Viewport
	vw, vh := vp.VW, vp.VH

	opImg := imgops.Gray(imgops.Crop(src, viewport.Rect(vp.FromRight(26.204), 21.852*vh, vp.FromRight(9.907), 26.204*vh)))
	margin := int(0.833 * vh)
	if box, ok := imgops.BlackEdgeBox(opImg, margin, 1); ok {
		opImg = imgops.CropGray(opImg, image.Rect(max(box.Min.X-margin, 0), 0, opImg.Rect.Dx(), opImg.Rect.Dy()))
	}
	op, err := r.readOperation(opImg)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Operation: op,
		Stars:     ReadStars(imgops.Crop(src, viewport.Rect(vp.FromRight(41.667), 10.000*vh, vp.FromRight(11.204), 20.185*vh))),
	}

	items := imgops.Crop(src, viewport.Rect(vp.FromRight(87.778), 65.000*vh, 100*vw, 89.259*vh))
	top, bottom, ok := segment.DividerByDerivative(imgops.RowSumsRGB(items))
	if !ok || bottom <= top {
		return nil, fmt.Errorf("%w: rise at %d, fall at %d", ErrDividerNotFound, top, bottom)
	}

	band := imgops.Crop(items, image.Rect(0, top, items.Rect.Dx(), bottom))
	reader := &groupReader{namer: r.Headers, items: r.Items, cells: legacyCells}
	result.Items, err = r.readGroups(reader, items, barProfile(band), sess, float64(top), float64(bottom))
	if err != nil {
		return nil, err
	}
	return result, nil
}
