package endoperation

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/resource"
	"github.com/rs/zerolog/log"
)

// GroupLabel pairs a header label with the name of its template asset.
type GroupLabel struct {
	Template string
	Label    string
}

// GroupLabels is the closed set of header labels in matching order.
var GroupLabels = []GroupLabel{
	{"LMD", "EXP & LMD"},
	{"Regular", "Regular Drops"},
	{"Special", "Special Drops"},
	{"Lucky", "Lucky Drops"},
	{"Extra", "Extra Drops"},
	{"First Clear", "First Clear"},
	{"Refund", "Sanity refunded"},
}

// LuckyDrops is the group whose only content is a furniture piece.
const LuckyDrops = "Lucky Drops"

const (
	// TemplateLowConfidence is the template score above which a header
	// match is uncertain.
	TemplateLowConfidence = 0.8
	// OCRLowConfidence is the normalized edit distance above which a header
	// reading is uncertain.
	OCRLowConfidence = 0.6

	headerLang = "en-us"
)

// HeaderNamer picks the label of a group from its preprocessed header band.
// Labels claimed in sess are never returned. Lower scores are better.
// Implementations flag sess when they are unsure.
type HeaderNamer interface {
	NameGroup(header *image.Gray, sess *Session) (label string, score float64, err error)
}

func templateAsset(name string) string {
	return "end_operation/group/" + name + ".png"
}

// TemplateNamer compares the header against a template of every unclaimed
// label, scaled from 1080p to the screenshot.
type TemplateNamer struct {
	Resources resource.Provider
}

type comparison struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NameGroup implements HeaderNamer.
func (n *TemplateNamer) NameGroup(header *image.Gray, sess *Session) (string, float64, error) {
	scale := sess.Viewport.TemplateScale()
	var comparisons []comparison
	for _, gl := range GroupLabels {
		if sess.Claimed(gl.Label) {
			continue
		}
		src, err := n.Resources.Image(templateAsset(gl.Template))
		if err != nil {
			return "", 0, err
		}
		score, err := matchScaled(header, imgops.Gray(src), scale)
		if err != nil {
			return "", 0, fmt.Errorf("group template %s: %w", gl.Template, err)
		}
		comparisons = append(comparisons, comparison{gl.Label, score})
	}
	if len(comparisons) == 0 {
		return "", 0, ErrNoGroupLabel
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Score < comparisons[j].Score
	})
	log.Debug().Interface("comparisons", comparisons).Msg("Group header templates compared")

	best := comparisons[0]
	if best.Score > TemplateLowConfidence {
		sess.MarkLowConfidence()
	}
	return best.Label, best.Score, nil
}

// matchScaled matches the template at the floor of its scaled height and,
// when that fits, one pixel taller, keeping the better score.
func matchScaled(header, tmpl *image.Gray, scale float64) (float64, error) {
	hh, hw := header.Rect.Dy(), header.Rect.Dx()
	floorH := max(int(math.Floor(float64(tmpl.Rect.Dy())*scale)), 1)

	floorT := imgops.ScaleToHeight(tmpl, floorH)
	if floorT.Rect.Dx() > hw || floorT.Rect.Dy() > hh {
		return 0, ErrTemplateTooLarge
	}
	_, score, err := imgops.MatchTemplate(header, floorT)
	if err != nil {
		return 0, err
	}

	if floorH+1 <= hh {
		ceilT := imgops.ScaleToHeight(tmpl, floorH+1)
		if ceilT.Rect.Dx() <= hw {
			_, ceilScore, err := imgops.MatchTemplate(header, ceilT)
			if err != nil {
				return 0, err
			}
			score = math.Min(score, ceilScore)
		}
	}
	return score, nil
}

// OCRNamer reads the header text and picks the unclaimed label with the
// smallest edit distance.
type OCRNamer struct {
	OCR  ocr.Registry
	Lang string
}

// NameGroup implements HeaderNamer. Spaces are dropped from the OCR text
// only; the score is the edit distance to the label as written divided by
// the label length.
func (n *OCRNamer) NameGroup(header *image.Gray, sess *Session) (string, float64, error) {
	var pending []string
	for _, gl := range GroupLabels {
		if !sess.Claimed(gl.Label) {
			pending = append(pending, gl.Label)
		}
	}
	if len(pending) == 0 {
		return "", 0, ErrNoGroupLabel
	}

	lang := n.Lang
	if lang == "" {
		lang = headerLang
	}
	engine, err := n.OCR.Acquire(lang)
	if err != nil {
		return "", 0, fmt.Errorf("failed to acquire OCR engine %s: %w", lang, err)
	}
	input := imgops.InvertPad(imgops.CropBlackEdge(header, 1), 4)
	res, err := engine.Recognize(input, ocr.Whitelist(pending...))
	if err != nil {
		return "", 0, fmt.Errorf("group header OCR failed: %w", err)
	}

	text := strings.ReplaceAll(res.Text, " ", "")
	idx, dist, err := ocr.MatchDistance(text, pending)
	if err != nil {
		return "", 0, err
	}
	score := float64(dist) / float64(len([]rune(pending[idx])))
	log.Debug().
		Str("text", res.Text).
		Str("label", pending[idx]).
		Int("distance", dist).
		Msg("Group header read")

	if score > OCRLowConfidence {
		sess.MarkLowConfidence()
	}
	return pending[idx], score, nil
}
