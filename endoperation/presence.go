package endoperation

import (
	"fmt"
	"image"
	"strings"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/resource"
	"github.com/akhelper/endop-service/viewport"
	"github.com/rs/zerolog/log"
)

const (
	legacyEndMaxMSE     = 6502
	friendshipMaxMSE    = 3251
	end2MinCorrelation  = 0.8
	levelUpMaxDistance  = 0.5
	levelUpText         = "Level up"
	end2ReferenceHeight = 1080
)

// EndRect returns the legacy "operation end" banner area.
func EndRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: 4.722 * vh, Y1: 80.278 * vh, X2: 56.389 * vh, Y2: 93.889 * vh}
}

// End2Rect returns the area of the newer "operation end" banner.
func End2Rect(vp viewport.Viewport) viewport.Box {
	return viewport.Box{X1: 38.594 * vp.VW, Y1: 88.056 * vp.VH, X2: 61.484 * vp.VW, Y2: 95.694 * vp.VH}
}

// LevelUpRect returns the "Level up" caption of the level-up popup.
func LevelUpRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: vp.FromCenter(-48.796), Y1: 47.685 * vh, X2: vp.FromCenter(-23.148), Y2: 56.019 * vh}
}

// DismissLevelUpPopupRect returns an area that closes the level-up popup
// when tapped.
func DismissLevelUpPopupRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: vp.FromRight(67.315), Y1: 16.019 * vh, X2: vp.FromRight(5.185), Y2: 71.343 * vh}
}

// DismissEndOperationRect returns an area that leaves the results screen
// when tapped.
func DismissEndOperationRect(vp viewport.Viewport) viewport.Box {
	return DismissLevelUpPopupRect(vp)
}

// StillCheckRect returns the area compared between frames to tell whether
// the reward list stopped animating.
func StillCheckRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: 7.870 * vh, Y1: 71.111 * vh, X2: 100 * vp.VW, Y2: 91.481 * vh}
}

// ScreenRects are the tap and watch areas the automation layer needs once a
// screen has been detected, as [x, y, w, h].
type ScreenRects struct {
	Dismiss    [4]int `json:"dismiss"`
	StillCheck [4]int `json:"still_check"`
}

// RectsFor returns the areas of the results screen, or of the level-up
// popup with levelUp.
func RectsFor(vp viewport.Viewport, levelUp bool) ScreenRects {
	dismiss := DismissEndOperationRect(vp)
	if levelUp {
		dismiss = DismissLevelUpPopupRect(vp)
	}
	return ScreenRects{
		Dismiss:    xywh(dismiss.Rect()),
		StillCheck: xywh(StillCheckRect(vp).Rect()),
	}
}

func xywh(r image.Rectangle) [4]int {
	return [4]int{r.Min.X, r.Min.Y, r.Dx(), r.Dy()}
}

func legacyFriendshipRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: 117.083 * vh, Y1: 64.306 * vh, X2: 121.528 * vh, Y2: 69.583 * vh}
}

func interlockingFriendshipRect(vp viewport.Viewport) viewport.Box {
	vh := vp.VH
	return viewport.Box{X1: vp.FromRight(34.907), Y1: 55.185 * vh, X2: vp.FromRight(30.556), Y2: 60.370 * vh}
}

// PresenceChecker tells whether a screenshot shows the results screen or a
// popup in front of it.
type PresenceChecker struct {
	Resources resource.Provider
	OCR       ocr.Registry
}

// CheckEndOperation dispatches on the variant. Interlocking screens can
// only be detected through the friendship badge.
func (p *PresenceChecker) CheckEndOperation(v Variant, friendship bool, img image.Image) (bool, error) {
	switch v {
	case Interlocking:
		if !friendship {
			return false, fmt.Errorf("interlocking check without friendship: %w", ErrUnsupported)
		}
		return p.CheckInterlockingFriendship(img)
	case Legacy, EP10:
		return p.CheckEnd2(img)
	}
	return false, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
}

// CheckPresence is CheckEndOperation, or with strict the legacy banner
// checks: the friendship badge with friendship, the end banner without.
// Strict checks exist only for the legacy layout.
func (p *PresenceChecker) CheckPresence(v Variant, friendship, strict bool, img image.Image) (bool, error) {
	if !strict {
		return p.CheckEndOperation(v, friendship, img)
	}
	if v != Legacy {
		return false, fmt.Errorf("strict check for %v: %w", v, ErrUnsupported)
	}
	if friendship {
		return p.CheckLegacyFriendship(img)
	}
	return p.CheckLegacy(img)
}

// CheckLegacy compares the legacy end banner with its reference.
func (p *PresenceChecker) CheckLegacy(img image.Image) (bool, error) {
	vp := viewport.Of(img)
	ref, err := p.Resources.Image("end_operation/end.png")
	if err != nil {
		return false, err
	}
	crop := imgops.Gray(imgops.Crop(img, EndRect(vp).Rect().Add(img.Bounds().Min)))
	crop = imgops.EnhanceContrast(crop, 225, 255)
	a, b := imgops.UniformSize(imgops.Gray(ref), crop)
	mse := imgops.MSE(a, b)
	log.Debug().Float64("mse", mse).Msg("Legacy end banner compared")
	return mse < legacyEndMaxMSE, nil
}

// CheckLegacyFriendship compares the legacy friendship badge with its
// reference.
func (p *PresenceChecker) CheckLegacyFriendship(img image.Image) (bool, error) {
	return p.compareRegion(img, legacyFriendshipRect(viewport.Of(img)), "end_operation/friendship.png", friendshipMaxMSE)
}

// CheckInterlockingFriendship compares the interlocking friendship badge
// with its reference.
func (p *PresenceChecker) CheckInterlockingFriendship(img image.Image) (bool, error) {
	return p.compareRegion(img, interlockingFriendshipRect(viewport.Of(img)), "end_operation/interlocking/friendship.png", friendshipMaxMSE)
}

func (p *PresenceChecker) compareRegion(img image.Image, box viewport.Box, asset string, maxMSE float64) (bool, error) {
	ref, err := p.Resources.Image(asset)
	if err != nil {
		return false, err
	}
	crop := imgops.Crop(img, box.Rect().Add(img.Bounds().Min))
	a, b := imgops.UniformSize(imgops.NRGBA(ref), crop)
	mse := imgops.MSE(a, b)
	log.Debug().Str("asset", asset).Float64("mse", mse).Msg("Region compared")
	return mse < maxMSE, nil
}

// CheckEnd2 looks for the end banner near its usual place on the screen
// normalized to 1080 rows.
func (p *PresenceChecker) CheckEnd2(img image.Image) (bool, error) {
	ref, err := p.Resources.Image("end_operation/end2.png")
	if err != nil {
		return false, err
	}
	tmpl := imgops.Gray(ref)

	screen := imgops.Gray(img)
	if h := screen.Rect.Dy(); h != end2ReferenceHeight {
		w := int(float64(screen.Rect.Dx()) * end2ReferenceHeight / float64(h))
		screen = imgops.Gray(imgops.ResizeBilinear(screen, w, end2ReferenceHeight))
	}

	vp := viewport.Of(screen)
	pad := 5 * vp.VH
	area := End2Rect(vp)
	search := viewport.Rect(area.X1-pad, area.Y1-pad, area.X2+pad, area.Y2+pad).Intersect(screen.Rect)
	if search.Dx() < tmpl.Rect.Dx() || search.Dy() < tmpl.Rect.Dy() {
		search = screen.Rect
	}
	_, score, err := imgops.MatchTemplateCCoeff(imgops.CropGray(screen, search), tmpl)
	if err != nil {
		return false, err
	}
	log.Debug().Float64("score", score).Msg("End banner matched")
	return score > end2MinCorrelation, nil
}

// CheckLevelUpPopup reads the popup caption and accepts it when it is close
// enough to "Level up".
func (p *PresenceChecker) CheckLevelUpPopup(img image.Image) (bool, error) {
	vp := viewport.Of(img)
	crop := imgops.Gray(imgops.Crop(img, LevelUpRect(vp).Rect().Add(img.Bounds().Min)))
	crop = imgops.EnhanceContrast(crop, 216, 255)

	engine, err := p.OCR.Acquire(headerLang)
	if err != nil {
		return false, err
	}
	res, err := engine.Recognize(imgops.InvertPad(crop, 4), ocr.Whitelist(levelUpText))
	if err != nil {
		return false, fmt.Errorf("level-up OCR failed: %w", err)
	}
	want := strings.ReplaceAll(levelUpText, " ", "")
	got := strings.ReplaceAll(res.Text, " ", "")
	dist := ocr.Levenshtein(got, want)
	return float64(dist)/float64(len(want)) < levelUpMaxDistance, nil
}
