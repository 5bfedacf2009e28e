package endoperation

import (
	"errors"
	"image"
	"testing"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/viewport"
)

func TestPresenceRects(t *testing.T) {
	vp := viewport.New(image.Pt(1920, 1080))
	tests := []struct {
		name string
		box  viewport.Box
		want image.Rectangle
	}{
		{"end", EndRect(vp), image.Rect(51, 867, 609, 1014)},
		{"end2", End2Rect(vp), image.Rect(741, 951, 1180, 1033)},
		{"dismissLevelUp", DismissLevelUpPopupRect(vp), image.Rect(1193, 173, 1864, 771)},
		{"dismissEnd", DismissEndOperationRect(vp), image.Rect(1193, 173, 1864, 771)},
		{"stillCheck", StillCheckRect(vp), image.Rect(85, 768, 1920, 988)},
	}
	for _, tt := range tests {
		if got := tt.box.Rect(); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRectsFor(t *testing.T) {
	vp := viewport.New(image.Pt(1920, 1080))
	want := ScreenRects{Dismiss: [4]int{1193, 173, 671, 598}, StillCheck: [4]int{85, 768, 1835, 220}}
	for _, levelUp := range []bool{false, true} {
		if got := RectsFor(vp, levelUp); got != want {
			t.Errorf("RectsFor(levelUp=%v) = %v, want %v", levelUp, got, want)
		}
	}
}

func TestCheckLegacyFriendship(t *testing.T) {
	screen := patternGray(1920, 1080, 5)
	ref := imgops.Crop(screen, legacyFriendshipRect(viewport.Of(screen)).Rect())
	p := &PresenceChecker{Resources: mapProvider{"end_operation/friendship.png": ref}}

	ok, err := p.CheckLegacyFriendship(screen)
	if err != nil || !ok {
		t.Fatalf("CheckLegacyFriendship() = %v, %v, want true", ok, err)
	}
	ok, err = p.CheckLegacyFriendship(blackScreen(1920, 1080))
	if err != nil || ok {
		t.Fatalf("CheckLegacyFriendship(black) = %v, %v, want false", ok, err)
	}
}

func TestCheckPresenceStrict(t *testing.T) {
	screen := patternGray(1920, 1080, 6)
	vp := viewport.Of(screen)
	end := imgops.EnhanceContrast(imgops.Gray(imgops.Crop(screen, EndRect(vp).Rect())), 225, 255)
	badge := imgops.Crop(screen, legacyFriendshipRect(vp).Rect())

	tests := []struct {
		name       string
		assets     mapProvider
		variant    Variant
		friendship bool
		want       bool
		wantErr    error
	}{
		{"banner", mapProvider{"end_operation/end.png": end}, Legacy, false, true, nil},
		{"badge", mapProvider{"end_operation/friendship.png": badge}, Legacy, true, true, nil},
		{"badge ignores banner", mapProvider{"end_operation/friendship.png": imgops.Crop(blackScreen(1920, 1080), legacyFriendshipRect(vp).Rect())}, Legacy, true, false, nil},
		{"ep10", mapProvider{}, EP10, false, false, ErrUnsupported},
		{"interlocking", mapProvider{}, Interlocking, true, false, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PresenceChecker{Resources: tt.assets}
			got, err := p.CheckPresence(tt.variant, tt.friendship, true, screen)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CheckPresence() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("CheckPresence() = %v, %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestCheckInterlockingFriendship(t *testing.T) {
	screen := patternGray(1800, 1000, 7)
	ref := imgops.Crop(screen, interlockingFriendshipRect(viewport.Of(screen)).Rect())
	p := &PresenceChecker{Resources: mapProvider{"end_operation/interlocking/friendship.png": ref}}

	ok, err := p.CheckEndOperation(Interlocking, true, screen)
	if err != nil || !ok {
		t.Fatalf("CheckEndOperation() = %v, %v, want true", ok, err)
	}
	ok, err = p.CheckEndOperation(Interlocking, true, blackScreen(1800, 1000))
	if err != nil || ok {
		t.Fatalf("CheckEndOperation(black) = %v, %v, want false", ok, err)
	}
}

func TestCheckEndOperationUnsupported(t *testing.T) {
	p := &PresenceChecker{Resources: mapProvider{}}
	if _, err := p.CheckEndOperation(Interlocking, false, blackScreen(10, 10)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("CheckEndOperation() error = %v, want ErrUnsupported", err)
	}
	if _, err := p.CheckEndOperation(Variant(9), false, blackScreen(10, 10)); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("CheckEndOperation() error = %v, want ErrUnknownVariant", err)
	}
}

func TestCheckLegacy(t *testing.T) {
	screen := patternGray(1920, 1080, 2)
	crop := imgops.Gray(imgops.Crop(screen, EndRect(viewport.Of(screen)).Rect()))
	ref := imgops.EnhanceContrast(crop, 225, 255)
	p := &PresenceChecker{Resources: mapProvider{"end_operation/end.png": ref}}

	ok, err := p.CheckLegacy(screen)
	if err != nil || !ok {
		t.Fatalf("CheckLegacy() = %v, %v, want true", ok, err)
	}
	if _, err := (&PresenceChecker{Resources: mapProvider{}}).CheckLegacy(screen); err == nil {
		t.Error("CheckLegacy() without reference succeeded")
	}
}

func TestCheckEnd2(t *testing.T) {
	screen := patternGray(1920, 1080, 4)
	tmpl := imgops.CropGray(screen, image.Rect(800, 970, 840, 990))
	p := &PresenceChecker{Resources: mapProvider{"end_operation/end2.png": tmpl}}

	ok, err := p.CheckEnd2(screen)
	if err != nil || !ok {
		t.Fatalf("CheckEnd2() = %v, %v, want true", ok, err)
	}
	ok, err = p.CheckEnd2(blackScreen(960, 540))
	if err != nil || ok {
		t.Fatalf("CheckEnd2(black) = %v, %v, want false", ok, err)
	}
}

func TestCheckLevelUpPopup(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Level up", true},
		{"Leve1 up", true},
		{"Results", false},
		{"", false},
	}
	for _, tt := range tests {
		engine := &textEngine{text: tt.text}
		p := &PresenceChecker{OCR: fixedRegistry{engine}}
		got, err := p.CheckLevelUpPopup(patternGray(1920, 1080, 1))
		if err != nil {
			t.Fatalf("%q: CheckLevelUpPopup() error = %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("%q: CheckLevelUpPopup() = %v, want %v", tt.text, got, tt.want)
		}
		if engine.whitelists[0] != ocr.Whitelist("Level up") {
			t.Errorf("whitelist = %q", engine.whitelists[0])
		}
	}
}
