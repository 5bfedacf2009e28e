package item

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akhelper/endop-service/ocr"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{" 3 ", 3, true},
		{"1.5万", 15000, true},
		{"3万", 30000, true},
		{"", 0, false},
		{"万", 0, false},
		{"x1", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseQuantity(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseQuantity(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseRelation(t *testing.T) {
	rel, err := ParseRelation(`{"time":1700000000000,"idx2id":["30011","4001"],"idx2name":["Orirock","LMD"],"idx2type":["MATERIAL","GOLD"],"id2idx":{}}`)
	if err != nil {
		t.Fatalf("ParseRelation() error = %v", err)
	}
	rec, ok := rel.Record(1)
	if !ok || rec.ID != "4001" || rec.Name != "LMD" || rec.Type != "GOLD" {
		t.Fatalf("Record(1) = %+v, %v", rec, ok)
	}
	if _, ok := rel.Record(2); ok {
		t.Fatal("Record(2) ok outside the table")
	}

	if _, err := ParseRelation(`{"idx2id":["a"],"idx2name":[],"idx2type":["x"]}`); err == nil {
		t.Fatal("ParseRelation() accepted mismatched tables")
	}
	if _, err := ParseRelation(`{}`); err == nil {
		t.Fatal("ParseRelation() accepted an empty relation")
	}
}

func TestFurniture(t *testing.T) {
	f := Furniture()
	if f.ItemID != "furni" || f.Name != "(Furniture)" || f.Quantity != 1 || f.ItemType != "FURN" || f.LowConfidence {
		t.Fatalf("Furniture() = %+v", f)
	}
}

func TestSoftmaxArgmax(t *testing.T) {
	p := softmax([]float32{1, 3, 2})
	var sum float64
	for _, v := range p {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("softmax sum = %v", sum)
	}
	if i, prob := argmax(p); i != 1 || prob < 0.6 || prob > 0.7 {
		t.Fatalf("argmax() = (%d, %v), want (1, ~0.665)", i, prob)
	}
}

func TestCHWTensorLayout(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 0, 51, 255
	}
	data := chwTensor(img, 2, 2)
	if len(data) != 12 {
		t.Fatalf("len = %d, want 12", len(data))
	}
	if data[0] != 1 || data[4] != 0 || math.Abs(float64(data[8])-0.2) > 1e-6 {
		t.Fatalf("planes = %v", data)
	}
}

func cell(v uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			img.SetNRGBA(x, y, color.NRGBA{v, uint8(x * 4), uint8(y * 4), 255})
		}
	}
	return img
}

func TestStoreAddAndMatch(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }

	// a file already holding index 1 is skipped
	if err := os.WriteFile(filepath.Join(dir, "UNKNOWN-2026-03-04-1.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	name, err := s.Add(cell(10))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if name != "UNKNOWN-2026-03-04-2" {
		t.Fatalf("Add() = %q, want UNKNOWN-2026-03-04-2", name)
	}
	name, _ = s.Add(cell(200))
	if name != "UNKNOWN-2026-03-04-3" {
		t.Fatalf("second Add() = %q, want UNKNOWN-2026-03-04-3", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name+".png")); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	if got, ok := s.Match(cell(12), LearnedMaxMSE); !ok || got != "UNKNOWN-2026-03-04-2" {
		t.Fatalf("Match() = (%q, %v)", got, ok)
	}
	if _, ok := s.Match(cell(100), LearnedMaxMSE); ok {
		t.Fatal("Match() accepted an unrelated cell")
	}
}

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	first := NewStore(dir)
	name, err := first.Add(cell(10))
	if err != nil {
		t.Fatal(err)
	}

	second := NewStore(dir)
	if err := second.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got, ok := second.Match(cell(10), LearnedMaxMSE); !ok || got != name {
		t.Fatalf("Match() after reload = (%q, %v), want %q", got, ok, name)
	}
}

type fixedClassifier struct {
	item  RecognizedItem
	learn []bool
}

func (f *fixedClassifier) Classify(_ image.Image, learn bool) (*RecognizedItem, error) {
	f.learn = append(f.learn, learn)
	it := f.item
	return &it, nil
}

type textEngine string

func (e textEngine) Recognize(image.Image, string) (*ocr.Result, error) {
	return &ocr.Result{Text: string(e)}, nil
}

func TestReader(t *testing.T) {
	cls := &fixedClassifier{item: RecognizedItem{ItemID: "30012", Name: "Orirock Cube", ItemType: "MATERIAL"}}
	r := &Reader{Classifier: cls, Quantity: &QuantityReader{Engine: textEngine("4")}}

	got, err := r.Recognize(cell(50), Options{WithQuantity: true, LearnUnrecognized: true})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got.Quantity != 4 || got.LowConfidence {
		t.Fatalf("Recognize() = %+v", got)
	}
	if len(cls.learn) != 1 || !cls.learn[0] {
		t.Fatalf("learn flag not passed through: %v", cls.learn)
	}

	r.Quantity.Engine = textEngine("")
	got, _ = r.Recognize(cell(50), Options{WithQuantity: true})
	if !got.LowConfidence || got.Quantity != 0 {
		t.Fatalf("unreadable quantity = %+v, want low confidence", got)
	}

	got, _ = r.Recognize(cell(50), Options{})
	if got.LowConfidence {
		t.Fatalf("quantity read without WithQuantity: %+v", got)
	}
}
