package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

var tesseractLanguages = map[string]string{
	"en-us": "eng",
	"zh-cn": "chi_sim",
	"zh-tw": "chi_tra",
	"ja-jp": "jpn",
	"ko-kr": "kor",
}

// TesseractLanguage maps a language tag to a tesseract traineddata name.
// Unknown tags are passed through.
func TesseractLanguage(tag string) string {
	if l, ok := tesseractLanguages[strings.ToLower(tag)]; ok {
		return l
	}
	return tag
}

// Tesseract is a single-line engine backed by libtesseract. A client is not
// safe for concurrent use, so calls are serialised.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates an engine for the language tag. tessdata overrides
// the traineddata directory when not empty.
func NewTesseract(tag, tessdata string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if tessdata != "" {
		client.TessdataPrefix = tessdata
	}
	if err := client.SetLanguage(TesseractLanguage(tag)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set tesseract language %q: %w", tag, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// TesseractFactory returns a Factory building Tesseract engines.
func TesseractFactory(tessdata string) Factory {
	return func(lang string) (Engine, error) {
		return NewTesseract(lang, tessdata)
	}
}

// Recognize implements Engine.
func (t *Tesseract) Recognize(img image.Image, whitelist string) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode OCR input: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetWhitelist(whitelist); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract failed: %w", err)
	}
	return &Result{Text: strings.TrimSpace(text)}, nil
}

// Close releases the tesseract client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
