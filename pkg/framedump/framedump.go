// Package framedump writes screenshots to disk for later inspection.
package framedump

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Save writes img as <dir>/<reason>_<timestamp>.png and returns the path.
// Nothing is written when dir is empty.
func Save(dir, reason string, img image.Image) (string, error) {
	if dir == "" || img == nil {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create debug dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.png", reason, time.Now().Format("20060102_150405.000"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	log.Info().Str("path", path).Str("reason", reason).Msg("Saved frame to disk")
	return path, nil
}

// SaveQuietly is Save for call sites that cannot act on the error.
func SaveQuietly(dir, reason string, img image.Image) {
	if _, err := Save(dir, reason, img); err != nil {
		log.Debug().Err(err).Str("reason", reason).Msg("Failed to save frame")
	}
}
