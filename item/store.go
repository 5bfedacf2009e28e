package item

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/resource"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// learnedSize is the side length learned cells are compared at.
const learnedSize = 48

// Store persists cells the classifier could not identify as
// UNKNOWN-<date>-<n>.png so they can be labelled later, and recognizes them
// again when they reappear.
type Store struct {
	dir string
	now func() time.Time

	mu        sync.Mutex
	lastIndex int
	learned   map[string]*image.NRGBA
	mtime     time.Time
}

// NewStore returns a store writing into dir. The directory is created on the
// first Add.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now, learned: make(map[string]*image.NRGBA)}
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Add saves img under the first free name for today and returns that name.
func (s *Store) Add(img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.now().Format("2006-01-02")
	index := s.lastIndex + 1
	var name, path string
	for {
		name = fmt.Sprintf("UNKNOWN-%s-%d", date, index)
		path = filepath.Join(s.dir, name+".png")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		index++
	}
	s.lastIndex = index

	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	s.learned[name] = normalizeCell(img)
	log.Info().Str("name", name).Str("path", path).Msg("Unrecognized item saved")
	return name, nil
}

// Reload rereads the directory when its modification time moved on.
func (s *Store) Reload() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !info.ModTime().After(s.mtime) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(s.dir, "*.png"))
	if err != nil {
		return err
	}
	learned := make(map[string]*image.NRGBA, len(files))
	for _, f := range files {
		img, err := imaging.Open(f)
		if err != nil {
			log.Warn().Err(err).Str("path", f).Msg("Failed to load extra item")
			continue
		}
		learned[strings.TrimSuffix(filepath.Base(f), ".png")] = normalizeCell(img)
	}
	s.learned = learned
	s.mtime = info.ModTime()
	log.Debug().Int("count", len(learned)).Str("dir", s.dir).Msg("Extra items loaded")
	return nil
}

// Watch reloads the store whenever files in its directory change. It blocks
// until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return resource.WatchDir(ctx, s.dir, func(string) {
		if err := s.Reload(); err != nil {
			log.Warn().Err(err).Str("dir", s.dir).Msg("Failed to reload extra items")
		}
	})
}

// Match returns the learned item closest to img when its mean squared
// difference is below maxMSE.
func (s *Store) Match(img image.Image, maxMSE float64) (string, bool) {
	cell := normalizeCell(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	best, bestMSE := "", math.Inf(1)
	for name, ref := range s.learned {
		if m := imgops.MSE(cell, ref); m < bestMSE {
			best, bestMSE = name, m
		}
	}
	return best, best != "" && bestMSE < maxMSE
}

func normalizeCell(img image.Image) *image.NRGBA {
	return imaging.Resize(img, learnedSize, learnedSize, imaging.Linear)
}
