// Package resource loads the image assets the recognizers compare against,
// such as group header templates and presence references.
package resource

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned for an asset that does not exist.
var ErrNotFound = errors.New("resource not found")

// Provider resolves asset names such as "end_operation/group/LMD.png".
type Provider interface {
	Image(name string) (image.Image, error)
}

// FS serves assets from a directory and keeps decoded images in memory until
// they change on disk.
type FS struct {
	root string

	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewFS returns a provider rooted at dir.
func NewFS(dir string) *FS {
	return &FS{root: dir, cache: make(map[string]image.Image)}
}

// Root returns the asset directory.
func (f *FS) Root() string {
	return f.root
}

// Path returns the filesystem path of an asset.
func (f *FS) Path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name))
}

// Image implements Provider.
func (f *FS) Image(name string) (image.Image, error) {
	f.mu.RLock()
	img, ok := f.cache[name]
	f.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := decodeFile(f.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	f.mu.Lock()
	f.cache[name] = img
	f.mu.Unlock()
	log.Debug().Str("name", name).Msg("Resource image loaded")
	return img, nil
}

// Invalidate drops a cached asset by its filesystem path.
func (f *FS) Invalidate(path string) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return
	}
	name := filepath.ToSlash(rel)
	f.mu.Lock()
	_, ok := f.cache[name]
	delete(f.cache, name)
	f.mu.Unlock()
	if ok {
		log.Info().Str("name", name).Msg("Resource image changed; cache dropped")
	}
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	return img, nil
}
