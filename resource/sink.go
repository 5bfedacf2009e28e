package resource

import (
	"path/filepath"
	"sync/atomic"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/rs/zerolog/log"
)

var loadedPath atomic.Value // string

// PathSink records the directory of the last resource bundle the Maa
// framework loaded successfully.
type PathSink struct{}

// OnResourceLoading implements the Maa resource event sink.
func (s *PathSink) OnResourceLoading(resource *maa.Resource, status maa.EventStatus, detail maa.ResourceLoadingDetail) {
	if status != maa.EventStatusSucceeded || detail.Path == "" {
		return
	}
	abs := detail.Path
	if p, err := filepath.Abs(detail.Path); err == nil {
		abs = p
	}
	loadedPath.Store(abs)
	log.Info().Str("resource_path", abs).Msg("Resource loaded; cached path")
}

// LoadedPath returns the directory recorded by PathSink, or "" before any
// bundle has loaded.
func LoadedPath() string {
	if v := loadedPath.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
