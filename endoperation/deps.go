package endoperation

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/resource"
	"github.com/rs/zerolog/log"
)

// agentDeps holds the collaborators shared by every custom recognition of
// the agent. Each is built on first use.
type agentDeps struct {
	cfg *config.Config

	resourcesOnce sync.Once
	resources     *resource.FS

	classifierOnce sync.Once
	classifier     item.Classify
	classifierErr  error
}

// initResources serves assets from the image folder of the loaded Maa
// bundle, falling back to the configured directory.
func (d *agentDeps) initResources() *resource.FS {
	d.resourcesOnce.Do(func() {
		root := d.cfg.ResourceDir
		if base := resource.LoadedPath(); base != "" {
			root = filepath.Join(base, "image")
		}
		d.resources = resource.NewFS(root)
		log.Info().Str("root", root).Msg("Results screen resources ready")

		if d.cfg.WatchResources {
			go func() {
				if err := d.resources.Watch(context.Background()); err != nil {
					log.Error().Err(err).Msg("Resource watcher stopped")
				}
			}()
		}
	})
	return d.resources
}

// initClassifier loads onnxruntime and the material model.
func (d *agentDeps) initClassifier() (item.Classify, error) {
	d.classifierOnce.Do(func() {
		if err := item.InitRuntime(d.cfg.OnnxRuntimeLib); err != nil {
			d.classifierErr = err
			log.Error().Err(err).Msg("Failed to initialize onnxruntime")
			return
		}
		store := item.NewStore(d.cfg.UnknownItemsDir)
		if err := store.Reload(); err != nil {
			log.Warn().Err(err).Str("dir", store.Dir()).Msg("Failed to load extra items")
		}
		d.classifier, d.classifierErr = item.NewClassifier(d.cfg.ItemModel, store)
		if d.classifierErr != nil {
			log.Error().Err(d.classifierErr).Str("model", d.cfg.ItemModel).Msg("Failed to load item model")
			return
		}
		if d.cfg.WatchResources {
			go func() {
				if err := store.Watch(context.Background()); err != nil {
					log.Error().Err(err).Msg("Extra item watcher stopped")
				}
			}()
		}
	})
	return d.classifier, d.classifierErr
}
