// Package pipeline wires a results screen recognizer that runs outside the
// Maa agent, on Tesseract and the onnxruntime item model.
package pipeline

import (
	"context"
	"fmt"

	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/endoperation"
	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/resource"
	"github.com/rs/zerolog/log"
)

// Pipeline owns the collaborators of a standalone recognizer.
type Pipeline struct {
	Recognizer *endoperation.Recognizer
	Checker    *endoperation.PresenceChecker
	Resources  *resource.FS
	Store      *item.Store

	registry   *ocr.CachedRegistry
	classifier *item.Classifier
}

// Build loads every collaborator named by cfg. The caller must Close the
// pipeline.
func Build(cfg *config.Config) (*Pipeline, error) {
	if err := item.InitRuntime(cfg.OnnxRuntimeLib); err != nil {
		return nil, err
	}

	store := item.NewStore(cfg.UnknownItemsDir)
	if err := store.Reload(); err != nil {
		log.Warn().Err(err).Str("dir", store.Dir()).Msg("Failed to load extra items")
	}
	classifier, err := item.NewClassifier(cfg.ItemModel, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load item model %s: %w", cfg.ItemModel, err)
	}

	registry := ocr.NewCachedRegistry(ocr.TesseractFactory(cfg.TessdataPrefix))
	engine, err := registry.Acquire(cfg.TessLang)
	if err != nil {
		registry.Close()
		_ = classifier.Close()
		return nil, err
	}

	resources := resource.NewFS(cfg.ResourceDir)
	items := &item.Reader{Classifier: classifier, Quantity: &item.QuantityReader{Engine: engine}}
	p := &Pipeline{
		Recognizer: endoperation.New(resources, registry, items),
		Checker:    &endoperation.PresenceChecker{Resources: resources, OCR: registry},
		Resources:  resources,
		Store:      store,
		registry:   registry,
		classifier: classifier,
	}
	log.Info().
		Str("resources", resources.Root()).
		Str("model", cfg.ItemModel).
		Str("lang", cfg.TessLang).
		Msg("Recognition pipeline ready")
	return p, nil
}

// Watch reloads resources and learned items as their files change, until
// ctx is done.
func (p *Pipeline) Watch(ctx context.Context) {
	go func() {
		if err := p.Resources.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("Resource watcher stopped")
		}
	}()
	go func() {
		if err := p.Store.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("Extra item watcher stopped")
		}
	}()
}

// Close releases the OCR engines and the model session.
func (p *Pipeline) Close() error {
	p.registry.Close()
	return p.classifier.Close()
}
