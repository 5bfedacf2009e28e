// Command endop-server serves results screen recognition over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/pkg/logging"
	"github.com/akhelper/endop-service/pkg/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closer.Close()

	p, err := pipeline.Build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build recognition pipeline")
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.WatchResources {
		p.Watch(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s := &server{reader: p.Recognizer, checker: p.Checker, debugDir: cfg.DebugDir}
	s.setupRoutes(r)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server exited")
}
