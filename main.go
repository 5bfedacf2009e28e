package main

import (
	"os"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/pkg/logging"
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

	if len(os.Args) < 2 {
		log.Fatal().Msg("Usage: endop-agent <socket-id>")
	}
	identifier := os.Args[1]

	if err := maa.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MaaFramework")
	}
	registerAll(cfg)

	if err := maa.AgentServerStartUp(identifier); err != nil {
		log.Fatal().Err(err).Str("identifier", identifier).Msg("Failed to start agent server")
	}
	log.Info().Str("identifier", identifier).Msg("Agent server started")
	maa.AgentServerJoin()
	maa.AgentServerShutDown()
	log.Info().Msg("Agent server exited")
}
