package main

import (
	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/endoperation"
	"github.com/rs/zerolog/log"
)

func registerAll(cfg *config.Config) {
	// Results screen recognition and presence checks, plus the resource
	// sink that tells them where the loaded bundle lives
	endoperation.Register(cfg)

	log.Info().
		Msg("All custom components and sinks registered successfully")
}
