// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds every setting of the agent and the command line tools.
type Config struct {
	ResourceDir     string
	TessLang        string
	TessdataPrefix  string
	ItemModel       string
	OnnxRuntimeLib  string
	UnknownItemsDir string
	DebugDir        string
	LogLevel        zerolog.Level
	LogFile         string
	ListenAddr      string
	WatchResources  bool
}

// Load reads envFile when it exists and then the ENDOP_* variables. Values
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(getEnvWithDefault("ENDOP_LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid ENDOP_LOG_LEVEL: %w", err)
	}
	watch, err := strconv.ParseBool(getEnvWithDefault("ENDOP_WATCH_RESOURCES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENDOP_WATCH_RESOURCES: %w", err)
	}

	cfg := &Config{
		ResourceDir:     getEnvWithDefault("ENDOP_RESOURCE_DIR", "resources"),
		TessLang:        getEnvWithDefault("ENDOP_TESS_LANG", "en-us"),
		TessdataPrefix:  os.Getenv("ENDOP_TESSDATA_PREFIX"),
		ItemModel:       getEnvWithDefault("ENDOP_ITEM_MODEL", "cache/ark_material.onnx"),
		OnnxRuntimeLib:  getEnvWithDefault("ENDOP_ONNXRUNTIME_LIB", defaultOnnxRuntimeLib()),
		UnknownItemsDir: getEnvWithDefault("ENDOP_UNKNOWN_DIR", "extra_items"),
		DebugDir:        os.Getenv("ENDOP_DEBUG_DIR"),
		LogLevel:        level,
		LogFile:         os.Getenv("ENDOP_LOG_FILE"),
		ListenAddr:      getEnvWithDefault("ENDOP_LISTEN", ":8081"),
		WatchResources:  watch,
	}
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")
	return cfg, nil
}

func getEnvWithDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func defaultOnnxRuntimeLib() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	}
	return "libonnxruntime.so"
}
