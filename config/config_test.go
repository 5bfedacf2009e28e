package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENDOP_RESOURCE_DIR", "ENDOP_LOG_LEVEL", "ENDOP_LISTEN", "ENDOP_DEBUG_DIR", "ENDOP_WATCH_RESOURCES"} {
		t.Setenv(k, "")
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ResourceDir != "resources" || cfg.ListenAddr != ":8081" || cfg.LogLevel != zerolog.InfoLevel {
		t.Fatalf("Load() = %+v", cfg)
	}
	if cfg.DebugDir != "" || cfg.WatchResources {
		t.Fatalf("debug or watch enabled by default: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ENDOP_TEST_ONLY_DIR=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENDOP_TEST_ONLY_DIR", "")
	os.Unsetenv("ENDOP_TEST_ONLY_DIR")
	t.Setenv("ENDOP_LOG_LEVEL", "debug")
	t.Setenv("ENDOP_WATCH_RESOURCES", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := os.Getenv("ENDOP_TEST_ONLY_DIR"); got != "from-file" {
		t.Fatalf("env file not applied: %q", got)
	}
	if cfg.LogLevel != zerolog.DebugLevel || !cfg.WatchResources {
		t.Fatalf("Load() = %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("ENDOP_LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("Load() accepted an invalid level")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load() error = %v for a missing file", err)
	}
}
