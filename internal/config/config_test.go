package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Difficulty != "easy" || cfg.Source != SourceBuiltin {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.FetchTimeout != 10*time.Second || cfg.PokeAPILimit != 151 {
		t.Errorf("Unexpected fetch defaults: %s, %d", cfg.FetchTimeout, cfg.PokeAPILimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PAIRS_DIFFICULTY", "hard")
	t.Setenv("PAIRS_SOURCE", "files")
	t.Setenv("PAIRS_CARD_PATHS", "a.txt,b.txt")
	t.Setenv("PAIRS_SEED", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Difficulty != "hard" || cfg.Source != SourceFiles {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if len(cfg.CardPaths) != 2 || cfg.CardPaths[1] != "b.txt" {
		t.Errorf("Expected two card paths, got %v", cfg.CardPaths)
	}
	if seed, _ := cfg.ResolveSeed(); seed != 42 {
		t.Errorf("Expected seed 42, got %d", seed)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PAIRS_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Registered so the variable godotenv sets is removed afterwards.
	t.Setenv("PAIRS_LOG_LEVEL", "")
	os.Unsetenv("PAIRS_LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level from .env, got %q", cfg.LogLevel)
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("PAIRS_POKEAPI_LIMIT", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("Expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Source: SourceBuiltin, PokeAPILimit: 10, FetchTimeout: time.Second, LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown source", func(c *Config) { c.Source = "ftp" }, true},
		{"files without paths", func(c *Config) { c.Source = SourceFiles }, true},
		{"files with paths", func(c *Config) { c.Source = SourceFiles; c.CardPaths = []string{"x"} }, false},
		{"zero limit", func(c *Config) { c.PokeAPILimit = 0 }, true},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}
	b, _ := NewSeed()
	if a == b {
		t.Errorf("Two seeds should differ, both %d", a)
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.log")
	cfg := Config{LogFile: path, LogLevel: "info"}

	log, closer, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info().Str("difficulty", "easy").Msg("round started")
	log.Debug().Msg("hidden")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"message":"round started"`) || !strings.Contains(out, `"difficulty":"easy"`) {
		t.Errorf("Unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Debug line written at info level")
	}
}
