// Package config loads runtime settings from a .env file and the
// environment. Command-line flags override them in main.
package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Card sources.
const (
	SourceBuiltin = "builtin"
	SourceFiles   = "files"
	SourcePokeAPI = "pokeapi"
)

type Config struct {
	Difficulty   string        `env:"PAIRS_DIFFICULTY"    envDefault:"easy"`
	Source       string        `env:"PAIRS_SOURCE"        envDefault:"builtin"`
	CardPaths    []string      `env:"PAIRS_CARD_PATHS"    envSeparator:","`
	PokeAPIURL   string        `env:"PAIRS_POKEAPI_URL"   envDefault:"https://pokeapi.co/api/v2"`
	PokeAPILimit int           `env:"PAIRS_POKEAPI_LIMIT" envDefault:"151"`
	FetchTimeout time.Duration `env:"PAIRS_FETCH_TIMEOUT" envDefault:"10s"`
	Seed         int64         `env:"PAIRS_SEED"`
	LogFile      string        `env:"PAIRS_LOG_FILE"`
	LogLevel     string        `env:"PAIRS_LOG_LEVEL"     envDefault:"info"`
}

// Load reads .env files, if any, then the environment.
func Load(dotenv ...string) (Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load(dotenv...)

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks settings that env parsing cannot.
func (c Config) Validate() error {
	switch c.Source {
	case SourceBuiltin, SourcePokeAPI:
	case SourceFiles:
		if len(c.CardPaths) == 0 {
			return fmt.Errorf("card source %q needs at least one card path", c.Source)
		}
	default:
		return fmt.Errorf("unknown card source %q", c.Source)
	}
	if c.PokeAPILimit <= 0 {
		return fmt.Errorf("pokeapi limit must be positive, got %d", c.PokeAPILimit)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// ResolveSeed returns the configured seed, or a fresh one when none is set.
func (c Config) ResolveSeed() (int64, error) {
	if c.Seed != 0 {
		return c.Seed, nil
	}
	return NewSeed()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewLogger opens the log file. The terminal belongs to the UI, so with no
// file configured logging is discarded.
func (c Config) NewLogger() (zerolog.Logger, io.Closer, error) {
	if c.LogFile == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	log := zerolog.New(f).Level(lvl).With().Timestamp().Str("app", "go-pairs").Logger()
	return log, f, nil
}
