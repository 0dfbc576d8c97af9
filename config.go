package soundbite

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/poiesic/soundbite/ai"
	"github.com/poiesic/soundbite/core"
	"github.com/poiesic/soundbite/match"
	"github.com/poiesic/soundbite/server"
)

// Config holds the process-level settings of a System.
type Config struct {
	// CataloguePath is the JSON or YAML catalogue file. It is created with a
	// placeholder clip when missing.
	// Default: "audio_base.json"
	CataloguePath string

	// CacheDir is the badger directory used to persist embeddings across
	// restarts. Empty disables the cache.
	CacheDir string

	// Threshold is the initial acceptance threshold in [0, 1].
	// Default: 0.7
	Threshold float64

	// MaxDescriptions caps the phrases accepted per admin insert.
	// Default: 100
	MaxDescriptions int

	// Debug attaches score tables to every decision.
	Debug bool

	// Port is the HTTP listen port.
	// Default: 8000
	Port int

	// PoolSize is the number of clips embedded concurrently at load.
	// Zero selects the catalogue default.
	PoolSize int

	// AI configures the embedding provider.
	AI *ai.Config
}

// DefaultConfig returns a Config with the defaults of a local deployment.
func DefaultConfig() *Config {
	return &Config{
		CataloguePath:   "audio_base.json",
		Threshold:       match.DefaultThreshold,
		MaxDescriptions: server.DefaultMaxDescriptions,
		Port:            8000,
		AI:              ai.DefaultConfig(),
	}
}

// Validate checks that the configuration is complete and in range.
func (c *Config) Validate() error {
	if c.CataloguePath == "" {
		return errors.New("config: CataloguePath is required")
	}
	if err := core.ValidateThreshold(c.Threshold); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxDescriptions < 1 {
		return errors.New("config: MaxDescriptions must be at least 1")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: Port %d out of range", c.Port)
	}
	if c.PoolSize < 0 {
		return errors.New("config: PoolSize cannot be negative")
	}
	if c.AI == nil {
		return errors.New("config: AI is required")
	}
	return c.AI.Validate()
}

// Addr returns the listen address for Port on all interfaces.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
