package config

import (
	"fmt"
	"time"
)

// Config holds the server's runtime settings.
type Config struct {
	Bind      string
	Port      int
	DataDir   string
	PublicURL string
	RoomTTL   time.Duration
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when no flag or environment
// variable overrides it.
func Default() *Config {
	return &Config{
		Bind:      "0.0.0.0",
		Port:      8080,
		DataDir:   "data",
		RoomTTL:   2 * time.Hour,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
