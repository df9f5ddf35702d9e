// Package config loads the TOML configuration file. Every field has a
// default; a missing file is not an error, only a malformed one.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type Particles struct {
	Count          int     `toml:"count"`
	SpringStrength float32 `toml:"spring_strength"`
	Damping        float32 `toml:"damping"`
}

type Brain struct {
	Model string `toml:"model"`
}

type Overlay struct {
	FontPath string `toml:"font_path"`
}

type Config struct {
	Window    Window    `toml:"window"`
	Particles Particles `toml:"particles"`
	Brain     Brain     `toml:"brain"`
	Overlay   Overlay   `toml:"overlay"`

	// WatchPath is an optional Lego Protocol JSON file applied live on
	// every write.
	WatchPath string `toml:"watch_path"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "swarm",
		},
		Particles: Particles{
			Count:          500,
			SpringStrength: 0.08,
			Damping:        0.85,
		},
	}
}

// Load reads path over the defaults. An absent file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Particles.Count <= 0 {
		return cfg, fmt.Errorf("config: particle count must be positive, got %d", cfg.Particles.Count)
	}
	return cfg, nil
}
