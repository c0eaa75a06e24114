// Package config loads the demo's TOML settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"material-engine/core"
	"material-engine/lighting"
)

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

type Lighting struct {
	BindingPoint uint32 `toml:"binding_point"`
}

type Shaders struct {
	// Dir overrides the embedded GLSL sources when set.
	Dir string `toml:"dir,omitempty"`
}

// Config is the whole settings file. Keys missing from the file keep
// their Default values.
type Config struct {
	Window   Window   `toml:"window"`
	Log      Log      `toml:"log"`
	Lighting Lighting `toml:"lighting"`
	Shaders  Shaders  `toml:"shaders"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "Material Engine",
			VSync:  true,
		},
		Log:      Log{Level: "info"},
		Lighting: Lighting{BindingPoint: lighting.DefaultBindingPoint},
	}
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("config %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := core.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel is the parsed [log] level. Call after Validate.
func (c Config) LogLevel() slog.Level {
	lvl, _ := core.ParseLevel(c.Log.Level)
	return lvl
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes c to path.
func (c Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
