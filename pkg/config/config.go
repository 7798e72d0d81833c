// Package config handles loading and saving km configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/km/config.yaml
//   - State:   ~/.local/state/km/ (keyword cache)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/keymatrix/pkg/layout"
)

const appName = "km"

// APIConfig points at the keyword admin API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"` // per request
}

// GlobeConfig controls the initial layout.
type GlobeConfig struct {
	Radius         float64 `yaml:"radius,omitempty"`
	Preset         string  `yaml:"preset,omitempty"` // golden, zoned
	Seed           int64   `yaml:"seed,omitempty"`   // jitter seed for the zoned preset
	MaxConnections int     `yaml:"max_connections,omitempty"`
}

// CameraConfig is the global-view camera.
type CameraConfig struct {
	Distance float64 `yaml:"distance,omitempty"`
	FOV      float64 `yaml:"fov,omitempty"` // vertical, degrees
}

// InteractionConfig tunes pointer handling.
type InteractionConfig struct {
	HoverThrottle time.Duration `yaml:"hover_throttle,omitempty"`
}

// RenderConfig tunes the terminal renderer.
type RenderConfig struct {
	FPS             int     `yaml:"fps,omitempty"`
	MaxLabels       int     `yaml:"max_labels,omitempty"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed,omitempty"` // radians per second
}

// DataConfig names local data sources.
type DataConfig struct {
	File  string `yaml:"file,omitempty"`  // JSON keyword file, watched for changes
	Cache string `yaml:"cache,omitempty"` // SQLite cache path; empty disables caching
}

// Config is the top-level configuration for km.
type Config struct {
	API         APIConfig         `yaml:"api,omitempty"`
	Globe       GlobeConfig       `yaml:"globe,omitempty"`
	Camera      CameraConfig      `yaml:"camera,omitempty"`
	Interaction InteractionConfig `yaml:"interaction,omitempty"`
	Render      RenderConfig      `yaml:"render,omitempty"`
	Data        DataConfig        `yaml:"data,omitempty"`
	InitTimeout time.Duration     `yaml:"init_timeout,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cache := ""
	if dir := StateDir(); dir != "" {
		cache = filepath.Join(dir, "keywords.db")
	}
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8001",
			Timeout: 10 * time.Second,
		},
		Globe: GlobeConfig{
			Radius:         3.2,
			Preset:         string(layout.PresetGolden),
			MaxConnections: 8,
		},
		Camera: CameraConfig{
			Distance: 8,
			FOV:      75,
		},
		Interaction: InteractionConfig{
			HoverThrottle: 75 * time.Millisecond,
		},
		Render: RenderConfig{
			FPS:             30,
			MaxLabels:       24,
			AutoRotateSpeed: 0.12,
		},
		Data: DataConfig{
			Cache: cache,
		},
		InitTimeout: 10 * time.Second,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if c.Globe.Radius <= 0 {
		errs = append(errs, fmt.Errorf("globe.radius must be positive, got %g", c.Globe.Radius))
	}
	if _, err := layout.ParsePreset(c.Globe.Preset); err != nil {
		errs = append(errs, fmt.Errorf("globe.preset: %w", err))
	}
	if c.Globe.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("globe.max_connections must not be negative, got %d", c.Globe.MaxConnections))
	}
	if c.Camera.Distance <= 0 {
		errs = append(errs, fmt.Errorf("camera.distance must be positive, got %g", c.Camera.Distance))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV))
	}
	if c.Interaction.HoverThrottle < 0 {
		errs = append(errs, fmt.Errorf("interaction.hover_throttle must not be negative"))
	}
	if c.Render.FPS < 1 || c.Render.FPS > 120 {
		errs = append(errs, fmt.Errorf("render.fps must be in [1, 120], got %d", c.Render.FPS))
	}
	if c.Render.MaxLabels < 0 {
		errs = append(errs, fmt.Errorf("render.max_labels must not be negative, got %d", c.Render.MaxLabels))
	}
	if c.InitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("init_timeout must be positive, got %s", c.InitTimeout))
	}
	return errors.Join(errs...)
}

// FrameInterval is the duration of one frame at the configured rate.
func (c Config) FrameInterval() time.Duration {
	if c.Render.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Render.FPS)
}

// ConfigDir returns the XDG config directory for km.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for km.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Settings absent from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Data.File = expandHome(cfg.Data.File)
	cfg.Data.Cache = expandHome(cfg.Data.Cache)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
