// Package config loads the lab's TOML configuration file and layers it over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownPresentMode is returned when the renderer section names a present mode other than "vsync" or "uncapped".
var ErrUnknownPresentMode = errors.New("unknown present mode")

// ErrUnknownWatcher is returned when the watcher section names a backend other than "fsnotify" or "poll".
var ErrUnknownWatcher = errors.New("unknown watcher backend")

// Config is the full lab configuration.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Lab      Lab      `toml:"lab"`
	Watcher  Watcher  `toml:"watcher"`
}

// Window configures the platform window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Renderer configures the GPU device and surface.
type Renderer struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count used by demos that render multisampled.
	MSAA uint32 `toml:"msaa"`
	// Software requests the fallback adapter.
	Software bool `toml:"software"`
}

// Lab configures the demo runner.
type Lab struct {
	ShaderDir   string  `toml:"shader_dir"`
	InitialDemo int     `toml:"initial_demo"`
	TickRate    float64 `toml:"tick_rate"`
	Profiling   bool    `toml:"profiling"`
	// ValidateWGSL runs shader sources through the naga front end before compiling them.
	ValidateWGSL bool `toml:"validate_wgsl"`
}

// Watcher configures shader hot reload.
type Watcher struct {
	// Backend is "fsnotify" or "poll".
	Backend      string   `toml:"backend"`
	PollInterval Duration `toml:"poll_interval"`
	QueueSize    int      `toml:"queue_size"`
	Extension    string   `toml:"extension"`
}

// Duration is a time.Duration written as a Go duration string ("250ms") in TOML.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: Window{
			Title:  "oxy-lab",
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			PresentMode: "vsync",
			MSAA:        4,
		},
		Lab: Lab{
			ShaderDir:    "demos/shaders",
			InitialDemo:  6,
			TickRate:     60,
			ValidateWGSL: true,
		},
		Watcher: Watcher{
			Backend:      "fsnotify",
			PollInterval: Duration(250 * time.Millisecond),
			QueueSize:    64,
			Extension:    ".wgsl",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns the defaults;
// a missing file at an explicit path is an error. Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file to read, or "" for defaults only
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, decoded, or fails validation
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated and bounded fields.
//
// Returns:
//   - error: the first problem found, or nil
func (c Config) Validate() error {
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPresentMode, c.Renderer.PresentMode)
	}
	switch c.Watcher.Backend {
	case "fsnotify", "poll":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownWatcher, c.Watcher.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA)
	}
	if c.Watcher.QueueSize <= 0 {
		return fmt.Errorf("watcher queue size must be positive, got %d", c.Watcher.QueueSize)
	}
	if c.Lab.ShaderDir == "" {
		return errors.New("shader_dir must not be empty")
	}
	return nil
}
