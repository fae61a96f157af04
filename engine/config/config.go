package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/meshview/engine/core"
)

type CameraConfig struct {
	// Eye position; the camera always looks at the origin with +Y up.
	Eye [3]float32 `toml:"eye"`
	// Near and far planes of the viewing frustum.
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

type AnimationConfig struct {
	DegreesPerFrame float32    `toml:"degrees_per_frame"`
	Axis            [3]float32 `toml:"axis"`
}

// ViewerConfig is the on-disk viewer configuration.
type ViewerConfig struct {
	// The application name used in windowing.
	Name   string `toml:"name"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	LogLevel string `toml:"log_level"`

	// Directory watched for model changes.
	AssetsDir string `toml:"assets_dir"`
	// Model path; empty renders the built-in cube.
	Model string `toml:"model"`
	// Reload the model when it changes on disk.
	Watch bool `toml:"watch"`

	ClearColour [4]float32      `toml:"clear_colour"`
	Camera      CameraConfig    `toml:"camera"`
	Animation   AnimationConfig `toml:"animation"`
}

// Default is a grey background, the camera four units back and
// two degrees of rotation per frame.
func Default() *ViewerConfig {
	return &ViewerConfig{
		Name:        "meshview",
		Width:       1280,
		Height:      720,
		LogLevel:    "info",
		AssetsDir:   "assets",
		Watch:       true,
		ClearColour: [4]float32{0.2, 0.2, 0.2, 1.0},
		Camera: CameraConfig{
			Eye:  [3]float32{0, 0, -4},
			Near: 3,
			Far:  7,
		},
		Animation: AnimationConfig{
			DegreesPerFrame: 2,
			Axis:            [3]float32{0.5, 1, 0.3},
		},
	}
}

// Load reads the TOML file at path on top of Default. An empty path returns
// the defaults.
func Load(path string) (*ViewerConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (*ViewerConfig, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("invalid config: %s", strict.String())
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ViewerConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	a := c.Animation.Axis
	if a[0] == 0 && a[1] == 0 && a[2] == 0 {
		return fmt.Errorf("animation axis must be non-zero")
	}
	for i, v := range c.ClearColour {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear_colour[%d]=%v is outside [0, 1]", i, v)
		}
	}
	return nil
}

// Level returns the parsed log level. Validate has already rejected bad values.
func (c *ViewerConfig) Level() core.LogLevel {
	l, _ := core.ParseLogLevel(c.LogLevel)
	return l
}

// UsesCube reports whether the built-in cube is shown instead of a model file.
func (c *ViewerConfig) UsesCube() bool {
	return c.Model == ""
}
