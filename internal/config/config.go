// Package config loads the application settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config is the top-level settings tree
type Config struct {
	Camera   CameraConfig   `toml:"camera" yaml:"camera" json:"camera"`
	Pipeline PipelineConfig `toml:"pipeline" yaml:"pipeline" json:"pipeline"`
	Gallery  GalleryConfig  `toml:"gallery" yaml:"gallery" json:"gallery"`
	Effects  EffectsConfig  `toml:"effects" yaml:"effects" json:"effects"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging" json:"logging"`
	UI       UIConfig       `toml:"ui" yaml:"ui" json:"ui"`
}

type CameraConfig struct {
	// Device is the capture index used for the front-facing camera
	Device     int    `toml:"device" yaml:"device" json:"device"`
	BackDevice int    `toml:"back_device" yaml:"back_device" json:"back_device"`
	Facing     string `toml:"facing" yaml:"facing" json:"facing"`
	Width      int    `toml:"width" yaml:"width" json:"width"`
	Height     int    `toml:"height" yaml:"height" json:"height"`
	FPS        int    `toml:"fps" yaml:"fps" json:"fps"`
}

type PipelineConfig struct {
	InputStream  string `toml:"input_stream" yaml:"input_stream" json:"input_stream"`
	OutputStream string `toml:"output_stream" yaml:"output_stream" json:"output_stream"`
	FlipY        bool   `toml:"flip_y" yaml:"flip_y" json:"flip_y"`
	QueueSize    int    `toml:"queue_size" yaml:"queue_size" json:"queue_size"`
}

type GalleryConfig struct {
	Palette []string `toml:"palette" yaml:"palette" json:"palette"`
	// Initial defaults to the first palette entry
	Initial string `toml:"initial" yaml:"initial" json:"initial"`
}

type EffectsConfig struct {
	Dir             string  `toml:"dir" yaml:"dir" json:"dir"`
	Ext             string  `toml:"ext" yaml:"ext" json:"ext"`
	Watch           bool    `toml:"watch" yaml:"watch" json:"watch"`
	DefaultStrength float64 `toml:"default_strength" yaml:"default_strength" json:"default_strength"`
}

type LoggingConfig struct {
	Level    string `toml:"level" yaml:"level" json:"level"`
	FilePath string `toml:"file_path" yaml:"file_path" json:"file_path"`
}

type UIConfig struct {
	Title      string  `toml:"title" yaml:"title" json:"title"`
	Width      float32 `toml:"width" yaml:"width" json:"width"`
	Height     float32 `toml:"height" yaml:"height" json:"height"`
	SwatchSize float32 `toml:"swatch_size" yaml:"swatch_size" json:"swatch_size"`
	// SnapshotDir receives frames saved from the Camera menu
	SnapshotDir    string `toml:"snapshot_dir" yaml:"snapshot_dir" json:"snapshot_dir"`
	SnapshotFormat string `toml:"snapshot_format" yaml:"snapshot_format" json:"snapshot_format"`
}

// ApplyEnvOverrides applies LIVETINT_* environment variables on top of c
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LIVETINT_CAMERA_DEVICE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Camera.Device = n
		}
	}
	if v := os.Getenv("LIVETINT_CAMERA_FACING"); v != "" {
		c.Camera.Facing = v
	}
	if v := os.Getenv("LIVETINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LIVETINT_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("LIVETINT_EFFECTS_DIR"); v != "" {
		c.Effects.Dir = v
	}
}

// Normalize canonicalizes values that are matched exactly downstream
func (c *Config) Normalize() {
	c.Camera.Facing = strings.ToLower(strings.TrimSpace(c.Camera.Facing))
}

// Validate reports every problem found, joined
func (c *Config) Validate() error {
	var errs []error

	if c.Camera.Device < 0 || c.Camera.BackDevice < 0 {
		errs = append(errs, errors.New("camera device index must not be negative"))
	}
	switch c.Camera.Facing {
	case "front", "back":
	default:
		errs = append(errs, fmt.Errorf("camera facing must be front or back, got %q", c.Camera.Facing))
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 || c.Camera.FPS < 0 {
		errs = append(errs, errors.New("camera width, height and fps must not be negative"))
	}

	if c.Pipeline.InputStream == "" || c.Pipeline.OutputStream == "" {
		errs = append(errs, errors.New("pipeline stream names are required"))
	}
	if c.Pipeline.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("pipeline queue size must be positive, got %d", c.Pipeline.QueueSize))
	}

	if len(c.Gallery.Palette) == 0 {
		errs = append(errs, errors.New("gallery palette is empty"))
	}

	if c.Effects.Ext != "" && !strings.HasPrefix(c.Effects.Ext, ".") {
		errs = append(errs, fmt.Errorf("effects extension must start with '.', got %q", c.Effects.Ext))
	}
	if c.Effects.DefaultStrength < 0 || c.Effects.DefaultStrength > 1 {
		errs = append(errs, fmt.Errorf("effects default strength must be within [0,1], got %v", c.Effects.DefaultStrength))
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ConfigDir is the per-user settings directory
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "live-hair-tint")
	}
	return ".live-hair-tint"
}

// ConfigPath is the default settings file location
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}
