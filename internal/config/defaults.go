package config

import (
	"os"
	"path/filepath"

	"live-hair-tint/internal/gallery"
)

// Default returns the settings the application runs with when no file exists
func Default() *Config {
	palette := make([]string, len(gallery.DefaultPalette))
	copy(palette, gallery.DefaultPalette)

	return &Config{
		Camera: CameraConfig{
			Device:     0,
			BackDevice: 1,
			Facing:     "front",
			Width:      640,
			Height:     480,
			FPS:        30,
		},
		Pipeline: PipelineConfig{
			InputStream:  "input_video",
			OutputStream: "output_video",
			FlipY:        true,
			QueueSize:    64,
		},
		Gallery: GalleryConfig{
			Palette: palette,
		},
		Effects: EffectsConfig{
			Dir:             filepath.Join(ConfigDir(), "effects"),
			Ext:             ".toml",
			Watch:           true,
			DefaultStrength: 0.4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Title:          "Live Hair Tint",
			Width:          480,
			Height:         800,
			SwatchSize:     56,
			SnapshotDir:    snapshotDir(),
			SnapshotFormat: ".png",
		},
	}
}

func snapshotDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Pictures", "live-hair-tint")
	}
	return filepath.Join(ConfigDir(), "snapshots")
}
