package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "input_video", cfg.Pipeline.InputStream)
	assert.Equal(t, "output_video", cfg.Pipeline.OutputStream)
	assert.True(t, cfg.Pipeline.FlipY)
	assert.Equal(t, "front", cfg.Camera.Facing)
	assert.Len(t, cfg.Gallery.Palette, 11)
	assert.Equal(t, "0000FF", cfg.Gallery.Palette[0])
	assert.Equal(t, ".toml", cfg.Effects.Ext)
}

func TestDefaultPaletteIsACopy(t *testing.T) {
	a := Default()
	a.Gallery.Palette[0] = "FFFFFF"
	assert.Equal(t, "0000FF", Default().Gallery.Palette[0])
}

func TestConfigPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(ConfigPath(), "config.toml"))
	assert.Contains(t, ConfigPath(), "live-hair-tint")
}

func TestLoadNonexistentUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Pipeline, cfg.Pipeline)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Camera, cfg.Camera)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "config.toml", `
[camera]
device = 2
facing = "back"

[gallery]
palette = ["112233", "445566"]

[logging]
level = "debug"
`},
		{"yaml", "config.yaml", `
camera:
  device: 2
  facing: back
gallery:
  palette: ["112233", "445566"]
logging:
  level: debug
`},
		{"json", "config.json", `{
  "camera": {"device": 2, "facing": "back"},
  "gallery": {"palette": ["112233", "445566"]},
  "logging": {"level": "debug"}
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, 2, cfg.Camera.Device)
			assert.Equal(t, "back", cfg.Camera.Facing)
			assert.Equal(t, []string{"112233", "445566"}, cfg.Gallery.Palette)
			assert.Equal(t, "debug", cfg.Logging.Level)
			// untouched sections keep their defaults
			assert.Equal(t, 640, cfg.Camera.Width)
			assert.Equal(t, "output_video", cfg.Pipeline.OutputStream)
		})
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "[camera\n"))
	assert.ErrorContains(t, err, "decode TOML")

	_, err = Load(writeFile(t, "config.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = Load(writeFile(t, "config.toml", "[logging]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "validation failed")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIVETINT_CAMERA_DEVICE", "3")
	t.Setenv("LIVETINT_CAMERA_FACING", "back")
	t.Setenv("LIVETINT_LOG_LEVEL", "warn")
	t.Setenv("LIVETINT_LOG_PATH", "/tmp/tint.log")
	t.Setenv("LIVETINT_EFFECTS_DIR", "/srv/effects")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Camera.Device)
	assert.Equal(t, "back", cfg.Camera.Facing)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/tint.log", cfg.Logging.FilePath)
	assert.Equal(t, "/srv/effects", cfg.Effects.Dir)
}

func TestLoadNormalizesFacing(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", "[camera]\nfacing = \"Back\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "back", cfg.Camera.Facing)

	t.Setenv("LIVETINT_CAMERA_FACING", " FRONT ")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "front", cfg.Camera.Facing)
}

func TestEnvOverrideIgnoresBadDevice(t *testing.T) {
	t.Setenv("LIVETINT_CAMERA_DEVICE", "front")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Camera.Device)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative device", func(c *Config) { c.Camera.Device = -1 }, "device index"},
		{"bad facing", func(c *Config) { c.Camera.Facing = "side" }, "facing"},
		{"unnormalized facing", func(c *Config) { c.Camera.Facing = "Back" }, "facing"},
		{"negative fps", func(c *Config) { c.Camera.FPS = -5 }, "fps"},
		{"missing stream", func(c *Config) { c.Pipeline.InputStream = "" }, "stream names"},
		{"zero queue", func(c *Config) { c.Pipeline.QueueSize = 0 }, "queue size"},
		{"empty palette", func(c *Config) { c.Gallery.Palette = nil }, "palette"},
		{"bad ext", func(c *Config) { c.Effects.Ext = "toml" }, "extension"},
		{"strength range", func(c *Config) { c.Effects.DefaultStrength = 1.5 }, "strength"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.QueueSize = 0
	cfg.Gallery.Palette = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue size")
	assert.Contains(t, err.Error(), "palette")
}
