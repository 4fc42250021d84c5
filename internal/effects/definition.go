// Package effects resolves a configuration identifier to the tint the
// processing engine applies.
package effects

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"live-hair-tint/internal/gallery"
)

// Mode selects how the tint is combined with the frame
type Mode string

const (
	// ModeBlend mixes the tint color into the frame
	ModeBlend Mode = "blend"
	// ModeLuma scales the tint color by frame brightness
	ModeLuma Mode = "luma"
)

const DefaultExt = ".toml"

// Definition is a loaded effect
type Definition struct {
	ID       string
	Color    color.NRGBA
	Strength float64
	Mode     Mode
	// Source is the file the definition came from; empty when derived from ID
	Source string
}

type definitionFile struct {
	Color    string   `toml:"color" yaml:"color"`
	Strength *float64 `toml:"strength" yaml:"strength"`
	Mode     string   `toml:"mode" yaml:"mode"`
}

// Library locates definitions as <Dir>/<id><Ext>
type Library struct {
	Dir             string
	Ext             string
	DefaultStrength float64
}

func NewLibrary(dir, ext string, defaultStrength float64) *Library {
	if ext == "" {
		ext = DefaultExt
	}
	return &Library{Dir: dir, Ext: ext, DefaultStrength: defaultStrength}
}

// Path is where the definition for id lives
func (l *Library) Path(id string) string {
	return filepath.Join(l.Dir, id+l.Ext)
}

// IDFromPath is the inverse of Path; false for files the library ignores
func (l *Library) IDFromPath(path string) (string, bool) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(l.Dir) {
		return "", false
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, l.Ext) || len(base) == len(l.Ext) {
		return "", false
	}
	return strings.TrimSuffix(base, l.Ext), true
}

// Load reads the definition file for id. A missing file yields a blend of
// the color the identifier names at the default strength.
func (l *Library) Load(id string) (Definition, error) {
	path := l.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l.derive(id)
		}
		return Definition{}, fmt.Errorf("read effect %s: %w", id, err)
	}

	var f definitionFile
	switch l.Ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		_, err = toml.Decode(string(data), &f)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("decode effect %s: %w", path, err)
	}

	def, err := l.derive(id)
	if f.Color != "" {
		def.Color, err = gallery.ParseColor(f.Color)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("effect %s: %w", path, err)
	}
	if f.Strength != nil {
		def.Strength = *f.Strength
	}
	if f.Mode != "" {
		def.Mode = Mode(strings.ToLower(f.Mode))
	}
	def.Source = path

	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("effect %s: %w", path, err)
	}
	return def, nil
}

func (l *Library) derive(id string) (Definition, error) {
	c, err := gallery.ParseColor(id)
	if err != nil {
		return Definition{}, err
	}
	return Definition{ID: id, Color: c, Strength: l.DefaultStrength, Mode: ModeBlend}, nil
}

func (d Definition) Validate() error {
	if d.Strength < 0 || d.Strength > 1 {
		return fmt.Errorf("strength %v outside [0,1]", d.Strength)
	}
	switch d.Mode {
	case ModeBlend, ModeLuma:
		return nil
	default:
		return fmt.Errorf("unknown mode %q", d.Mode)
	}
}
