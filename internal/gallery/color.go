package gallery

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":     {0x00, 0x00, 0x00, 0xFF},
	"darkgray":  {0x44, 0x44, 0x44, 0xFF},
	"gray":      {0x88, 0x88, 0x88, 0xFF},
	"lightgray": {0xCC, 0xCC, 0xCC, 0xFF},
	"white":     {0xFF, 0xFF, 0xFF, 0xFF},
	"red":       {0xFF, 0x00, 0x00, 0xFF},
	"green":     {0x00, 0xFF, 0x00, 0xFF},
	"blue":      {0x00, 0x00, 0xFF, 0xFF},
	"yellow":    {0xFF, 0xFF, 0x00, 0xFF},
	"cyan":      {0x00, 0xFF, 0xFF, 0xFF},
	"magenta":   {0xFF, 0x00, 0xFF, 0xFF},
	"aqua":      {0x00, 0xFF, 0xFF, 0xFF},
	"fuchsia":   {0xFF, 0x00, 0xFF, 0xFF},
	"lime":      {0x00, 0xFF, 0x00, 0xFF},
	"maroon":    {0x80, 0x00, 0x00, 0xFF},
	"navy":      {0x00, 0x00, 0x80, 0xFF},
	"olive":     {0x80, 0x80, 0x00, 0xFF},
	"purple":    {0x80, 0x00, 0x80, 0xFF},
	"silver":    {0xC0, 0xC0, 0xC0, 0xFF},
	"teal":      {0x00, 0x80, 0x80, 0xFF},
}

// ParseColor accepts RRGGBB or AARRGGBB with an optional leading '#',
// or one of the common color names
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.TrimSpace(s)
	if named, ok := namedColors[strings.ToLower(strings.ReplaceAll(v, "grey", "gray"))]; ok {
		return named, nil
	}

	hex := strings.TrimPrefix(v, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("unknown color %q: %w", s, err)
	}

	c := color.NRGBA{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
		A: 0xFF,
	}
	if len(hex) == 8 {
		c.A = uint8(n >> 24)
	}
	return c, nil
}

// FormatColor renders c as #RRGGBB, or #AARRGGBB when not opaque
func FormatColor(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}
