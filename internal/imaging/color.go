package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors are the colour names accepted by ParseColor in addition to hex.
var namedColors = map[string]color.NRGBA{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"transparent": {0, 0, 0, 0},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
}

// White is the fallback background used when a colour cannot be parsed.
var White = color.NRGBA{255, 255, 255, 255}

// ParseColor parses a background colour.
//
// Accepted forms (case-insensitive, leading '#' optional):
//   - "#RGB" shorthand, e.g. "#fff"
//   - "#RRGGBB", fully opaque
//   - "#RRGGBBAA", with alpha (00 = transparent, FF = opaque)
//   - a name: white, black, transparent, red, green, blue, gray/grey
//
// The RGB part is decoded by go-colorful; alpha is parsed separately since
// colorful has no alpha channel.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
	}

	alpha := uint8(255)
	switch len(hex) {
	case 3, 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length in %q", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// ParseColorOr parses s like ParseColor and returns fallback when it fails.
func ParseColorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// ColorHex formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func ColorHex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
