package render

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered triple of colors: primary, secondary and a
// background-leaning third.
type Palette [3]Color

// Builtin palettes, cycled by the compositor.
var builtinPalettes = []Palette{
	{{255, 90, 110}, {40, 220, 140}, {100, 120, 255}},  // neon red/green/blue
	{{200, 120, 255}, {80, 240, 200}, {255, 200, 80}},  // purple/cyan/orange
	{{30, 200, 120}, {255, 90, 140}, {180, 180, 255}},  // green/pink/soft-blue
	{{255, 240, 120}, {160, 60, 200}, {140, 255, 180}}, // warm neon mix
}

// Palettes returns the palette rotation. A non-nil user palette is
// merged in at the front so it becomes the startup palette.
func Palettes(user *Palette) []Palette {
	out := make([]Palette, 0, len(builtinPalettes)+1)
	if user != nil {
		out = append(out, *user)
	}
	out = append(out, builtinPalettes...)
	return out
}

// Pick returns the palette entry for a running phase value, wrapping
// cyclically.
func (p Palette) Pick(phase float64) Color {
	idx := int(phase) % len(p)
	if idx < 0 {
		idx += len(p)
	}
	return p[idx]
}

// hueColor converts a cyclic hue phase (any real; wraps at 1) into an
// RGB color at the given saturation and value.
func hueColor(phase, sat, val float64) Color {
	h := math.Mod(phase, 1.0)
	if h < 0 {
		h += 1.0
	}
	r, g, b := colorful.Hsv(h*360.0, clamp01(sat), clamp01(val)).RGB255()
	return Color{R: r, G: g, B: b}
}

// jitter shifts each channel by up to ±spread, clamped.
func (c Color) jitter(spread int, rnd func(int) int) Color {
	j := func(v uint8) uint8 {
		n := int(v) + rnd(2*spread+1) - spread
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	return Color{R: j(c.R), G: j(c.G), B: j(c.B)}
}

// scale multiplies all channels by f (clamped at white).
func (c Color) scale(f float64) Color {
	s := func(v uint8) uint8 {
		n := float64(v) * f
		if n > 255 {
			n = 255
		}
		if n < 0 {
			n = 0
		}
		return uint8(n)
	}
	return Color{R: s(c.R), G: s(c.G), B: s(c.B)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
