package render

import "math"

// DrawRadialBars draws one line per spectrum bin, radiating from an
// inner ring, length scaled by magnitude and hue cycling with the
// background phase.
func DrawRadialBars(c *Canvas, spectrum []float64, phase float64) {
	n := len(spectrum)
	if n == 0 {
		return
	}
	cx, cy := c.W/2, c.H/2
	maxRadius := minInt(c.W, c.H)/2 - 20
	if maxRadius < 1 {
		return
	}
	inner := 60 + maxRadius/5

	for i, mag := range spectrum {
		angle := 2 * math.Pi * float64(i) / float64(n)
		outer := inner + int(mag*float64(maxRadius-inner))
		x1 := cx + int(float64(inner)*math.Cos(angle))
		y1 := cy + int(float64(inner)*math.Sin(angle))
		x2 := cx + int(float64(outer)*math.Cos(angle))
		y2 := cy + int(float64(outer)*math.Sin(angle))

		hue := math.Mod(phase+angle/(2*math.Pi), 1.0)
		col := Color{
			R: clamp255(120 + mag*135 + 100*math.Abs(math.Sin(hue*math.Pi))),
			G: clamp255(30 + mag*180 + 80*math.Abs(math.Sin((hue+0.33)*math.Pi))),
			B: clamp255(100 + mag*155 + 80*math.Abs(math.Sin((hue+0.66)*math.Pi))),
		}
		c.StrokeLine(x1, y1, x2, y2, col, 4, 255, ModeOpaque)
	}
}

// beatFlashThreshold is the loudness above which the whole frame gets
// an additive palette flash.
const beatFlashThreshold = 0.12

// DrawBeatFlash washes the frame with a palette color when loudness
// crosses the flash threshold; the alpha ramps with the overshoot.
func DrawBeatFlash(c *Canvas, loudness float64, pal Palette, colorPhase float64) {
	if loudness <= beatFlashThreshold {
		return
	}
	alpha := uint8(math.Min(255, (loudness-beatFlashThreshold)*1200))
	pc := pal.Pick(colorPhase)
	c.FillRect(0, 0, c.W, c.H, Color{R: pc.R, G: pc.G / 2, B: pc.B}, alpha, ModeAdd)
}

// DrawScanlines dims alternating horizontal bands for a CRT feel.
func DrawScanlines(c *Canvas) {
	for y := 0; y < c.H; y += 4 {
		alpha := uint8(4)
		if (y/4)%2 == 0 {
			alpha = 10
		}
		c.FillRect(0, y, c.W, 2, Color{}, alpha, ModeAlpha)
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
