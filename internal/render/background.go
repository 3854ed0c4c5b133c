package render

import (
	"math"
	"math/rand"

	"github.com/comangin/vjing/internal/analyzer"
)

// Background crossfades between precomputed procedural surfaces,
// advancing a pair of phases driven by loudness and low-band energy.
// If surface generation failed it degrades to a concentric gradient
// instead of failing the frame.
type Background struct {
	surfaces []*Canvas
	phase    float64 // animation phase for rotation/zoom and hues
	selPhase float64 // background selection phase, wraps over surfaces
	rng      *rand.Rand
	scratch  *Canvas
}

// NewBackground precomputes count procedural surfaces of the given
// size. count <= 0 keeps the surface list empty and forces the
// fallback path.
func NewBackground(w, h, count int, rng *rand.Rand) *Background {
	b := &Background{rng: rng, scratch: NewCanvas(w, h)}
	for i := 0; i < count; i++ {
		b.surfaces = append(b.surfaces, makeSurface(w, h, i))
	}
	return b
}

// SelPhase returns the current background-selection phase; the tint
// hue and the flash color index derive from it.
func (b *Background) SelPhase() float64 { return b.selPhase }

// Phase returns the animation phase.
func (b *Background) Phase() float64 { return b.phase }

// Step advances the phases and composes the background onto dst.
// lowAvg is the raw average magnitude of the low band (pre-share
// normalization), which drives crossfade speed and opacity.
func (b *Background) Step(dst *Canvas, loudness, lowAvg float64, smoothed analyzer.Bands, beat bool, pal Palette) {
	b.phase += 0.02 + loudness*0.08
	b.selPhase += 0.02 + lowAvg*0.12
	// strong beats occasionally jump the selection forward so the
	// scenery can change abruptly with the music
	if beat && b.rng.Float64() < 0.5 {
		b.selPhase += 1.0 + b.rng.Float64()*2.0
	}

	if len(b.surfaces) == 0 {
		b.drawFallback(dst, loudness)
		return
	}

	n := len(b.surfaces)
	idx := int(b.selPhase) % n
	next := (idx + 1) % n

	a1 := b.phase * 10 * math.Pi / 180
	a2 := -b.phase * 8 * math.Pi / 180
	z1 := 1.0 + 0.02*math.Sin(b.phase)
	z2 := 1.0 + 0.02*math.Cos(b.phase)

	dst.Clear(Color{})
	dst.BlitRotoZoom(b.surfaces[idx], a1, z1, 255, ModeOpaque)

	fade := math.Min(1.0, lowAvg*3.5)
	b.scratch.Clear(Color{})
	b.scratch.BlitRotoZoom(b.surfaces[next], a2, z2, 255, ModeOpaque)
	dst.BlitRect(b.scratch, 0, 0, dst.W, dst.H, 0, 0, uint8(255*fade), ModeAdd, nil)

	b.tint(dst, smoothed, pal)
}

// tint adds a palette-colored wash whose strength follows smoothed
// low and mid energy and whose hue follows the selection phase.
func (b *Background) tint(dst *Canvas, smoothed analyzer.Bands, pal Palette) {
	strength := 60 + 380*(0.6*smoothed.Low+0.4*smoothed.Mid)
	if strength > 200 {
		strength = 200
	}
	dst.FillRect(0, 0, dst.W, dst.H, pal.Pick(b.selPhase), uint8(strength), ModeAdd)
}

// drawFallback paints a simple banded radial gradient keyed to the
// hue phase. Used when no surfaces were precomputed.
func (b *Background) drawFallback(dst *Canvas, loudness float64) {
	cx, cy := dst.W/2, dst.H/2
	maxRadius := minInt(dst.W, dst.H)/2 - 20
	if maxRadius < 1 {
		maxRadius = 1
	}
	dst.Clear(Color{})
	for i := 0; i < 10; i++ {
		frac := float64(i) / 10.0
		col := hueColor(b.phase+frac*2.0+loudness*2, 0.8, 0.15+0.7*(1.0-frac))
		radius := int(float64(maxRadius)*(1.0-frac)) + 10
		dst.FillCircle(cx, cy, radius, col, 255, ModeOpaque)
	}
}

// makeSurface builds one procedural background: concentric hue rings,
// radial streaks, soft noise specks and a vignette. Seeded per index
// so every surface differs but stays stable across runs.
func makeSurface(w, h, seedIndex int) *Canvas {
	rng := rand.New(rand.NewSource(int64(seedIndex) + 7))
	surf := NewCanvas(w, h)
	cx, cy := w/2, h/2
	maxR := int(float64(minInt(w, h)) * 0.8)

	for i := 8; i > 0; i-- {
		frac := float64(i) / 8.0
		col := hueColor(float64(seedIndex)*0.21+frac*1.3, 0.75, 0.1+0.75*frac)
		surf.FillCircle(cx, cy, int(float64(maxR)*frac), col, 140, ModeAlpha)
	}

	for t := 0; t < 40; t++ {
		a := rng.Float64() * 2 * math.Pi
		rr := maxR/3 + rng.Intn(maxR-maxR/3+1)
		x2 := cx + int(math.Cos(a)*float64(rr))
		y2 := cy + int(math.Sin(a)*float64(rr))
		col := Color{
			R: uint8(80 + rng.Intn(121)),
			G: uint8(40 + rng.Intn(141)),
			B: uint8(80 + rng.Intn(161)),
		}
		surf.StrokeLine(cx, cy, x2, y2, col, 1+rng.Intn(3), 30, ModeAlpha)
	}

	for i := 0; i < 800; i++ {
		x := rng.Intn(w)
		y := rng.Intn(h)
		col := Color{
			R: uint8(rng.Intn(61)),
			G: uint8(rng.Intn(61)),
			B: uint8(rng.Intn(61)),
		}
		surf.FillCircle(x, y, 1+rng.Intn(3), col, 15, ModeAlpha)
	}

	// darken toward the edges
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x-cx), float64(y-cy)) / float64(maxR)
			if dist <= 0.6 {
				continue
			}
			shade := uint8(math.Min(140, (dist-0.6)*260))
			surf.put(x, y, Color{}, shade, ModeAlpha)
		}
	}

	return surf
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
