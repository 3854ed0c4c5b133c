package render

import (
	"math"
	"math/rand"
)

const (
	glitchBaseChance = 0.02
	glitchMaxChance  = 0.6
	glitchSlices     = 6
	glitchMaxShift   = 40
)

// Glitch corrupts finished frames in short bursts: horizontal slice
// shifts plus, when shapes are enabled, random palette-colored
// rectangles and ellipses. Triggering is a Bernoulli trial per tick
// whose probability rises with loudness and high-band energy.
type Glitch struct {
	timer   int
	shapes  bool
	rng     *rand.Rand
	scratch *Canvas
}

// NewGlitch creates the engine. shapes controls the overlay
// sub-effect; slice shifts always run during a burst.
func NewGlitch(w, h int, shapes bool, rng *rand.Rand) *Glitch {
	return &Glitch{
		shapes:  shapes,
		rng:     rng,
		scratch: NewCanvas(w, h),
	}
}

// SetShapes toggles the shape overlay sub-effect at runtime.
func (g *Glitch) SetShapes(on bool) { g.shapes = on }

// Shapes reports whether the shape overlay is enabled.
func (g *Glitch) Shapes() bool { return g.shapes }

// Active reports whether a burst is currently running.
func (g *Glitch) Active() bool { return g.timer > 0 }

// Step possibly starts a burst and, while one is active, corrupts the
// frame in place. Loudness and high share scale both trigger chance
// and burst duration.
func (g *Glitch) Step(c *Canvas, loudness, highShare float64, pal Palette) {
	if g.timer <= 0 {
		chance := math.Min(glitchBaseChance+loudness*0.15+highShare*0.45, glitchMaxChance)
		if g.rng.Float64() < chance {
			g.timer = 6 + int(loudness*25+highShare*30)
		}
	}
	if g.timer <= 0 {
		return
	}
	g.timer--

	g.sliceShift(c)
	if g.shapes {
		g.shapeOverlay(c, highShare, pal)
	}
}

// sliceShift copies the frame and blits back a handful of horizontal
// bands at random offsets, sometimes with a red-multiplied echo.
func (g *Glitch) sliceShift(c *Canvas) {
	g.scratch.CopyFrom(c)
	red := Color{R: 255}
	for i := 0; i < glitchSlices; i++ {
		maxH := c.H / 8
		if maxH < 6 {
			maxH = 6
		}
		h := 4 + g.rng.Intn(maxH-3)
		y0 := 0
		if c.H > h {
			y0 = g.rng.Intn(c.H - h)
		}
		shift := g.rng.Intn(2*glitchMaxShift+1) - glitchMaxShift

		c.BlitRect(g.scratch, 0, y0, c.W, h, shift, y0, 255, ModeOpaque, nil)
		if g.rng.Float64() < 0.4 {
			c.BlitRect(g.scratch, 0, y0, c.W, h, shift/2, y0, 80, ModeAlpha, &red)
		}
	}
}

// shapeOverlay scatters semi-transparent palette-colored rectangles
// and ellipses, additively blended most of the time.
func (g *Glitch) shapeOverlay(c *Canvas, highShare float64, pal Palette) {
	count := 2 + int(highShare*10)
	for i := 0; i < count; i++ {
		sx := g.rng.Intn(c.W)
		sy := g.rng.Intn(c.H)
		sw := 20 + g.rng.Intn(maxShape(c.W))
		sh := 20 + g.rng.Intn(maxShape(c.H))
		col := pal[g.rng.Intn(len(pal))]
		alpha := uint8(math.Min(255, 40+200*g.rng.Float64()*highShare))

		mode := ModeAlpha
		if g.rng.Float64() < 0.6 {
			mode = ModeAdd
		}
		if g.rng.Float64() < 0.5 {
			c.FillRect(sx-sw/2, sy-sh/2, sw, sh, col, alpha, mode)
		} else {
			c.FillEllipse(sx, sy, sw/2, sh/2, col, alpha, mode)
		}
	}
}

func maxShape(dim int) int {
	limit := dim / 2
	if limit > 200 {
		limit = 200
	}
	if limit <= 20 {
		return 1
	}
	return limit - 20
}
