package render

import (
	"math"
	"math/rand"
)

// Laser is a moving beam segment rendered with layered glow.
type Laser struct {
	X1, Y1 float64
	X2, Y2 float64
	VX, VY float64
	Col    Color
	Life   int
}

const (
	// MaxLasers caps the pool the same way MaxParticles does.
	MaxLasers = 120

	laserSpawnThreshold = 0.9
	laserSpawnChance    = 0.12
	laserCullMargin     = 200
)

// LaserPool owns every live laser beam.
type LaserPool struct {
	items []Laser
	max   int
	rng   *rand.Rand
}

// NewLaserPool creates a pool capped at max (<=0 uses MaxLasers).
func NewLaserPool(max int, rng *rand.Rand) *LaserPool {
	if max <= 0 {
		max = MaxLasers
	}
	return &LaserPool{
		items: make([]Laser, 0, max),
		max:   max,
		rng:   rng,
	}
}

// Len returns the live laser count.
func (p *LaserPool) Len() int { return len(p.items) }

func (p *LaserPool) add(l Laser) {
	if len(p.items) >= p.max {
		return
	}
	p.items = append(p.items, l)
}

// SpawnSpectral emits beams for very hot bins at low probability,
// radiating outward with a palette-derived color.
func (p *LaserPool) SpawnSpectral(spectrum []float64, cx, cy, maxRadius float64, pal Palette) {
	n := len(spectrum)
	if n == 0 {
		return
	}
	for i, mag := range spectrum {
		if mag <= laserSpawnThreshold || p.rng.Float64() >= laserSpawnChance {
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		base := pal[i%len(pal)]
		p.add(Laser{
			X1: cx + maxRadius*0.2*math.Cos(angle),
			Y1: cy + maxRadius*0.2*math.Sin(angle),
			X2: cx + maxRadius*math.Cos(angle),
			Y2: cy + maxRadius*math.Sin(angle),
			VX: math.Cos(angle) * 6,
			VY: math.Sin(angle) * 6,
			Col: base.jitter(30, p.rng.Intn),
			Life: 25,
		})
	}
}

// BurstCount is the number of beams a beat fires for a given low-band
// share.
func BurstCount(lowShare float64) int {
	return 3 + int(lowShare*6)
}

// SpawnBurst fires a radial burst of beams on a beat, sized and
// sped up by low-band energy, alternating warm/cold colors.
func (p *LaserPool) SpawnBurst(lowShare, cx, cy, maxRadius float64) {
	count := BurstCount(lowShare)
	for j := 0; j < count; j++ {
		angle := p.rng.Float64() * 2 * math.Pi
		var col Color
		if j%2 == 0 {
			col = Color{R: 255, G: uint8(30 + 220*lowShare), B: 60}
		} else {
			col = Color{R: 30, G: 200, B: uint8(30 + 120*lowShare)}
		}
		speed := 6 + lowShare*6
		p.add(Laser{
			X1: cx + maxRadius*0.15*math.Cos(angle),
			Y1: cy + maxRadius*0.15*math.Sin(angle),
			X2: cx + maxRadius*math.Cos(angle),
			Y2: cy + maxRadius*math.Sin(angle),
			VX: math.Cos(angle) * speed,
			VY: math.Sin(angle) * speed,
			Col: col,
			Life: 30 + int(lowShare*40),
		})
	}
}

// Step advances every beam, draws it with glow, and compacts away
// beams that expired or drifted far outside the canvas. gain is the
// scene's visibility multiplier.
func (p *LaserPool) Step(c *Canvas, gain float64) {
	keep := p.items[:0]
	for _, l := range p.items {
		l.X1 += l.VX
		l.Y1 += l.VY
		l.X2 += l.VX
		l.Y2 += l.VY
		l.Life--

		drawLaser(c, l, gain)

		if l.Life <= 0 {
			continue
		}
		if l.X1 < -laserCullMargin || l.X1 > float64(c.W)+laserCullMargin ||
			l.Y1 < -laserCullMargin || l.Y1 > float64(c.H)+laserCullMargin {
			continue
		}
		keep = append(keep, l)
	}
	p.items = keep
}

// drawLaser renders two additive glow passes of decreasing width and
// then a bright core line with an end cap. Intensity follows
// remaining life scaled by the scene gain.
func drawLaser(c *Canvas, l Laser, gain float64) {
	t := math.Min(1.0, math.Max(0.2, float64(l.Life)/40.0)) * gain
	baseW := int(2 + 6*t)

	x1, y1 := int(l.X1), int(l.Y1)
	x2, y2 := int(l.X2), int(l.Y2)

	glows := [2]struct {
		col   Color
		alpha float64
		extra int
	}{
		{l.Col.scale(0.6), 40 * t, 6},
		{l.Col.scale(0.9), 80 * t, 3},
	}
	for _, g := range glows {
		a := uint8(math.Min(255, math.Max(0, g.alpha)))
		c.StrokeLine(x1, y1, x2, y2, g.col, baseW+g.extra, a, ModeAdd)
	}

	core := baseW / 2
	if core < 1 {
		core = 1
	}
	c.StrokeLine(x1, y1, x2, y2, l.Col, core, 255, ModeOpaque)
	capR := baseW / 2
	if capR < 2 {
		capR = 2
	}
	c.FillCircle(x2, y2, capR, l.Col, 255, ModeOpaque)
}
