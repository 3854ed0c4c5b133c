package render

import (
	"math"
	"math/rand"

	"github.com/comangin/vjing/internal/analyzer"
)

// Particle is a transient dot flying outward from the center.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Col    Color
	Life   int
}

const (
	// MaxParticles caps the pool; spawns past the cap are skipped so
	// sustained loud input cannot blow up frame time.
	MaxParticles = 800

	particleSpawnThreshold = 0.65
	particleRadius         = 3
)

// ParticlePool owns every live particle: spawn, advance, cull, draw.
type ParticlePool struct {
	items []Particle
	max   int
	rng   *rand.Rand
}

// NewParticlePool creates a pool capped at max (<=0 uses
// MaxParticles) fed by the given random source.
func NewParticlePool(max int, rng *rand.Rand) *ParticlePool {
	if max <= 0 {
		max = MaxParticles
	}
	return &ParticlePool{
		items: make([]Particle, 0, max),
		max:   max,
		rng:   rng,
	}
}

// Len returns the live particle count.
func (p *ParticlePool) Len() int { return len(p.items) }

func (p *ParticlePool) add(pt Particle) {
	if len(p.items) >= p.max {
		return
	}
	p.items = append(p.items, pt)
}

// SpawnSpectral emits particles for hot spectrum bins: each bin over
// the threshold spawns with probability proportional to its
// magnitude, radially outward, faster the hotter the bin.
func (p *ParticlePool) SpawnSpectral(spectrum []float64, cx, cy float64) {
	n := len(spectrum)
	if n == 0 {
		return
	}
	for i, mag := range spectrum {
		if mag <= particleSpawnThreshold || p.rng.Float64() >= mag*0.25 {
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		speed := 4 + mag*10
		p.add(Particle{
			X: cx, Y: cy,
			VX: math.Cos(angle) * speed,
			VY: math.Sin(angle) * speed,
			Col: Color{
				R: uint8(200 + p.rng.Intn(56)),
				G: uint8(100 + p.rng.Intn(131)),
				B: uint8(120 + p.rng.Intn(136)),
			},
			Life: 30 + int(mag*30),
		})
	}
}

// SpawnAmbient emits a baseline burst each tick scaled by mid-band
// energy, randomized in angle and speed, keeping motion alive between
// transients.
func (p *ParticlePool) SpawnAmbient(bands analyzer.Bands, cx, cy float64) {
	count := 2 + int(bands.Mid*28)
	for i := 0; i < count; i++ {
		angle := p.rng.Float64() * 2 * math.Pi
		speed := 2 + bands.Mid*12
		p.add(Particle{
			X: cx, Y: cy,
			VX: math.Cos(angle) * speed,
			VY: math.Sin(angle) * speed,
			Col: Color{
				R: uint8(math.Min(255, 200+55*bands.High)),
				G: uint8(math.Min(255, 120+100*bands.Mid)),
				B: uint8(math.Min(255, 180+60*bands.High)),
			},
			Life: 25 + int(bands.Mid*40),
		})
	}
}

// Step advances every particle by one tick, draws the survivors and
// compacts away anything that died or left the canvas.
func (p *ParticlePool) Step(c *Canvas) {
	keep := p.items[:0]
	for _, pt := range p.items {
		pt.X += pt.VX
		pt.Y += pt.VY
		pt.Life--
		if pt.Life <= 0 || pt.X < 0 || pt.X >= float64(c.W) || pt.Y < 0 || pt.Y >= float64(c.H) {
			continue
		}
		c.FillCircle(int(pt.X), int(pt.Y), particleRadius, pt.Col, 255, ModeOpaque)
		keep = append(keep, pt)
	}
	p.items = keep
}
