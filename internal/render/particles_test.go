package render

import (
	"math/rand"
	"testing"

	"github.com/comangin/vjing/internal/analyzer"
)

func hotSpectrum(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1.0
	}
	return s
}

func TestParticlePoolNeverExceedsCap(t *testing.T) {
	p := NewParticlePool(50, rand.New(rand.NewSource(1)))
	c := NewCanvas(200, 200)
	spec := hotSpectrum(512)
	bands := analyzer.Bands{Low: 0.2, Mid: 0.7, High: 0.1}

	for tick := 0; tick < 100; tick++ {
		p.SpawnSpectral(spec, 100, 100)
		p.SpawnAmbient(bands, 100, 100)
		if p.Len() > 50 {
			t.Fatalf("pool size=%d exceeds cap=50 at tick %d", p.Len(), tick)
		}
		p.Step(c)
	}
}

func TestParticlesEventuallyCulled(t *testing.T) {
	p := NewParticlePool(MaxParticles, rand.New(rand.NewSource(2)))
	c := NewCanvas(100, 100)
	p.SpawnSpectral(hotSpectrum(256), 50, 50)
	if p.Len() == 0 {
		t.Fatal("hot spectrum spawned no particles")
	}

	// max life is 30+30=60; everything must be gone well before 200
	for tick := 0; tick < 200; tick++ {
		p.Step(c)
	}
	if p.Len() != 0 {
		t.Fatalf("%d particles leaked after lifetime expiry", p.Len())
	}
}

func TestSilentSpectrumSpawnsAlmostNothing(t *testing.T) {
	p := NewParticlePool(MaxParticles, rand.New(rand.NewSource(3)))
	silent := make([]float64, 512)

	p.SpawnSpectral(silent, 100, 100)
	if p.Len() != 0 {
		t.Fatalf("silence spawned %d spectral particles", p.Len())
	}
	// ambient floor is 2 per tick at zero mid energy
	p.SpawnAmbient(analyzer.Bands{}, 100, 100)
	if p.Len() > 2 {
		t.Fatalf("silence spawned %d ambient particles, want <=2", p.Len())
	}
}

func TestOffscreenParticlesRemoved(t *testing.T) {
	p := NewParticlePool(10, rand.New(rand.NewSource(4)))
	c := NewCanvas(50, 50)
	p.add(Particle{X: 49, Y: 25, VX: 40, VY: 0, Life: 1000})

	p.Step(c)
	if p.Len() != 0 {
		t.Fatal("particle that left the canvas was kept")
	}
}
