package render

import (
	"math/rand"
	"testing"
)

func TestLaserPoolNeverExceedsCap(t *testing.T) {
	p := NewLaserPool(20, rand.New(rand.NewSource(1)))
	c := NewCanvas(200, 200)
	pal := Palettes(nil)[0]
	spec := hotSpectrum(512)

	for tick := 0; tick < 100; tick++ {
		p.SpawnSpectral(spec, 100, 100, 80, pal)
		p.SpawnBurst(1.0, 100, 100, 80)
		if p.Len() > 20 {
			t.Fatalf("pool size=%d exceeds cap=20 at tick %d", p.Len(), tick)
		}
		p.Step(c, 1.0)
	}
}

func TestBurstCountFormula(t *testing.T) {
	cases := []struct {
		low  float64
		want int
	}{
		{0.0, 3},
		{0.5, 6},
		{1.0, 9},
	}
	for _, tc := range cases {
		if got := BurstCount(tc.low); got != tc.want {
			t.Fatalf("BurstCount(%.1f)=%d want=%d", tc.low, got, tc.want)
		}
	}
}

func TestBurstSpawnsExactlyBurstCount(t *testing.T) {
	p := NewLaserPool(MaxLasers, rand.New(rand.NewSource(2)))
	p.SpawnBurst(0.5, 100, 100, 80)
	if got, want := p.Len(), BurstCount(0.5); got != want {
		t.Fatalf("burst spawned %d lasers want %d", got, want)
	}
}

func TestLasersEventuallyCulled(t *testing.T) {
	p := NewLaserPool(MaxLasers, rand.New(rand.NewSource(3)))
	c := NewCanvas(100, 100)
	p.SpawnBurst(1.0, 50, 50, 40)

	// max burst life is 30+40=70
	for tick := 0; tick < 300; tick++ {
		p.Step(c, 1.0)
	}
	if p.Len() != 0 {
		t.Fatalf("%d lasers leaked after lifetime expiry", p.Len())
	}
}

func TestQuietSpectrumSpawnsNoLasers(t *testing.T) {
	p := NewLaserPool(MaxLasers, rand.New(rand.NewSource(4)))
	pal := Palettes(nil)[0]
	quiet := make([]float64, 512)
	for i := range quiet {
		quiet[i] = 0.5 // below the 0.9 threshold
	}
	p.SpawnSpectral(quiet, 100, 100, 80, pal)
	if p.Len() != 0 {
		t.Fatalf("quiet spectrum spawned %d lasers", p.Len())
	}
}
