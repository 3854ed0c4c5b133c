package app

import (
	"testing"

	"github.com/comangin/vjing/internal/analyzer"
	"github.com/comangin/vjing/internal/audio"
	"github.com/comangin/vjing/internal/render"
)

// stubSource feeds a fixed snapshot until the test swaps it.
type stubSource struct {
	snap audio.Snapshot
}

func (s *stubSource) Snapshot() audio.Snapshot {
	return s.snap
}

type nopPresenter struct{}

func (nopPresenter) Present(frame *render.Canvas, status string) error { return nil }
func (nopPresenter) Close() error                                      { return nil }

func newTestApp(t *testing.T) (*App, *stubSource) {
	t.Helper()
	a, err := New(Config{
		Width:     160,
		Height:    120,
		BlockSize: 256,
		NoAudio:   true,
		Seed:      1,
		Presenter: nopPresenter{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := &stubSource{snap: silentSnapshot(128)}
	a.source = src
	return a, src
}

func silentSnapshot(bins int) audio.Snapshot {
	return audio.Snapshot{Magnitudes: make([]float64, bins)}
}

// bassSnapshot concentrates energy in the low bins. Magnitudes stay
// below the spectral laser threshold so only beat bursts spawn lasers.
func bassSnapshot(bins int, loudness float64) audio.Snapshot {
	mags := make([]float64, bins)
	for i := 0; i < bins/8; i++ {
		mags[i] = 0.85
	}
	for i := bins / 8; i < bins; i++ {
		mags[i] = 0.05
	}
	return audio.Snapshot{Magnitudes: mags, Loudness: loudness}
}

func TestSilenceProducesNoBeats(t *testing.T) {
	a, _ := newTestApp(t)

	for i := 0; i < 150; i++ {
		if err := a.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if a.BeatActive() {
			t.Fatalf("beat flagged on silent input at tick %d", i)
		}
	}

	if _, lasers := a.PoolSizes(); lasers != 0 {
		t.Fatalf("silent run spawned %d lasers, want 0", lasers)
	}
	// ambient particles keep trickling even on silence, but well under
	// the cap
	particles, _ := a.PoolSizes()
	if particles == 0 || particles >= render.MaxParticles {
		t.Fatalf("silent run has %d particles, want a small nonzero count", particles)
	}
	if a.background.Phase() <= 0 {
		t.Fatalf("background phase did not advance: %v", a.background.Phase())
	}
}

func TestImpulseTriggersSingleBeatAndBurst(t *testing.T) {
	a, src := newTestApp(t)

	src.snap = audio.Snapshot{Magnitudes: make([]float64, 128), Loudness: 0.01}
	for i := 0; i < 100; i++ {
		if err := a.step(); err != nil {
			t.Fatalf("warmup step %d: %v", i, err)
		}
		if a.BeatActive() {
			t.Fatalf("beat on steady quiet input at tick %d", i)
		}
	}

	impulse := bassSnapshot(128, 0.3)
	src.snap = impulse
	if err := a.step(); err != nil {
		t.Fatalf("impulse step: %v", err)
	}
	if !a.BeatActive() {
		t.Fatal("impulse did not register as a beat")
	}

	low := analyzer.NewBandTracker(0).Observe(impulse.Magnitudes).Low
	want := render.BurstCount(low)
	if _, lasers := a.PoolSizes(); lasers != want {
		t.Fatalf("beat burst spawned %d lasers, want %d", lasers, want)
	}
	if timer := a.machine.TimerTicks(); timer == 0 {
		t.Fatal("beat did not extend the scene timer")
	}

	// back to quiet: the elevated baseline plus cooldown must keep the
	// detector silent
	src.snap = audio.Snapshot{Magnitudes: make([]float64, 128), Loudness: 0.01}
	for i := 0; i < 20; i++ {
		if err := a.step(); err != nil {
			t.Fatalf("cooldown step %d: %v", i, err)
		}
		if a.BeatActive() {
			t.Fatalf("spurious beat at tick %d after impulse", i)
		}
	}
}

func TestControlMirrorAppliedNextTick(t *testing.T) {
	a, _ := newTestApp(t)

	if err := a.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	before := a.SceneIndex()

	a.AdvanceScene()
	if got := a.SceneIndex(); got != before {
		t.Fatalf("scene changed before the next tick: %d", got)
	}
	if err := a.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got, want := a.SceneIndex(), (before+1)%4; got != want {
		t.Fatalf("scene after advance = %d, want %d", got, want)
	}

	a.SetGlitchEnabled(true)
	if !a.GlitchEnabled() {
		t.Fatal("glitch toggle not reflected")
	}
	if err := a.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if !a.glitch.Shapes() {
		t.Fatal("glitch toggle not applied to the subsystem")
	}
}

func TestCyclePaletteWraps(t *testing.T) {
	a, _ := newTestApp(t)

	n := a.PaletteCount()
	if n == 0 {
		t.Fatal("no palettes registered")
	}
	for i := 0; i < n; i++ {
		a.CyclePalette()
	}
	if got := a.PaletteIndex(); got != 0 {
		t.Fatalf("palette index after full cycle = %d, want 0", got)
	}

	a.SetPaletteIndex(n) // out of range, ignored
	if got := a.PaletteIndex(); got != 0 {
		t.Fatalf("out-of-range SetPaletteIndex changed index to %d", got)
	}
}
