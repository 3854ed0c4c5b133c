package audio

import (
	"math"
	"testing"
)

func TestSpectrumShapeInvariant(t *testing.T) {
	cases := map[string]struct {
		blockSize int
		channels  int
		frames    int
	}{
		"exact mono":      {blockSize: 512, channels: 1, frames: 512},
		"short block":     {blockSize: 512, channels: 1, frames: 100},
		"long block":      {blockSize: 512, channels: 1, frames: 2000},
		"stereo":          {blockSize: 256, channels: 2, frames: 256},
		"stereo short":    {blockSize: 256, channels: 2, frames: 30},
		"quad oversized":  {blockSize: 128, channels: 4, frames: 500},
		"single sample":   {blockSize: 64, channels: 1, frames: 1},
	}

	for name, tc := range cases {
		c := newAnalysisCapture(tc.blockSize, tc.channels)
		in := make([]float32, tc.frames*tc.channels)
		for i := range in {
			in[i] = float32(math.Sin(float64(i) * 0.21))
		}
		c.process(in)

		snap := c.Snapshot()
		if got, want := len(snap.Magnitudes), tc.blockSize/2; got != want {
			t.Fatalf("%s: spectrum length=%d want=%d", name, got, want)
		}
	}
}

func TestSpectrumNormalizedToPeak(t *testing.T) {
	c := newAnalysisCapture(1024, 1)
	in := make([]float32, 1024)
	for i := range in {
		in[i] = float32(0.8 * math.Sin(2*math.Pi*float64(i)*32.0/1024.0))
	}
	c.process(in)

	snap := c.Snapshot()
	peak := 0.0
	for _, m := range snap.Magnitudes {
		if m < 0 {
			t.Fatalf("negative magnitude %f", m)
		}
		if m > peak {
			peak = m
		}
	}
	if peak > 1.0+1e-9 {
		t.Fatalf("peak magnitude=%f exceeds 1.0", peak)
	}
	if peak < 0.99 {
		t.Fatalf("peak magnitude=%f, expected near 1.0 after normalization", peak)
	}
}

func TestSilenceDoesNotBlowUp(t *testing.T) {
	c := newAnalysisCapture(512, 1)
	c.process(make([]float32, 512))

	snap := c.Snapshot()
	if snap.Loudness != 0 {
		t.Fatalf("silent block loudness=%f want=0", snap.Loudness)
	}
	for i, m := range snap.Magnitudes {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			t.Fatalf("bin %d is not finite: %f", i, m)
		}
	}
}

func TestDownmixAveragesChannels(t *testing.T) {
	c := newAnalysisCapture(4, 2)
	// left = 1, right = 0 everywhere: mono must be 0.5
	c.process([]float32{1, 0, 1, 0, 1, 0, 1, 0})
	for i, s := range c.mono {
		if math.Abs(s-0.5) > 1e-9 {
			t.Fatalf("mono[%d]=%f want=0.5", i, s)
		}
	}
}

func TestLoudnessIsRMSOfUnwindowedSamples(t *testing.T) {
	c := newAnalysisCapture(256, 1)
	in := make([]float32, 256)
	for i := range in {
		in[i] = 0.5
	}
	c.process(in)

	if got := c.Snapshot().Loudness; math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("loudness=%f want=0.5", got)
	}
}

func TestStopWithoutStartIsIdempotent(t *testing.T) {
	c := newAnalysisCapture(128, 1)
	if err := c.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := newAnalysisCapture(64, 1)
	in := make([]float32, 64)
	in[3] = 1
	c.process(in)

	snap := c.Snapshot()
	snap.Magnitudes[0] = 42
	if c.Snapshot().Magnitudes[0] == 42 {
		t.Fatal("mutating a snapshot leaked into the shared slot")
	}
}
