package app

import (
	"math"
	"math/rand"

	"github.com/comangin/vjing/internal/audio"
)

// fakeSource synthesizes spectral snapshots for runs without a capture
// device. It produces a slow-breathing bass hump, broadband noise and
// occasional loud impulses so beats, bursts and glitches all fire.
type fakeSource struct {
	rng     *rand.Rand
	bins    int
	phase   float64
	impulse int
}

func newFakeSource(blockSize int, rng *rand.Rand) *fakeSource {
	bins := blockSize / 2
	if bins < 8 {
		bins = 8
	}
	return &fakeSource{rng: rng, bins: bins}
}

func (f *fakeSource) Snapshot() audio.Snapshot {
	f.phase += 0.045
	if f.impulse > 0 {
		f.impulse--
	} else if f.rng.Float64() < 0.03 {
		f.impulse = 2 + f.rng.Intn(3)
	}

	mags := make([]float64, f.bins)
	breath := 0.55 + 0.45*math.Sin(f.phase)
	center := 2 + 3*breath
	for i := range mags {
		d := (float64(i) - center) / 6.0
		hump := breath * math.Exp(-d*d)
		noise := f.rng.Float64() * 0.08 * math.Exp(-float64(i)/float64(f.bins)*3)
		mags[i] = hump + noise
	}
	if f.impulse > 0 {
		for i := range mags {
			mags[i] = math.Min(1, mags[i]+0.4+f.rng.Float64()*0.3)
		}
	}

	// keep the same contract as real capture: peak-normalized bins
	peak := 0.0
	for _, m := range mags {
		if m > peak {
			peak = m
		}
	}
	if peak > 0 {
		for i := range mags {
			mags[i] /= peak
		}
	}

	loud := 0.015 + 0.02*breath
	if f.impulse > 0 {
		loud += 0.12 + f.rng.Float64()*0.05
	}
	return audio.Snapshot{Magnitudes: mags, Loudness: loud}
}
