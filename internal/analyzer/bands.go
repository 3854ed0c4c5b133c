package analyzer

// Bands holds the normalized low/mid/high energy shares of one
// spectrum. Shares sum to 1 for any non-degenerate input.
type Bands struct {
	Low, Mid, High float64
}

// BandTracker splits the magnitude spectrum into three contiguous
// bands and keeps an exponentially smoothed copy of their shares.
// Smoothing decouples slow scene parameters from per-frame spectral
// noise.
type BandTracker struct {
	alpha    float64
	smoothed Bands
}

// NewBandTracker creates a tracker; alpha <= 0 uses the default 0.18.
func NewBandTracker(alpha float64) *BandTracker {
	if alpha <= 0 {
		alpha = 0.18
	}
	return &BandTracker{alpha: alpha}
}

// Observe splits the spectrum (first 1/8 low, through 1/3 mid, rest
// high), normalizes the per-band average magnitudes into shares and
// folds them into the smoothed state. Returns the raw shares.
func (t *BandTracker) Observe(magnitudes []float64) Bands {
	raw := splitBands(magnitudes)
	t.smoothed.Low = (1.0-t.alpha)*t.smoothed.Low + t.alpha*raw.Low
	t.smoothed.Mid = (1.0-t.alpha)*t.smoothed.Mid + t.alpha*raw.Mid
	t.smoothed.High = (1.0-t.alpha)*t.smoothed.High + t.alpha*raw.High
	return raw
}

// Smoothed returns the exponentially smoothed shares.
func (t *BandTracker) Smoothed() Bands { return t.smoothed }

func splitBands(magnitudes []float64) Bands {
	n := len(magnitudes)
	if n == 0 {
		return Bands{}
	}
	b1 := maxInt(1, n/8)
	b2 := maxInt(1, n/3)
	if b2 <= b1 {
		b2 = b1 + 1
	}
	if b2 > n {
		b2 = n
	}

	low := average(magnitudes[:b1])
	mid := average(magnitudes[b1:b2])
	high := average(magnitudes[b2:])

	total := low + mid + high + 1e-9
	return Bands{
		Low:  low / total,
		Mid:  mid / total,
		High: high / total,
	}
}

// LowAverage returns the raw average magnitude of the low band
// (first eighth of the bins), before share normalization. The
// background compositor uses it so crossfade speed follows absolute
// bass level, not its relative share.
func LowAverage(magnitudes []float64) float64 {
	n := len(magnitudes)
	if n == 0 {
		return 0
	}
	k := maxInt(1, n/8)
	return average(magnitudes[:k])
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
