package audio

// Snapshot is one completed spectral analysis of an audio block:
// a peak-normalized magnitude spectrum plus RMS loudness. Instances
// handed out by Snapshot() are copies and safe to keep.
type Snapshot struct {
	Magnitudes []float64
	Loudness   float64
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	mags := make([]float64, len(s.Magnitudes))
	copy(mags, s.Magnitudes)
	return Snapshot{Magnitudes: mags, Loudness: s.Loudness}
}
