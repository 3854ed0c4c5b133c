package analyzer

import "math"

// BeatDetector flags loudness transients against a sliding statistical
// baseline. It adapts to ambient level instead of using a fixed
// threshold, so it keeps firing on quiet material and stays quiet on
// sustained loud material.
type BeatDetector struct {
	history    []float64
	windowSize int
	threshold  float64 // stddev multiplier
	floor      float64 // absolute minimum margin over the mean
	cooldown   int     // refractory length in ticks
	remaining  int
}

// BeatConfig controls detector sensitivity. Zero values fall back to
// the built-in defaults.
type BeatConfig struct {
	WindowSize    int
	Threshold     float64
	Floor         float64
	CooldownTicks int
}

// NewBeatDetector creates a detector with the given config.
func NewBeatDetector(cfg BeatConfig) *BeatDetector {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 60
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 1.5
	}
	if cfg.Floor <= 0 {
		cfg.Floor = 0.002
	}
	if cfg.CooldownTicks <= 0 {
		cfg.CooldownTicks = 10
	}
	return &BeatDetector{
		history:    make([]float64, 0, cfg.WindowSize),
		windowSize: cfg.WindowSize,
		threshold:  cfg.Threshold,
		floor:      cfg.Floor,
		cooldown:   cfg.CooldownTicks,
	}
}

// Observe records one loudness sample and reports whether it is a
// beat. A detected beat starts the refractory cooldown; while the
// cooldown runs, no further beats are reported. Called once per
// render tick.
func (d *BeatDetector) Observe(loudness float64) bool {
	d.push(loudness)

	mean, stddev := d.stats()
	isBeat := false
	if d.remaining <= 0 && loudness > mean+math.Max(d.floor, d.threshold*stddev) {
		isBeat = true
		d.remaining = d.cooldown
	}
	if d.remaining > 0 {
		d.remaining--
	}
	return isBeat
}

func (d *BeatDetector) push(v float64) {
	if len(d.history) == d.windowSize {
		copy(d.history, d.history[1:])
		d.history[len(d.history)-1] = v
		return
	}
	d.history = append(d.history, v)
}

// stats works on however many samples exist so a cold start never
// divides by zero.
func (d *BeatDetector) stats() (mean, stddev float64) {
	n := len(d.history)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range d.history {
		sum += v
	}
	mean = sum / float64(n)

	sumSq := 0.0
	for _, v := range d.history {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(n))
}
