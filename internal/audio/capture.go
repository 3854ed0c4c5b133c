package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
)

const normEpsilon = 1e-6

// Capture owns a PortAudio input stream and turns every delivered
// block into a Snapshot. Only the most recent snapshot is retained:
// the callback overwrites the single slot under a short-held lock and
// the render side copies it out, so a slow consumer skips
// intermediate blocks but never sees a half-written one.
type Capture struct {
	blockSize  int
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo
	stream     *portaudio.Stream

	mu     sync.Mutex
	latest Snapshot

	// callback scratch, never shared
	mono     []float64
	windowed []float64
	window   []float64
}

// Config controls how a Capture instance is created.
type Config struct {
	// DeviceIndex selects a PortAudio device by index; negative means
	// auto-detect. DeviceName, when non-empty, wins over the index and
	// matches by substring.
	DeviceIndex int
	DeviceName  string
	BlockSize   int
	SampleRate  float64 // 0 uses the device default
	Channels    int
}

const defaultBlockSize = 1024

// NewCapture resolves the input device and prepares analysis buffers.
// It does not open the stream; call Start for that.
func NewCapture(cfg Config) (*Capture, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	device, err := resolveDevice(cfg.DeviceIndex, cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = device.DefaultSampleRate
	}

	c := newAnalysisCapture(cfg.BlockSize, cfg.Channels)
	c.sampleRate = sampleRate
	c.device = device
	return c, nil
}

// newAnalysisCapture builds the analysis half without touching
// PortAudio, which keeps the block pipeline testable on its own.
func newAnalysisCapture(blockSize, channels int) *Capture {
	c := &Capture{
		blockSize: blockSize,
		channels:  channels,
		mono:      make([]float64, blockSize),
		windowed:  make([]float64, blockSize),
		window:    hannWindow(blockSize),
	}
	c.latest.Magnitudes = make([]float64, blockSize/2)
	return c
}

// Start opens and starts the input stream. A failure to open the
// device at the requested parameters is returned wrapped; the Capture
// stays usable for another Start attempt.
func (c *Capture) Start() error {
	if c.stream != nil {
		return nil
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   c.device,
			Channels: c.channels,
			Latency:  c.device.DefaultLowInputLatency,
		},
		SampleRate:      c.sampleRate,
		FramesPerBuffer: c.blockSize,
	}, c.process)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}
	c.stream = stream
	return nil
}

// Stop halts and releases the stream. Safe to call repeatedly; after
// Stop the capture can be started again.
func (c *Capture) Stop() error {
	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil
	if err := stream.Stop(); err != nil && !isStoppedStreamErr(err) {
		_ = stream.Close()
		return err
	}
	return stream.Close()
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 { return c.sampleRate }

// Device returns the resolved PortAudio device.
func (c *Capture) Device() *portaudio.DeviceInfo { return c.device }

// Snapshot copies out the most recent completed analysis.
func (c *Capture) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest.Clone()
}

// process runs on the PortAudio callback thread. It must stay
// allocation-light and never block beyond the snapshot lock; a
// malformed block degrades to padding, never to a dropped stream.
func (c *Capture) process(in []float32) {
	if len(in) == 0 {
		return
	}
	c.downmix(in)
	c.analyze()
}

// downmix averages interleaved channels into the mono scratch buffer,
// padding with zeros or truncating so it is exactly blockSize long.
func (c *Capture) downmix(in []float32) {
	frames := len(in) / c.channels
	if frames > c.blockSize {
		frames = c.blockSize
	}
	for i := 0; i < frames; i++ {
		sum := float64(0)
		base := i * c.channels
		for ch := 0; ch < c.channels; ch++ {
			sum += float64(in[base+ch])
		}
		c.mono[i] = sum / float64(c.channels)
	}
	for i := frames; i < c.blockSize; i++ {
		c.mono[i] = 0
	}
}

// analyze windows the mono block, computes the peak-normalized
// magnitude spectrum and RMS loudness, and publishes them as the new
// snapshot.
func (c *Capture) analyze() {
	for i, s := range c.mono {
		c.windowed[i] = s * c.window[i]
	}

	spectrum := fft.FFTReal(c.windowed)

	half := c.blockSize / 2
	sumSq := 0.0
	for _, s := range c.mono {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(c.blockSize))

	c.mu.Lock()
	defer c.mu.Unlock()
	peak := 0.0
	for i := 0; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		c.latest.Magnitudes[i] = mag
		if mag > peak {
			peak = mag
		}
	}
	inv := 1.0 / (peak + normEpsilon)
	for i := 0; i < half; i++ {
		c.latest.Magnitudes[i] *= inv
	}
	c.latest.Loudness = rms
}

func hannWindow(size int) []float64 {
	w := make([]float64, size)
	n := float64(size)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/n))
	}
	return w
}
