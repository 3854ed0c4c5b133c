package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/comangin/vjing/internal/analyzer"
	"github.com/comangin/vjing/internal/audio"
	"github.com/comangin/vjing/internal/render"
	"github.com/comangin/vjing/internal/scene"
)

// SnapshotSource supplies the latest spectral analysis. Implemented
// by audio.Capture and by the synthetic generator.
type SnapshotSource interface {
	Snapshot() audio.Snapshot
}

// Config configures the application runtime.
type Config struct {
	DeviceIndex   int
	DeviceName    string
	BlockSize     int
	SampleRate    float64
	Width         int
	Height        int
	TargetFPS     float64
	NoAudio       bool
	Windowed      bool
	GlitchEnabled bool
	UserPalette   *render.Palette
	ProfilePath   string
	Seed          int64
	Log           *log.Logger

	// Presenter overrides the automatic presenter choice; mainly for
	// headless runs and tests.
	Presenter render.Presenter
}

type inputEvent int

const (
	inputEventQuit inputEvent = iota
	inputEventScene
	inputEventGlitch
	inputEventPalette
)

// App ties capture, analysis and the visual subsystems into one
// render loop.
type App struct {
	cfg Config
	log *log.Logger

	source  SnapshotSource
	capture *audio.Capture // nil when synthetic audio is used

	detector   *analyzer.BeatDetector
	tracker    *analyzer.BandTracker
	machine    *scene.Machine
	particles  *render.ParticlePool
	lasers     *render.LaserPool
	background *render.Background
	glitch     *render.Glitch
	canvas     *render.Canvas
	presenter  render.Presenter
	prof       *profiler

	palettes     []render.Palette
	paletteIndex int

	// control/state mirror shared with the web server and hotkeys.
	// The subsystems themselves are only ever touched by the render
	// loop; outside callers mutate these fields and the loop applies
	// them at the next tick.
	mu            sync.Mutex
	lastBands     analyzer.Bands
	lastLoud      float64
	lastBeat      bool
	lastScene     int
	lastParticles int
	lastLasers    int
	fps           float64
	glitchShapes  bool
	sceneAdvance  bool

	last        time.Time
	inputEvents chan inputEvent
}

// New constructs the application. Audio capture is resolved here but
// the stream and display are only opened by Run.
func New(cfg Config) (*App, error) {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 30
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 1024
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", log.LstdFlags)
	}

	// one injectable source per stochastic subsystem so a fixed seed
	// reproduces a run
	seeded := func(offset int64) *rand.Rand {
		return rand.New(rand.NewSource(cfg.Seed + offset))
	}

	a := &App{
		cfg:        cfg,
		log:        cfg.Log,
		detector:   analyzer.NewBeatDetector(analyzer.BeatConfig{}),
		tracker:    analyzer.NewBandTracker(0),
		machine:    scene.New(seeded(1)),
		particles:  render.NewParticlePool(render.MaxParticles, seeded(2)),
		lasers:     render.NewLaserPool(render.MaxLasers, seeded(3)),
		background: render.NewBackground(cfg.Width, cfg.Height, 4, seeded(4)),
		glitch:     render.NewGlitch(cfg.Width, cfg.Height, cfg.GlitchEnabled, seeded(5)),
		canvas:     render.NewCanvas(cfg.Width, cfg.Height),
		presenter:  cfg.Presenter,
		palettes:   render.Palettes(cfg.UserPalette),
		prof:       newProfiler(cfg.ProfilePath, cfg.Log),
	}
	a.glitchShapes = cfg.GlitchEnabled

	if cfg.NoAudio {
		a.source = newFakeSource(cfg.BlockSize, seeded(6))
		a.log.Println("audio disabled, using synthetic generator")
	} else {
		capture, err := audio.NewCapture(audio.Config{
			DeviceIndex: cfg.DeviceIndex,
			DeviceName:  cfg.DeviceName,
			BlockSize:   cfg.BlockSize,
			SampleRate:  cfg.SampleRate,
			Channels:    2,
		})
		if err != nil {
			return nil, fmt.Errorf("audio capture: %w", err)
		}
		a.capture = capture
		a.source = capture
	}

	a.last = time.Now()
	return a, nil
}

// Run opens the capture stream and the display, then drives the
// pipeline at the target rate until the context is canceled, the
// presenter quits, or the user asks to stop. Teardown runs on every
// exit path.
func (a *App) Run(ctx context.Context) error {
	if a.capture != nil {
		if err := a.capture.Start(); err != nil {
			return err
		}
		defer func() {
			if err := a.capture.Stop(); err != nil {
				a.log.Printf("capture stop: %v", err)
			}
		}()
		if info := a.capture.Device(); info != nil {
			a.log.Printf("capturing %q @ %.0f Hz", info.Name, a.capture.SampleRate())
		}
	}

	if a.presenter == nil {
		presenter, err := a.openPresenter()
		if err != nil {
			return err
		}
		a.presenter = presenter
	}
	defer func() {
		if err := a.presenter.Close(); err != nil {
			a.log.Printf("presenter close: %v", err)
		}
	}()
	defer a.prof.Close()

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)

	frame := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	a.last = time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			switch evt {
			case inputEventQuit:
				return nil
			case inputEventScene:
				a.AdvanceScene()
			case inputEventGlitch:
				a.SetGlitchEnabled(!a.GlitchEnabled())
			case inputEventPalette:
				a.CyclePalette()
			}
		case <-ticker.C:
			if err := a.step(); err != nil {
				if errors.Is(err, render.ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (a *App) openPresenter() (render.Presenter, error) {
	if a.cfg.Windowed {
		return render.NewWindowPresenter(a.cfg.Width, a.cfg.Height, "vjing")
	}
	return render.NewTermPresenter(), nil
}

// step runs one tick of the pipeline: latest snapshot in, one
// composed frame out.
func (a *App) step() error {
	now := time.Now()
	delta := now.Sub(a.last).Seconds()
	if delta <= 0 {
		delta = 1.0 / a.cfg.TargetFPS
	}
	a.last = now
	a.prof.beginFrame()

	snap := a.source.Snapshot()
	beat := a.detector.Observe(snap.Loudness)
	raw := a.tracker.Observe(snap.Magnitudes)
	smoothed := a.tracker.Smoothed()

	pal, shapes, advance := a.takeControlState()
	if advance {
		a.machine.Advance()
	}
	a.machine.Update(beat)
	a.glitch.SetShapes(shapes)
	a.prof.markSection("analysis")

	lowAvg := analyzer.LowAverage(snap.Magnitudes)
	a.background.Step(a.canvas, snap.Loudness, lowAvg, smoothed, beat, pal)
	render.DrawBeatFlash(a.canvas, snap.Loudness, pal, float64(a.machine.Index())+a.background.Phase())
	a.prof.markSection("background")

	w, h := float64(a.canvas.W), float64(a.canvas.H)
	cx, cy := w/2, h/2
	maxRadius := w / 2
	if h < w {
		maxRadius = h / 2
	}
	maxRadius -= 20

	if beat {
		a.lasers.SpawnBurst(raw.Low, cx, cy, maxRadius)
	}
	a.particles.SpawnSpectral(snap.Magnitudes, cx, cy)
	a.particles.SpawnAmbient(raw, cx, cy)
	a.lasers.SpawnSpectral(snap.Magnitudes, cx, cy, maxRadius, pal)

	a.particles.Step(a.canvas)
	a.lasers.Step(a.canvas, a.machine.LaserGain(smoothed))
	a.prof.markSection("entities")

	a.glitch.Step(a.canvas, snap.Loudness, raw.High, pal)
	render.DrawRadialBars(a.canvas, snap.Magnitudes, a.background.Phase())
	render.DrawScanlines(a.canvas)
	a.prof.markSection("overlays")

	a.mu.Lock()
	a.lastBands = smoothed
	a.lastLoud = snap.Loudness
	a.lastBeat = beat
	a.lastScene = a.machine.Index()
	a.lastParticles = a.particles.Len()
	a.lastLasers = a.lasers.Len()
	a.fps = 1.0 / delta
	a.mu.Unlock()

	var err error
	if a.presenter != nil {
		err = a.presenter.Present(a.canvas, a.statusLine())
	}
	a.prof.markSection("present")
	a.prof.endFrame()
	return err
}

func (a *App) statusLine() string {
	a.mu.Lock()
	bands := a.lastBands
	loud := a.lastLoud
	fps := a.fps
	sceneIdx := a.lastScene
	palIdx := a.paletteIndex
	shapes := a.glitchShapes
	a.mu.Unlock()

	var b strings.Builder
	b.Grow(96)
	b.WriteString("scene=")
	b.WriteString(strconv.Itoa(sceneIdx))
	b.WriteString(" pal=")
	b.WriteString(strconv.Itoa(palIdx))
	b.WriteString(" | low ")
	appendFloat(&b, bands.Low, 2)
	b.WriteString(" mid ")
	appendFloat(&b, bands.Mid, 2)
	b.WriteString(" high ")
	appendFloat(&b, bands.High, 2)
	b.WriteString(" rms ")
	appendFloat(&b, loud, 3)
	b.WriteString(" fps ")
	appendFloat(&b, fps, 1)
	if shapes {
		b.WriteString(" [glitch]")
	}
	return b.String()
}

func appendFloat(b *strings.Builder, value float64, precision int) {
	var buf [24]byte
	b.Write(strconv.AppendFloat(buf[:0], value, 'f', precision, 64))
}

// takeControlState snapshots the pending control inputs for one tick
// and clears the one-shot scene advance request.
func (a *App) takeControlState() (pal render.Palette, shapes, advance bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pal = a.palettes[a.paletteIndex]
	shapes = a.glitchShapes
	advance = a.sceneAdvance
	a.sceneAdvance = false
	return pal, shapes, advance
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC || char == 'q' || char == 'Q':
				events <- inputEventQuit
				return
			case char == 's' || char == 'S':
				push(events, inputEventScene)
			case char == 'g' || char == 'G':
				push(events, inputEventGlitch)
			case char == 'p' || char == 'P':
				push(events, inputEventPalette)
			}
		}
	}()
}

func push(events chan inputEvent, evt inputEvent) {
	select {
	case events <- evt:
	default:
	}
}

// Control-server surface. These are safe to call from other
// goroutines while the loop runs.

// FPS returns the most recent measured frame rate.
func (a *App) FPS() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fps
}

// Bands returns the smoothed band shares of the last tick.
func (a *App) Bands() (low, mid, high float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastBands.Low, a.lastBands.Mid, a.lastBands.High
}

// Loudness returns the RMS loudness of the last tick.
func (a *App) Loudness() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastLoud
}

// BeatActive reports whether the last tick flagged a beat.
func (a *App) BeatActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastBeat
}

// SceneIndex returns the scene of the last rendered tick.
func (a *App) SceneIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastScene
}

// AdvanceScene requests a scene transition; the loop applies it at the
// next tick.
func (a *App) AdvanceScene() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sceneAdvance = true
}

// PaletteCount returns how many palettes are in rotation.
func (a *App) PaletteCount() int { return len(a.palettes) }

// PaletteIndex returns the active palette index.
func (a *App) PaletteIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paletteIndex
}

// SetPaletteIndex switches the active palette; out-of-range values
// are ignored.
func (a *App) SetPaletteIndex(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i >= 0 && i < len(a.palettes) {
		a.paletteIndex = i
	}
}

// CyclePalette advances to the next palette in rotation.
func (a *App) CyclePalette() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paletteIndex = (a.paletteIndex + 1) % len(a.palettes)
}

// GlitchEnabled reports whether the glitch shape overlay is on.
func (a *App) GlitchEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.glitchShapes
}

// SetGlitchEnabled toggles the glitch shape overlay.
func (a *App) SetGlitchEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.glitchShapes = on
}

// PoolSizes returns the live particle and laser counts of the last
// rendered tick.
func (a *App) PoolSizes() (particles, lasers int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastParticles, a.lastLasers
}
