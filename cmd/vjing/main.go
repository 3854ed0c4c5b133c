package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/comangin/vjing/internal/app"
	"github.com/comangin/vjing/internal/audio"
	"github.com/comangin/vjing/internal/render"
	"github.com/comangin/vjing/internal/web"
)

func main() {
	var (
		deviceIndex = flag.Int("device", -1, "PortAudio device index (-1 = auto)")
		deviceName  = flag.String("audio-device", "", "PortAudio device name (substring match, overrides -device)")
		listDevs    = flag.Bool("list-devices", false, "List audio devices and exit")
		blockSize   = flag.Int("block-size", 1024, "Analysis block size in frames (power of two recommended)")
		sampleRate  = flag.Float64("sample-rate", 0, "Capture sample rate (0 = device default)")
		width       = flag.Int("width", 800, "Frame width in pixels")
		height      = flag.Int("height", 600, "Frame height in pixels")
		targetFPS   = flag.Float64("fps", 30, "Target frames per second")
		noAudio     = flag.Bool("no-audio", false, "Run with synthetic audio (for testing)")
		windowed    = flag.Bool("windowed", false, "Open an SDL window instead of rendering to the terminal")
		glitch      = flag.Bool("glitch", false, "Enable the glitch shape overlay at startup")
		primary     = flag.String("primary", "", "Primary palette color as hex (e.g. #ff2a6d)")
		secondary   = flag.String("secondary", "", "Secondary palette color as hex")
		background  = flag.String("background", "", "Background palette color as hex")
		webPort     = flag.Int("web-port", 0, "Remote control port (0 = disabled)")
		seed        = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		profilePath = flag.String("profile", "", "Write per-frame timing CSV to this path")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[vjing] ", log.LstdFlags)

	if *width <= 0 || *height <= 0 {
		logger.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}
	if *targetFPS <= 0 {
		logger.Fatalf("fps must be positive (got %.2f)", *targetFPS)
	}
	if *blockSize <= 0 {
		logger.Fatalf("block-size must be positive (got %d)", *blockSize)
	}

	userPalette, err := parsePaletteFlags(*primary, *secondary, *background)
	if err != nil {
		logger.Fatalf("palette: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	needAudio := !*noAudio || *listDevs
	if needAudio {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("portaudio init: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		devices, err := audio.ListDevices()
		if err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		fmt.Printf("\n=== Audio Devices ===\n\n")
		for _, dev := range devices {
			if dev.MaxInput == 0 {
				continue
			}
			marker := ""
			if dev.IsDefaultInput {
				marker = " (default input)"
			}
			fmt.Printf("[%d] %s [%s]%s\n    inputs:%d outputs:%d sample:%.0f Hz\n",
				dev.Index, dev.Name, dev.HostAPI, marker, dev.MaxInput, dev.MaxOutput, dev.DefaultSampleHz)
		}
		return
	}

	a, err := app.New(app.Config{
		DeviceIndex:   *deviceIndex,
		DeviceName:    *deviceName,
		BlockSize:     *blockSize,
		SampleRate:    *sampleRate,
		Width:         *width,
		Height:        *height,
		TargetFPS:     *targetFPS,
		NoAudio:       *noAudio,
		Windowed:      *windowed,
		GlitchEnabled: *glitch,
		UserPalette:   userPalette,
		ProfilePath:   *profilePath,
		Seed:          *seed,
		Log:           logger,
	})
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}

	if *webPort > 0 {
		server := web.NewServer(a, logger)
		go func() {
			if err := server.Start(*webPort); err != nil {
				logger.Printf("web server: %v", err)
			}
		}()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr)
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}
}

// parsePaletteFlags builds an override palette when all three color
// flags are set. Setting only some is an error so a half-specified
// palette never silently mixes with a builtin one.
func parsePaletteFlags(primary, secondary, background string) (*render.Palette, error) {
	set := 0
	for _, s := range []string{primary, secondary, background} {
		if s != "" {
			set++
		}
	}
	if set == 0 {
		return nil, nil
	}
	if set != 3 {
		return nil, fmt.Errorf("need all of -primary, -secondary and -background, got %d of 3", set)
	}

	var pal render.Palette
	for i, s := range []string{primary, secondary, background} {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		pal[i] = render.Color{R: r, G: g, B: b}
	}
	return &pal, nil
}
