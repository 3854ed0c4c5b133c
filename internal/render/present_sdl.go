//go:build sdl

package render

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLPresenter shows frames in a window through a streaming texture.
type SDLPresenter struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
	title    string
	closed   bool
}

// NewWindowPresenter opens an SDL window of the given pixel size.
func NewWindowPresenter(width, height int, title string) (Presenter, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("init sdl video: %w", err)
	}

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		_ = window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	_ = renderer.SetLogicalSize(int32(width), int32(height))

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width), int32(height),
	)
	if err != nil {
		renderer.Destroy()
		_ = window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create texture: %w", err)
	}

	return &SDLPresenter{
		window:   window,
		renderer: renderer,
		texture:  texture,
		width:    width,
		height:   height,
	}, nil
}

// Present uploads the canvas (RGBA byte order matches ABGR8888 on
// little-endian) and flips. A window close event surfaces as ErrQuit.
func (p *SDLPresenter) Present(frame *Canvas, status string) error {
	if p.closed {
		return ErrQuit
	}
	if status != "" && status != p.title {
		p.window.SetTitle(status)
		p.title = status
	}

	if err := p.texture.Update(nil, frame.Pix, frame.W*4); err != nil {
		return err
	}
	if err := p.renderer.Clear(); err != nil {
		return err
	}
	if err := p.renderer.Copy(p.texture, nil, nil); err != nil {
		return err
	}
	p.renderer.Present()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return ErrQuit
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_q {
				return ErrQuit
			}
		}
	}
	return nil
}

// Close tears down the window and the video subsystem. Idempotent.
func (p *SDLPresenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.texture != nil {
		_ = p.texture.Destroy()
	}
	if p.renderer != nil {
		_ = p.renderer.Destroy()
	}
	if p.window != nil {
		_ = p.window.Destroy()
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}
