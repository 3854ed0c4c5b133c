package render

import "testing"

func TestClearAndAt(t *testing.T) {
	c := NewCanvas(8, 8)
	c.Clear(Color{R: 10, G: 20, B: 30})
	if got := c.At(3, 3); got != (Color{R: 10, G: 20, B: 30}) {
		t.Fatalf("At=%+v want={10 20 30}", got)
	}
	if got := c.At(-1, 100); got != (Color{}) {
		t.Fatalf("out of bounds read=%+v want black", got)
	}
}

func TestAdditiveBlendSaturates(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Clear(Color{R: 200, G: 200, B: 200})
	c.FillRect(0, 0, 4, 4, Color{R: 255, G: 255, B: 255}, 255, ModeAdd)
	if got := c.At(1, 1); got != (Color{R: 255, G: 255, B: 255}) {
		t.Fatalf("additive overflow: got %+v want white", got)
	}
}

func TestAlphaBlendMixes(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Clear(Color{})
	c.FillRect(0, 0, 2, 2, Color{R: 255}, 128, ModeAlpha)
	got := c.At(0, 0)
	if got.R < 120 || got.R > 135 {
		t.Fatalf("half-alpha red over black: R=%d want ≈128", got.R)
	}
	if got.G != 0 || got.B != 0 {
		t.Fatalf("alpha blend leaked into other channels: %+v", got)
	}
}

func TestFillRectClips(t *testing.T) {
	c := NewCanvas(4, 4)
	// must not panic or write out of range
	c.FillRect(-10, -10, 100, 100, Color{R: 1}, 255, ModeOpaque)
	if got := c.At(3, 3); got.R != 1 {
		t.Fatalf("clipped fill missed in-bounds pixel: %+v", got)
	}
}

func TestStrokeLineDrawsEndpoints(t *testing.T) {
	c := NewCanvas(16, 16)
	c.StrokeLine(2, 2, 12, 12, Color{G: 255}, 1, 255, ModeOpaque)
	if c.At(2, 2).G != 255 || c.At(12, 12).G != 255 {
		t.Fatal("line endpoints not drawn")
	}
}

func TestBlitRectWithTint(t *testing.T) {
	src := NewCanvas(4, 4)
	src.Clear(Color{R: 100, G: 100, B: 100})
	dst := NewCanvas(4, 4)
	red := Color{R: 255}
	dst.BlitRect(src, 0, 0, 4, 4, 0, 0, 255, ModeOpaque, &red)
	got := dst.At(1, 1)
	if got.R != 100 || got.G != 0 || got.B != 0 {
		t.Fatalf("red tint: got %+v want {100 0 0}", got)
	}
}

func TestBlitRotoZoomIdentity(t *testing.T) {
	src := NewCanvas(8, 8)
	src.FillRect(2, 2, 4, 4, Color{B: 255}, 255, ModeOpaque)
	dst := NewCanvas(8, 8)
	dst.BlitRotoZoom(src, 0, 1.0, 255, ModeOpaque)
	if got := dst.At(3, 3); got.B != 255 {
		t.Fatalf("identity rotozoom moved pixels: %+v", got)
	}
}
