package render

import "math"

// Color is an 8-bit RGB triple. Alpha is carried separately by the
// draw calls so the framebuffer itself stays opaque.
type Color struct {
	R, G, B uint8
}

// Mode selects how a draw call combines with the framebuffer.
type Mode int

const (
	// ModeOpaque replaces the destination.
	ModeOpaque Mode = iota
	// ModeAlpha blends source over destination by the call's alpha.
	ModeAlpha
	// ModeAdd adds the alpha-scaled source, saturating at white.
	ModeAdd
)

// Canvas is a software RGBA framebuffer. Pix is laid out row-major,
// 4 bytes per pixel in R,G,B,A order, which matches SDL's streaming
// ABGR8888 texture format on little-endian machines.
type Canvas struct {
	W, H int
	Pix  []uint8
}

// NewCanvas allocates a black opaque canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{W: w, H: h, Pix: make([]uint8, w*h*4)}
	c.Clear(Color{})
	return c
}

// Clear fills the whole canvas with an opaque color.
func (c *Canvas) Clear(col Color) {
	for i := 0; i < len(c.Pix); i += 4 {
		c.Pix[i] = col.R
		c.Pix[i+1] = col.G
		c.Pix[i+2] = col.B
		c.Pix[i+3] = 255
	}
}

// CopyFrom copies another canvas of the same dimensions.
func (c *Canvas) CopyFrom(src *Canvas) {
	copy(c.Pix, src.Pix)
}

// Clone returns a deep copy.
func (c *Canvas) Clone() *Canvas {
	dst := &Canvas{W: c.W, H: c.H, Pix: make([]uint8, len(c.Pix))}
	copy(dst.Pix, c.Pix)
	return dst
}

// At returns the pixel color at (x, y); out of bounds reads black.
func (c *Canvas) At(x, y int) Color {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return Color{}
	}
	i := (y*c.W + x) * 4
	return Color{R: c.Pix[i], G: c.Pix[i+1], B: c.Pix[i+2]}
}

func (c *Canvas) put(x, y int, col Color, alpha uint8, mode Mode) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	i := (y*c.W + x) * 4
	switch mode {
	case ModeOpaque:
		c.Pix[i] = col.R
		c.Pix[i+1] = col.G
		c.Pix[i+2] = col.B
	case ModeAlpha:
		a := uint32(alpha)
		na := 255 - a
		c.Pix[i] = uint8((uint32(col.R)*a + uint32(c.Pix[i])*na) / 255)
		c.Pix[i+1] = uint8((uint32(col.G)*a + uint32(c.Pix[i+1])*na) / 255)
		c.Pix[i+2] = uint8((uint32(col.B)*a + uint32(c.Pix[i+2])*na) / 255)
	case ModeAdd:
		a := uint32(alpha)
		c.Pix[i] = addSat(c.Pix[i], uint32(col.R)*a/255)
		c.Pix[i+1] = addSat(c.Pix[i+1], uint32(col.G)*a/255)
		c.Pix[i+2] = addSat(c.Pix[i+2], uint32(col.B)*a/255)
	}
}

func addSat(dst uint8, add uint32) uint8 {
	v := uint32(dst) + add
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// FillRect draws an axis-aligned rectangle. Coordinates are clipped.
func (c *Canvas) FillRect(x, y, w, h int, col Color, alpha uint8, mode Mode) {
	x0, y0 := clampInt(x, 0, c.W), clampInt(y, 0, c.H)
	x1, y1 := clampInt(x+w, 0, c.W), clampInt(y+h, 0, c.H)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			c.put(xx, yy, col, alpha, mode)
		}
	}
}

// FillEllipse draws a filled ellipse centered at (cx, cy).
func (c *Canvas) FillEllipse(cx, cy, rx, ry int, col Color, alpha uint8, mode Mode) {
	if rx <= 0 || ry <= 0 {
		return
	}
	rx2 := float64(rx * rx)
	ry2 := float64(ry * ry)
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if float64(dx*dx)/rx2+float64(dy*dy)/ry2 <= 1.0 {
				c.put(cx+dx, cy+dy, col, alpha, mode)
			}
		}
	}
}

// FillCircle draws a filled circle centered at (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r int, col Color, alpha uint8, mode Mode) {
	c.FillEllipse(cx, cy, r, r, col, alpha, mode)
}

// StrokeLine draws a line of the given width by stamping a round
// brush along the segment.
func (c *Canvas) StrokeLine(x1, y1, x2, y2 int, col Color, width int, alpha uint8, mode Mode) {
	if width < 1 {
		width = 1
	}
	r := width / 2

	dx := x2 - x1
	dy := y2 - y1
	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		c.stamp(x1, y1, r, col, alpha, mode)
		return
	}
	fx := float64(dx) / float64(steps)
	fy := float64(dy) / float64(steps)
	for i := 0; i <= steps; i++ {
		x := x1 + int(math.Round(fx*float64(i)))
		y := y1 + int(math.Round(fy*float64(i)))
		c.stamp(x, y, r, col, alpha, mode)
	}
}

// stamp writes a round brush print. Consecutive stamps overlap, which
// brightens additive strokes toward their core.
func (c *Canvas) stamp(cx, cy, r int, col Color, alpha uint8, mode Mode) {
	if r <= 0 {
		c.put(cx, cy, col, alpha, mode)
		return
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= rr {
				c.put(cx+dx, cy+dy, col, alpha, mode)
			}
		}
	}
}

// BlitRect copies a rectangle from src to (dx, dy). A non-nil tint
// multiplies the source channels before blending, which is how the
// glitch pass gets its red echo slices.
func (c *Canvas) BlitRect(src *Canvas, sx, sy, w, h, dx, dy int, alpha uint8, mode Mode, tint *Color) {
	for yy := 0; yy < h; yy++ {
		sYY := sy + yy
		dYY := dy + yy
		if sYY < 0 || sYY >= src.H || dYY < 0 || dYY >= c.H {
			continue
		}
		for xx := 0; xx < w; xx++ {
			sXX := sx + xx
			dXX := dx + xx
			if sXX < 0 || sXX >= src.W || dXX < 0 || dXX >= c.W {
				continue
			}
			col := src.At(sXX, sYY)
			if tint != nil {
				col = Color{
					R: uint8(uint32(col.R) * uint32(tint.R) / 255),
					G: uint8(uint32(col.G) * uint32(tint.G) / 255),
					B: uint8(uint32(col.B) * uint32(tint.B) / 255),
				}
			}
			c.put(dXX, dYY, col, alpha, mode)
		}
	}
}

// BlitRotoZoom samples src rotated by angle (radians) and scaled by
// zoom, centered on the destination center. Nearest-neighbor with
// inverse mapping; out-of-range samples are skipped so the layer
// below shows through at the corners.
func (c *Canvas) BlitRotoZoom(src *Canvas, angle, zoom float64, alpha uint8, mode Mode) {
	if zoom <= 0 {
		return
	}
	sin, cos := math.Sincos(-angle)
	inv := 1.0 / zoom
	dcx, dcy := float64(c.W)/2, float64(c.H)/2
	scx, scy := float64(src.W)/2, float64(src.H)/2

	for y := 0; y < c.H; y++ {
		ry := (float64(y) - dcy) * inv
		for x := 0; x < c.W; x++ {
			rx := (float64(x) - dcx) * inv
			sx := int(rx*cos - ry*sin + scx)
			sy := int(rx*sin + ry*cos + scy)
			if sx < 0 || sy < 0 || sx >= src.W || sy >= src.H {
				continue
			}
			c.put(x, y, src.At(sx, sy), alpha, mode)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
