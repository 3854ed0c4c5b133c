package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	fgCodes [256]string
	bgCodes [256]string
)

func init() {
	for i := range fgCodes {
		fgCodes[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
		bgCodes[i] = "\x1b[48;5;" + strconv.Itoa(i) + "m"
	}
}

// TermPresenter renders frames as ANSI half-block art on stdout.
// Each terminal cell shows two vertically stacked frame samples via
// the upper-half-block glyph, foreground for the top sample and
// background for the bottom one.
type TermPresenter struct {
	cols, rows int
	builder    strings.Builder
	closed     bool
}

// NewTermPresenter enters the alternate screen and hides the cursor.
func NewTermPresenter() *TermPresenter {
	p := &TermPresenter{cols: 80, rows: 24}
	p.refreshSize()
	fmt.Print("\x1b[?1049h\x1b[?25l\x1b[2J")
	return p
}

func (p *TermPresenter) refreshSize() {
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
		p.cols = w
		p.rows = h
	}
}

// Present downsamples the frame to the terminal grid and writes it.
func (p *TermPresenter) Present(frame *Canvas, status string) error {
	if p.closed {
		return ErrQuit
	}
	p.refreshSize()

	rows := p.rows
	if status != "" && rows > 1 {
		rows--
	}

	b := &p.builder
	b.Reset()
	b.Grow(p.cols * rows * 16)
	b.WriteString("\x1b[H")

	for row := 0; row < rows; row++ {
		lastFg, lastBg := -1, -1
		for col := 0; col < p.cols; col++ {
			top := p.sample(frame, col, row*2, rows*2)
			bot := p.sample(frame, col, row*2+1, rows*2)
			fg := ansi256(top)
			bg := ansi256(bot)
			if fg != lastFg {
				b.WriteString(fgCodes[fg])
				lastFg = fg
			}
			if bg != lastBg {
				b.WriteString(bgCodes[bg])
				lastBg = bg
			}
			b.WriteRune('▀')
		}
		b.WriteString("\x1b[0m\n")
	}
	if status != "" {
		if len(status) > p.cols {
			status = status[:p.cols]
		}
		b.WriteString(status)
	}

	_, err := os.Stdout.WriteString(b.String())
	return err
}

// sample maps a terminal grid position onto the frame.
func (p *TermPresenter) sample(frame *Canvas, col, halfRow, halfRows int) Color {
	x := col * frame.W / p.cols
	y := halfRow * frame.H / halfRows
	return frame.At(x, y)
}

// Close restores the terminal. Safe to call more than once.
func (p *TermPresenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	fmt.Print("\x1b[0m\x1b[?25h\x1b[?1049l")
	return nil
}

// ansi256 maps an RGB color onto the xterm 256-color palette: the
// grayscale ramp for near-gray colors, the 6x6x6 cube otherwise.
func ansi256(c Color) int {
	r, g, b := int(c.R), int(c.G), int(c.B)
	if absInt(r-g) < 6 && absInt(g-b) < 6 {
		gray := (r*23 + 127) / 255
		return 232 + gray
	}
	ri := (r*5 + 127) / 255
	gi := (g*5 + 127) / 255
	bi := (b*5 + 127) / 255
	return 16 + 36*ri + 6*gi + bi
}
