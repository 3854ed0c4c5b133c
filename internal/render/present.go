package render

import "errors"

// ErrQuit is returned by a Presenter when the display surface asked
// the application to exit (window close, terminal teardown).
var ErrQuit = errors.New("presenter requested quit")

// Presenter shows completed frames. The engine composes into a
// Canvas and hands it over once per tick; the presenter owns the
// actual display surface.
type Presenter interface {
	// Present shows the frame. The canvas is only valid for the
	// duration of the call.
	Present(frame *Canvas, status string) error
	// Close releases the display surface. Idempotent.
	Close() error
}
