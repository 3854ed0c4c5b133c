//go:build !sdl

package render

import "errors"

// NewWindowPresenter is unavailable without the sdl build tag.
func NewWindowPresenter(width, height int, title string) (Presenter, error) {
	return nil, errors.New("windowed output not enabled; rebuild with -tags sdl")
}
