package ui

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// CheckTerminal reports ErrRenderInit when out is not a terminal or is too
// small to draw the globe in. Size errors can be retried after a resize.
func CheckTerminal(out *os.File) error {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("%w: %s is not a terminal", ErrRenderInit, out.Name())
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderInit, err)
	}
	if w < MinWidth || h < MinHeight {
		return fmt.Errorf("%w: terminal is %dx%d, need at least %dx%d", ErrRenderInit, w, h, MinWidth, MinHeight)
	}
	return nil
}
