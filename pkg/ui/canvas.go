package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type cell struct {
	ch   rune
	fg   string // hex color; empty draws in the terminal default
	bold bool
	cont bool // right half of a wide rune
}

type styleKey struct {
	fg   string
	bold bool
}

// Canvas is a fixed grid of terminal cells that the globe is painted into
// before being flattened into one styled string.
type Canvas struct {
	w, h   int
	cells  []cell
	styles map[styleKey]lipgloss.Style
}

// NewCanvas returns a blank w×h canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{styles: make(map[styleKey]lipgloss.Style)}
	c.Resize(w, h)
	return c
}

// Resize changes the canvas size and clears it.
func (c *Canvas) Resize(w, h int) {
	c.w, c.h = max(w, 0), max(h, 0)
	c.cells = make([]cell, c.w*c.h)
	c.Clear()
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
	}
}

func (c *Canvas) in(x, y int) bool { return x >= 0 && y >= 0 && x < c.w && y < c.h }

// Set writes one rune at (x, y). Wide runes occupy two cells and are dropped
// when they would not fit. Overwriting half of a wide rune blanks the other
// half.
func (c *Canvas) Set(x, y int, r rune, fg string, bold bool) int {
	rw := runewidth.RuneWidth(r)
	if rw <= 0 || !c.in(x, y) || (rw == 2 && !c.in(x+1, y)) {
		return 0
	}
	c.release(x, y)
	if rw == 2 {
		c.release(x+1, y)
	}
	c.cells[y*c.w+x] = cell{ch: r, fg: fg, bold: bold}
	if rw == 2 {
		c.cells[y*c.w+x+1] = cell{cont: true}
	}
	return rw
}

// release blanks whatever wide rune currently overlaps (x, y).
func (c *Canvas) release(x, y int) {
	i := y*c.w + x
	cur := c.cells[i]
	switch {
	case cur.cont && x > 0:
		c.cells[i-1] = cell{ch: ' '}
	case runewidth.RuneWidth(cur.ch) == 2 && x+1 < c.w:
		c.cells[i+1] = cell{ch: ' '}
	}
	c.cells[i] = cell{ch: ' '}
}

// Text writes s starting at (x, y), clipped at the right edge. It returns the
// number of cells written.
func (c *Canvas) Text(x, y int, s, fg string, bold bool) int {
	written := 0
	for _, r := range s {
		n := c.Set(x+written, y, r, fg, bold)
		if n == 0 {
			break
		}
		written += n
	}
	return written
}

// At returns the rune drawn at (x, y), or 0 outside the canvas or for the
// right half of a wide rune.
func (c *Canvas) At(x, y int) rune {
	if !c.in(x, y) || c.cells[y*c.w+x].cont {
		return 0
	}
	return c.cells[y*c.w+x].ch
}

// Plain returns the canvas without styling, one line per row.
func (c *Canvas) Plain() string {
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			if cl := c.cells[y*c.w+x]; !cl.cont {
				sb.WriteRune(cl.ch)
			}
		}
	}
	return sb.String()
}

// Render flattens the canvas into styled lines. Runs of cells sharing a
// color are styled together to keep the escape sequence count low.
func (c *Canvas) Render(r *lipgloss.Renderer) string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		var key styleKey
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if key.fg == "" && !key.bold {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(c.style(r, key).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			if cl.cont {
				continue
			}
			k := styleKey{fg: cl.fg, bold: cl.bold}
			if cl.ch == ' ' {
				k = styleKey{}
			}
			if k != key {
				flush()
				key = k
			}
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return sb.String()
}

func (c *Canvas) style(r *lipgloss.Renderer, k styleKey) lipgloss.Style {
	if s, ok := c.styles[k]; ok {
		return s
	}
	s := r.NewStyle().Bold(k.bold)
	if k.fg != "" {
		s = s.Foreground(NodeFg(k.fg))
	}
	c.styles[k] = s
	return s
}
