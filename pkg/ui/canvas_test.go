package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSetAndAt(t *testing.T) {
	cv := NewCanvas(6, 2)
	if n := cv.Set(1, 0, 'a', "#FF0000", false); n != 1 {
		t.Fatalf("expected 1 cell written, got %d", n)
	}
	if got := cv.At(1, 0); got != 'a' {
		t.Errorf("expected 'a', got %q", got)
	}
	if n := cv.Set(9, 0, 'x', "", false); n != 0 {
		t.Errorf("expected out-of-bounds write to be dropped, got %d", n)
	}
	if got := cv.At(-1, 0); got != 0 {
		t.Errorf("expected 0 outside canvas, got %q", got)
	}
}

func TestCanvasWideRunes(t *testing.T) {
	cv := NewCanvas(4, 1)
	if n := cv.Set(0, 0, '日', "", false); n != 2 {
		t.Fatalf("expected wide rune to take 2 cells, got %d", n)
	}
	if cv.At(1, 0) != 0 {
		t.Error("expected right half of wide rune to read as 0")
	}
	// Writing over the right half blanks the left half.
	cv.Set(1, 0, 'x', "", false)
	if got := cv.Plain(); got != " x  " {
		t.Errorf("expected %q, got %q", " x  ", got)
	}
	// A wide rune at the last column does not fit.
	if n := cv.Set(3, 0, '日', "", false); n != 0 {
		t.Errorf("expected clipped wide rune, got %d", n)
	}
}

func TestCanvasTextClips(t *testing.T) {
	cv := NewCanvas(5, 2)
	if n := cv.Text(2, 1, "hello", "", true); n != 3 {
		t.Errorf("expected 3 cells written, got %d", n)
	}
	want := "     \n  hel"
	if got := cv.Plain(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	cv.Clear()
	if strings.TrimSpace(cv.Plain()) != "" {
		t.Error("expected blank canvas after Clear")
	}
}

func TestCanvasResize(t *testing.T) {
	cv := NewCanvas(3, 3)
	cv.Set(0, 0, 'a', "", false)
	cv.Resize(4, 2)
	if w, h := cv.Size(); w != 4 || h != 2 {
		t.Fatalf("expected 4x2, got %dx%d", w, h)
	}
	if cv.At(0, 0) != ' ' {
		t.Error("expected resize to clear the canvas")
	}
	cv.Resize(-1, 2)
	if w, _ := cv.Size(); w != 0 {
		t.Errorf("expected negative width clamped to 0, got %d", w)
	}
}

func TestCanvasRenderKeepsText(t *testing.T) {
	cv := NewCanvas(8, 2)
	cv.Text(0, 0, "ab", "#3B82F6", false)
	cv.Text(4, 1, "cd", "#FF6B35", true)
	out := cv.Render(lipgloss.NewRenderer(io.Discard))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[1], "cd") {
		t.Errorf("rendered canvas lost text: %q", out)
	}
	if len(cv.styles) != 2 {
		t.Errorf("expected 2 cached styles, got %d", len(cv.styles))
	}
}
