package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Log("hello %d", 1)
	LogTiming("op", time.Millisecond)
	LogEnterExit("fn")()

	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("loaded %d keywords", 442)
	LogIf(false, "skipped")
	LogIf(true, "kept")
	LogEnterExit("layout")()

	out := buf.String()
	for _, want := range []string{"loaded 442 keywords", "kept", "-> layout", "<- layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) should not write")
	}
}
