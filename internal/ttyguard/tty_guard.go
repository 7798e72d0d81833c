// Package ttyguard keeps terminal capability probes out of headless output.
//
// Import it for side effects from a main package:
//
//	import _ "github.com/vanderheijden86/keymatrix/internal/ttyguard"
package ttyguard

import (
	"os"
	"strings"
)

// init runs before Bubble Tea or lipgloss touch the terminal.
//
// Lipgloss/termenv background detection writes OSC/DSR queries to stdout.
// In a real terminal they are invisible, but they corrupt the JSON from
// --robot-layout and anything piped out of --snapshot or --report. Setting
// CI=1 makes termenv skip the probes.
func init() {
	if os.Getenv("CI") != "" {
		return
	}

	if !shouldSuppressTTYQueries(os.Args, os.Getenv("KM_ROBOT") == "1", os.Getenv("KM_TEST_MODE") != "") {
		return
	}

	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envRobot, envTest bool) bool {
	if envRobot || envTest {
		return true
	}

	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if strings.HasPrefix(name, "robot-") {
			return true
		}
		switch name {
		case "version", "help", "snapshot", "report":
			return true
		}
	}

	return false
}
