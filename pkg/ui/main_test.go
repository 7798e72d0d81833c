package ui

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Keep config and state lookups away from the developer's home.
	dir, err := os.MkdirTemp("", "km-ui-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_CONFIG_HOME", dir)
	os.Setenv("XDG_STATE_HOME", dir)
	os.Setenv("KM_FORCE_POLL", "1")

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}
