package main_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

var kmBinaryPath string
var kmBinaryDir string

var (
	scriptTUISupported      = true
	scriptTUIDisabledReason string
)

func TestMain(m *testing.M) {
	os.Setenv("KM_TEST_MODE", "1")

	// Build the binary once for all tests
	if err := buildKmOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build km binary: %v\n", err)
		os.Exit(1)
	}

	scriptTUISupported, scriptTUIDisabledReason = detectScriptTUICapability(kmBinaryPath)

	code := m.Run()
	if kmBinaryDir != "" {
		_ = os.RemoveAll(kmBinaryDir)
	}
	os.Exit(code)
}

func detectScriptTUICapability(kmPath string) (bool, string) {
	if _, err := exec.LookPath("script"); err != nil {
		return false, "script command not available"
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return false, "script TUI harness unsupported on this OS"
	}
	if kmPath == "" {
		return false, "km binary path is empty"
	}

	tempDir, err := os.MkdirTemp("", "km-e2e-tui-cap-*")
	if err != nil {
		return false, fmt.Sprintf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	data := filepath.Join(tempDir, "keywords.json")
	if err := os.WriteFile(data, []byte(`[{"id":1,"name":"Capability","subcategory":"A-1"}]`), 0o644); err != nil {
		return false, fmt.Sprintf("failed to write keywords.json: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cmd := scriptTUICommand(ctx, kmPath, "--api", "off", "--cache", "off", "--data", data)
	if cmd == nil {
		return false, "script command unavailable"
	}
	cmd.Dir = tempDir
	cmd.Env = kmEnv(tempDir, "TERM=xterm-256color", "KM_TUI_AUTOCLOSE_MS=250")

	outFile := filepath.Join(tempDir, "script.out")
	f, err := os.Create(outFile)
	if err != nil {
		return false, fmt.Sprintf("failed to create output file: %v", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f

	runErr := cmd.Run()
	_ = f.Close()

	if ctx.Err() == context.DeadlineExceeded {
		return false, "km did not auto-exit under script (PTY/CI mismatch)"
	}
	if runErr != nil {
		return false, fmt.Sprintf("script TUI run failed: %v", runErr)
	}

	return true, ""
}

func buildKmOnce() error {
	tempDir, err := os.MkdirTemp("", "km-e2e-build-*")
	if err != nil {
		return err
	}
	kmBinaryDir = tempDir

	binName := "km"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(tempDir, binName)

	cmd := exec.Command("go", "build", "-o", binPath, "../../cmd/km")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build failed: %v\n%s", err, out)
	}

	kmBinaryPath = binPath
	return nil
}

// buildKmBinary returns the path to the pre-built binary.
func buildKmBinary(t *testing.T) string {
	t.Helper()
	if kmBinaryPath == "" {
		t.Fatal("km binary not built")
	}
	return kmBinaryPath
}

// kmEnv isolates config and state under dir so a developer's saved
// config or cache never leaks into a run.
func kmEnv(dir string, extra ...string) []string {
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "config"),
		"XDG_STATE_HOME="+filepath.Join(dir, "state"),
	)
	return append(env, extra...)
}

// writeKeywords writes a keyword data file into dir and returns its path.
func writeKeywords(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "keywords.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write keywords: %v", err)
	}
	return path
}

// runKm runs the binary offline against the given data file and returns
// stdout. stderr is included in the failure message.
func runKm(t *testing.T, km, dir, data string, args ...string) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	full := []string{"--api", "off", "--cache", "off"}
	if data != "" {
		full = append(full, "--data", data)
	}
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, km, full...)
	cmd.Dir = dir
	cmd.Env = kmEnv(dir)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		t.Fatalf("km %v timed out", args)
	}
	if err != nil {
		t.Fatalf("km %v failed: %v\nstderr: %s", args, err, stderr.String())
	}
	return out
}

// skipIfNoScript skips the test if the script command is unavailable.
func skipIfNoScript(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("script"); err != nil {
		t.Skip("skipping: script command not available")
	}
	if !scriptTUISupported {
		if scriptTUIDisabledReason != "" {
			t.Skipf("skipping: %s", scriptTUIDisabledReason)
		}
		t.Skip("skipping: script-based TUI harness unavailable")
	}
}

// scriptTUICommand creates an exec.Cmd that runs km under `script`
// to provide a pseudo-TTY for TUI tests.
func scriptTUICommand(ctx context.Context, kmPath string, args ...string) *exec.Cmd {
	if _, err := exec.LookPath("script"); err != nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		scriptArgs := []string{"-q", "/dev/null", kmPath}
		scriptArgs = append(scriptArgs, args...)
		return exec.CommandContext(ctx, "script", scriptArgs...)

	case "linux":
		cmdStr := kmPath
		for _, arg := range args {
			if strings.ContainsAny(arg, " \t") {
				cmdStr += " \"" + arg + "\""
			} else {
				cmdStr += " " + arg
			}
		}
		return exec.CommandContext(ctx, "script", "-q", "-e", "-f", "-c", cmdStr, "/dev/null")

	default:
		return nil
	}
}
