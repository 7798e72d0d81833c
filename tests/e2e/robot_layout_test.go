package main_test

import (
	"bytes"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

const threeKeywords = `[
  {"id":1,"name":"Resilience","subcategory":"A-1","dependencies":[2]},
  {"id":2,"name":"Curiosity","subcategory":"A-1"},
  {"id":3,"name":"Empathy","subcategory":"B-2","status":"inactive"}
]`

type layoutPayload struct {
	Source string  `json:"source"`
	Preset string  `json:"preset"`
	Radius float64 `json:"radius"`
	Count  int     `json:"count"`
	Nodes  []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Color    string `json:"color"`
		Position [3]float64 `json:"position"`
	} `json:"nodes"`
}

func TestRobotLayoutContract(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := writeKeywords(t, dir, threeKeywords)

	out := runKm(t, km, dir, data, "--robot-layout")

	var payload layoutPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("robot-layout is not JSON: %v\n%s", err, out)
	}
	if payload.Source != "file" {
		t.Errorf("source = %q, want file", payload.Source)
	}
	if payload.Count != 3 || len(payload.Nodes) != 3 {
		t.Fatalf("count = %d, nodes = %d, want 3", payload.Count, len(payload.Nodes))
	}
	for _, n := range payload.Nodes {
		p := n.Position
		r := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		if math.Abs(r-payload.Radius) > 1e-6 {
			t.Errorf("node %d at radius %.6f, want %.6f", n.ID, r, payload.Radius)
		}
		if !strings.HasPrefix(n.Color, "#") {
			t.Errorf("node %d color %q is not hex", n.ID, n.Color)
		}
	}
}

func TestRobotLayoutDeterministic(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := writeKeywords(t, dir, threeKeywords)

	var a, b layoutPayload
	if err := json.Unmarshal(runKm(t, km, dir, data, "--robot-layout"), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(runKm(t, km, dir, data, "--robot-layout"), &b); err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes {
		if a.Nodes[i].Position != b.Nodes[i].Position {
			t.Fatalf("node %d moved between runs: %+v vs %+v", a.Nodes[i].ID, a.Nodes[i].Position, b.Nodes[i].Position)
		}
	}
}

func TestRobotLayoutZonedPreset(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := writeKeywords(t, dir, threeKeywords)

	var payload layoutPayload
	if err := json.Unmarshal(runKm(t, km, dir, data, "--robot-layout", "--preset", "zoned"), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Preset != "zoned" {
		t.Errorf("preset = %q, want zoned", payload.Preset)
	}
}

// With no API, cache or data file the fallback sample set is laid out.
func TestRobotLayoutFallback(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()

	var payload layoutPayload
	if err := json.Unmarshal(runKm(t, km, dir, "", "--robot-layout"), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Source != "fallback" {
		t.Errorf("source = %q, want fallback", payload.Source)
	}
	if payload.Count == 0 {
		t.Error("fallback layout is empty")
	}
}

// Robot output must be pure JSON: no terminal probes ahead of it.
func TestRobotLayoutNoEscapeSequences(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := writeKeywords(t, dir, threeKeywords)

	out := runKm(t, km, dir, data, "--robot-layout")
	if bytes.Contains(out, []byte("\x1b")) {
		t.Fatalf("robot-layout output contains escape sequences: %q", out[:min(len(out), 80)])
	}
	if len(out) == 0 || out[0] != '{' {
		t.Fatalf("robot-layout output does not start with '{': %q", out[:min(len(out), 20)])
	}
}

func TestInvalidDataFileFallsBack(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(data, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var payload layoutPayload
	if err := json.Unmarshal(runKm(t, km, dir, data, "--robot-layout"), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Source != "fallback" {
		t.Errorf("source = %q, want fallback", payload.Source)
	}
}

func TestVersionFlag(t *testing.T) {
	km := buildKmBinary(t)
	out, err := exec.Command(km, "--version").CombinedOutput()
	if err != nil {
		t.Fatalf("--version failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(string(out), "km v") {
		t.Errorf("--version = %q", out)
	}
}

func TestBadPresetExitsNonZero(t *testing.T) {
	km := buildKmBinary(t)
	dir := t.TempDir()
	data := writeKeywords(t, dir, threeKeywords)

	cmd := exec.Command(km, "--api", "off", "--cache", "off", "--data", data, "--robot-layout", "--preset", "spiral")
	cmd.Env = kmEnv(dir)
	if err := cmd.Run(); err == nil {
		t.Fatal("expected a non-zero exit for an unknown preset")
	}
}
