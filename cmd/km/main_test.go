package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/internal/datasource"
	"github.com/vanderheijden86/keymatrix/pkg/config"
	"github.com/vanderheijden86/keymatrix/pkg/export"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/testutil"
)

func testConfig(t *testing.T, dataFile string) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = ""
	cfg.Data.Cache = ""
	cfg.Data.File = dataFile
	return cfg
}

func loadFixture(t *testing.T) (config.Config, model.Matrix) {
	t.Helper()
	ks := testutil.QuickStar(4)
	path := testutil.WriteKeywordsFile(t, t.TempDir(), ks)
	cfg := testConfig(t, path)
	m, attempts := loadMatrix(cfg, newLoader(cfg, nil))
	if m.Source != model.SourceFile {
		t.Fatalf("expected file source, got %q (%v)", m.Source, attempts)
	}
	return cfg, m
}

func TestParseFlags(t *testing.T) {
	f, _, err := parseFlags([]string{"--api", "http://x:1", "--preset", "zoned", "--robot-layout", "--select", "7"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.api != "http://x:1" || f.preset != "zoned" || !f.robotLayout || f.selected != 7 {
		t.Errorf("unexpected flags: %+v", f)
	}
	if _, _, err := parseFlags([]string{"--nope"}, io.Discard); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.Cache = "/tmp/cache.db"

	got := applyFlags(cfg, cliFlags{api: "http://api:9", data: "kw.json", preset: "zoned"})
	if got.API.BaseURL != "http://api:9" || got.Data.File != "kw.json" || got.Globe.Preset != "zoned" {
		t.Errorf("flags not applied: %+v", got)
	}
	if got.Data.Cache != "/tmp/cache.db" {
		t.Errorf("expected config cache kept, got %q", got.Data.Cache)
	}

	got = applyFlags(cfg, cliFlags{api: "off", cache: "OFF"})
	if got.API.BaseURL != "" || got.Data.Cache != "" {
		t.Errorf("expected off to disable api and cache, got %q %q", got.API.BaseURL, got.Data.Cache)
	}
	if newClient(got) != nil {
		t.Error("expected no client without a base URL")
	}
}

func TestRobotLayoutOutputsJSON(t *testing.T) {
	cfg, m := loadFixture(t)
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := runRobotLayout(&buf, cfg, m, now); err != nil {
		t.Fatalf("runRobotLayout: %v", err)
	}
	var dump export.LayoutDump
	if err := json.Unmarshal(buf.Bytes(), &dump); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if dump.Count != 5 || len(dump.Nodes) != 5 {
		t.Errorf("expected 5 nodes, got %d/%d", dump.Count, len(dump.Nodes))
	}
	if dump.Source != model.SourceFile || dump.Preset != "golden" {
		t.Errorf("unexpected dump header: %+v", dump)
	}
}

func TestRobotLayoutRejectsBadPreset(t *testing.T) {
	cfg, m := loadFixture(t)
	cfg.Globe.Preset = "cubic"
	if err := runRobotLayout(io.Discard, cfg, m, time.Now()); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestSnapshotAndReport(t *testing.T) {
	cfg, m := loadFixture(t)
	dir := t.TempDir()

	png := filepath.Join(dir, "globe.png")
	if err := runSnapshot(png, "Test", cfg, m); err != nil {
		t.Fatalf("runSnapshot: %v", err)
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty snapshot, got %v", err)
	}

	md := filepath.Join(dir, "report.md")
	if err := runReport(md, "Test Report", m); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	data, err := os.ReadFile(md)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Test Report") {
		t.Error("expected report title in markdown")
	}

	svg := filepath.Join(dir, "globe.svg")
	if err := runExport(&export.WizardConfig{Kind: export.KindSnapshot, Path: svg, MaxLabels: 2}, cfg, m); err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if _, err := os.Stat(svg); err != nil {
		t.Errorf("expected svg export: %v", err)
	}
}

func TestReportAttemptsPrintsFailures(t *testing.T) {
	var buf bytes.Buffer
	reportAttempts(&buf, []datasource.Attempt{
		{Source: model.SourceFile, Path: "missing.json", Err: os.ErrNotExist},
		{Source: model.SourceFallback, Keywords: 5},
	})
	out := buf.String()
	if !strings.Contains(out, "missing.json") {
		t.Errorf("expected failed attempt in output, got %q", out)
	}
	if strings.Contains(out, "fallback") {
		t.Errorf("expected successful attempts to stay quiet, got %q", out)
	}
}

func TestKeywordFormToInput(t *testing.T) {
	in, err := keywordForm{Name: "  curiosity ", Subcategory: "A-2", Weight: "7.5", Active: true}.toInput()
	if err != nil {
		t.Fatalf("toInput: %v", err)
	}
	if *in.Name != "curiosity" || *in.Subcategory != "A-2" || *in.Weight != 7.5 || !*in.IsActive {
		t.Errorf("unexpected input: %+v", in)
	}

	in, err = keywordForm{Name: "x", Subcategory: "B-1"}.toInput()
	if err != nil || in.Weight != nil {
		t.Errorf("expected optional weight omitted, got %+v, %v", in, err)
	}

	bad := []keywordForm{
		{Name: " ", Subcategory: "A-1"},
		{Name: "x"},
		{Name: "x", Subcategory: "A-1", Weight: "heavy"},
		{Name: "x", Subcategory: "A-1", Weight: "11"},
	}
	for _, f := range bad {
		if _, err := f.toInput(); err == nil {
			t.Errorf("expected error for %+v", f)
		}
	}
}

func TestSubcategoryOptions(t *testing.T) {
	if len(subcategoryOptions()) == 0 {
		t.Error("expected subcategory options")
	}
}
