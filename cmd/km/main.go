package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/keymatrix/internal/datasource"
	_ "github.com/vanderheijden86/keymatrix/internal/ttyguard"
	"github.com/vanderheijden86/keymatrix/pkg/analysis"
	"github.com/vanderheijden86/keymatrix/pkg/config"
	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/export"
	"github.com/vanderheijden86/keymatrix/pkg/keywordapi"
	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
	"github.com/vanderheijden86/keymatrix/pkg/ui"
	"github.com/vanderheijden86/keymatrix/pkg/version"
	"github.com/vanderheijden86/keymatrix/pkg/watcher"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	configPath   string
	api          string
	data         string
	cache        string
	preset       string
	selected     int
	snapshot     string
	report       string
	robotLayout  bool
	exportWizard bool
	addKeyword   bool
	showMetrics  bool
	version      bool
	help         bool
}

func parseFlags(args []string, errOut io.Writer) (cliFlags, *flag.FlagSet, error) {
	var f cliFlags
	fs := flag.NewFlagSet("km", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&f.configPath, "config", "", "Path to config.yaml (default: XDG config dir)")
	fs.StringVar(&f.api, "api", "", "Keyword API base URL; \"off\" disables the API")
	fs.StringVar(&f.data, "data", "", "Local keyword JSON file (live reloaded)")
	fs.StringVar(&f.cache, "cache", "", "SQLite cache path; \"off\" disables the cache")
	fs.StringVar(&f.preset, "preset", "", "Layout preset: golden or zoned")
	fs.IntVar(&f.selected, "select", 0, "Keyword ID to highlight on start")
	fs.StringVar(&f.snapshot, "snapshot", "", "Write a PNG or SVG snapshot of the globe and exit")
	fs.StringVar(&f.report, "report", "", "Write a Markdown network report and exit")
	fs.BoolVar(&f.robotLayout, "robot-layout", false, "Print the globe layout as JSON and exit")
	fs.BoolVar(&f.exportWizard, "export-wizard", false, "Choose an export interactively")
	fs.BoolVar(&f.addKeyword, "add-keyword", false, "Create a keyword through the API interactively")
	fs.BoolVar(&f.showMetrics, "metrics", false, "Print timing metrics on exit")
	fs.BoolVar(&f.version, "version", false, "Show version")
	fs.BoolVar(&f.help, "help", false, "Show help")
	err := fs.Parse(args)
	return f, fs, err
}

// applyFlags layers command line overrides on top of the file config.
func applyFlags(cfg config.Config, f cliFlags) config.Config {
	if f.api != "" {
		cfg.API.BaseURL = f.api
	}
	if f.data != "" {
		cfg.Data.File = f.data
	}
	if f.cache != "" {
		cfg.Data.Cache = f.cache
	}
	if f.preset != "" {
		cfg.Globe.Preset = f.preset
	}
	if strings.EqualFold(cfg.API.BaseURL, "off") {
		cfg.API.BaseURL = ""
	}
	if strings.EqualFold(cfg.Data.Cache, "off") {
		cfg.Data.Cache = ""
	}
	return cfg
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newClient(cfg config.Config) *keywordapi.Client {
	if cfg.API.BaseURL == "" {
		return nil
	}
	return keywordapi.NewClient(cfg.API.BaseURL, keywordapi.WithTimeout(cfg.API.Timeout))
}

func newLoader(cfg config.Config, client *keywordapi.Client) *datasource.Loader {
	opts := datasource.Options{File: cfg.Data.File, Cache: cfg.Data.Cache}
	if client != nil {
		opts.API = client
	}
	return datasource.NewLoader(opts)
}

// loadMatrix runs the loader once, bounded by the init timeout.
func loadMatrix(cfg config.Config, loader *datasource.Loader) (model.Matrix, []datasource.Attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.InitTimeout)
	defer cancel()
	return loader.Load(ctx)
}

// buildScene lays out m the same way the viewer does.
func buildScene(cfg config.Config, m model.Matrix) (*scene.Context, layout.Preset, error) {
	preset, err := layout.ParsePreset(cfg.Globe.Preset)
	if err != nil {
		return nil, "", err
	}
	sc := scene.NewContext(scene.Options{
		Radius:         cfg.Globe.Radius,
		CameraDistance: cfg.Camera.Distance,
		FOV:            cfg.Camera.FOV,
		MaxConnections: cfg.Globe.MaxConnections,
	})
	if err := sc.LoadLayout(m.Keywords, preset, cfg.Globe.Seed); err != nil {
		return nil, "", err
	}
	return sc, preset, nil
}

func runRobotLayout(w io.Writer, cfg config.Config, m model.Matrix, now time.Time) error {
	sc, preset, err := buildScene(cfg, m)
	if err != nil {
		return err
	}
	defer sc.Dispose()
	return export.WriteLayoutJSON(w, export.NewLayoutDump(sc, preset, m.Source, now))
}

func runSnapshot(path, title string, cfg config.Config, m model.Matrix) error {
	sc, _, err := buildScene(cfg, m)
	if err != nil {
		return err
	}
	defer sc.Dispose()
	stats := analysis.NewAnalyzer(m.Keywords, analysis.Options{}).Analyze()
	return export.SaveSnapshot(export.SnapshotOptions{
		Path:      path,
		Title:     title,
		MaxLabels: cfg.Render.MaxLabels,
		Scene:     sc,
		Stats:     &stats,
	})
}

func runReport(path, title string, m model.Matrix) error {
	stats := analysis.NewAnalyzer(m.Keywords, analysis.Options{}).Analyze()
	return export.SaveReport(path, m, stats, title)
}

func runExport(wc *export.WizardConfig, cfg config.Config, m model.Matrix) error {
	if wc.MaxLabels > 0 {
		cfg.Render.MaxLabels = wc.MaxLabels
	}
	switch wc.Kind {
	case export.KindReport:
		return runReport(wc.Path, wc.Title, m)
	default:
		return runSnapshot(wc.Path, wc.Title, cfg, m)
	}
}

func reportAttempts(w io.Writer, attempts []datasource.Attempt) {
	for _, a := range attempts {
		debug.Log("datasource: %s", a)
		if !a.OK() {
			fmt.Fprintf(w, "Note: %s\n", a)
		}
	}
}

func main() {
	f, fs, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if f.help {
		fmt.Println("Usage: km [options]")
		fmt.Println("")
		fmt.Println("Interactive terminal globe of the keyword matrix.")
		fmt.Println("")
		fmt.Println("Options:")
		fs.SetOutput(os.Stdout)
		fs.PrintDefaults()
		os.Exit(0)
	}

	if f.version {
		fmt.Printf("km %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	cfg = applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		os.Exit(2)
	}
	if f.showMetrics {
		defer printMetrics(os.Stderr)
	}

	client := newClient(cfg)

	if f.addKeyword {
		if client == nil {
			fmt.Fprintln(os.Stderr, "Error: --add-keyword needs the keyword API (--api)")
			os.Exit(2)
		}
		if err := runAddKeyword(client); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	loader := newLoader(cfg, client)

	if f.robotLayout || f.snapshot != "" || f.report != "" || f.exportWizard {
		var wc *export.WizardConfig
		if f.exportWizard {
			wc, err = export.NewWizard().Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export cancelled: %v\n", err)
				os.Exit(1)
			}
		}

		m, attempts := loadMatrix(cfg, loader)
		reportAttempts(os.Stderr, attempts)

		switch {
		case f.robotLayout:
			err = runRobotLayout(os.Stdout, cfg, m, time.Now())
		case wc != nil:
			err = runExport(wc, cfg, m)
			if err == nil {
				fmt.Printf("Exported %s to %s\n", wc.Kind, wc.Path)
			}
		default:
			if f.snapshot != "" {
				err = runSnapshot(f.snapshot, "Keyword Matrix", cfg, m)
				if err == nil {
					fmt.Printf("Snapshot written to %s\n", f.snapshot)
				}
			}
			if err == nil && f.report != "" {
				err = runReport(f.report, "Keyword Matrix", m)
				if err == nil {
					fmt.Printf("Report written to %s\n", f.report)
				}
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := ui.CheckTerminal(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Use --snapshot, --report or --robot-layout when not on a terminal.")
		os.Exit(1)
	}

	var w *watcher.Watcher
	if cfg.Data.File != "" {
		w, err = watcher.New(cfg.Data.File,
			watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
			w = nil
		}
	}

	opts := ui.Options{
		Config:      cfg,
		Loader:      loader,
		Watcher:     w,
		SelectedID:  f.selected,
		SnapshotDir: snapshotDir(),
	}
	if client != nil {
		opts.Dependencies = client
	}
	m := ui.NewModel(opts)
	defer m.Stop()

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running keyword viewer: %v\n", err)
		os.Exit(1)
	}
}

// snapshotDir is where the `s` key writes PNGs.
func snapshotDir() string {
	if dir := os.Getenv("KM_SNAPSHOT_DIR"); dir != "" {
		return dir
	}
	if dir := config.StateDir(); dir != "" {
		return filepath.Join(dir, "snapshots")
	}
	return "."
}

func printMetrics(w io.Writer) {
	for _, s := range metrics.AllTimingStats() {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-16s n=%-6d avg=%.2fms max=%.2fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
	fmt.Fprintf(w, "%-16s %d\n", metrics.FetchFallbacks.Name(), metrics.FetchFallbacks.Value())
	fmt.Fprintf(w, "%-16s %d\n", metrics.CacheHits.Name(), metrics.CacheHits.Value())
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set KM_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("KM_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
