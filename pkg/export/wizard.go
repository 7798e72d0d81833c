package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/keymatrix/pkg/config"
)

// Export kinds offered by the wizard.
const (
	KindSnapshot = "snapshot"
	KindReport   = "report"
)

// WizardConfig holds the answers collected by the export wizard.
type WizardConfig struct {
	Kind      string `json:"kind"` // "snapshot" or "report"
	Path      string `json:"path"`
	Title     string `json:"title,omitempty"`
	MaxLabels int    `json:"max_labels,omitempty"`
}

// Validate checks that the output path suits the export kind.
func (c WizardConfig) Validate() error {
	if c.Path == "" {
		return errors.New("output path is required")
	}
	ext := strings.ToLower(filepath.Ext(c.Path))
	switch c.Kind {
	case KindSnapshot:
		if ext != ".png" && ext != ".svg" {
			return fmt.Errorf("snapshot path must end in .png or .svg, got %q", c.Path)
		}
	case KindReport:
		if ext != ".md" && ext != ".markdown" {
			return fmt.Errorf("report path must end in .md, got %q", c.Path)
		}
	default:
		return fmt.Errorf("unknown export kind %q", c.Kind)
	}
	return nil
}

// DefaultExportPath returns the suggested output file for kind.
func DefaultExportPath(kind string) string {
	if kind == KindReport {
		return "keywords-report.md"
	}
	return "keywords-globe.png"
}

// Wizard walks the user through choosing an export.
type Wizard struct {
	config *WizardConfig
}

// NewWizard creates a wizard seeded with defaults.
func NewWizard() *Wizard {
	return &Wizard{
		config: &WizardConfig{
			Kind:  KindSnapshot,
			Path:  DefaultExportPath(KindSnapshot),
			Title: "Keyword Matrix",
		},
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive flow and saves the answers for next time.
func (w *Wizard) Run() (*WizardConfig, error) {
	saved, err := LoadWizardConfig()
	if err == nil && saved != nil && saved.Validate() == nil {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.config, nil
		}
	}

	if err := w.collectKind(); err != nil {
		return nil, err
	}
	if err := w.collectOutput(); err != nil {
		return nil, err
	}
	if err := w.config.Validate(); err != nil {
		return nil, err
	}
	if err := SaveWizardConfig(w.config); err != nil {
		// Not fatal; the export itself can still run.
		fmt.Fprintf(os.Stderr, "Warning: could not save export settings: %v\n", err)
	}
	return w.config, nil
}

// Config returns the collected configuration.
func (w *Wizard) Config() *WizardConfig {
	return w.config
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Previous export settings:")
	fmt.Printf("  Kind:  %s\n", saved.Kind)
	fmt.Printf("  Path:  %s\n", saved.Path)
	if saved.Title != "" {
		fmt.Printf("  Title: %s\n", saved.Title)
	}
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export again with these settings?").
				Value(&useSaved).
				Affirmative("Yes").
				Negative("No, reconfigure"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return useSaved, nil
}

func (w *Wizard) collectKind() error {
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to export?").
				Options(
					huh.NewOption("Globe snapshot (PNG or SVG)", KindSnapshot),
					huh.NewOption("Network report (Markdown)", KindReport),
				).
				Value(&w.config.Kind),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if w.config.Validate() != nil {
		w.config.Path = DefaultExportPath(w.config.Kind)
	}
	return nil
}

func (w *Wizard) collectOutput() error {
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&w.config.Path).
				Validate(func(s string) error {
					c := *w.config
					c.Path = strings.TrimSpace(s)
					return c.Validate()
				}),
			huh.NewInput().
				Title("Title").
				Value(&w.config.Title),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	w.config.Path = strings.TrimSpace(w.config.Path)
	return nil
}

// WizardConfigPath returns the path to the saved wizard answers.
func WizardConfigPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig loads previously saved answers. It returns nil, nil when
// nothing was saved yet.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig saves answers for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
