package export

import (
	"os"
	"testing"
)

func TestWizardConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     WizardConfig
		wantErr bool
	}{
		{"png snapshot", WizardConfig{Kind: KindSnapshot, Path: "out/globe.png"}, false},
		{"svg snapshot", WizardConfig{Kind: KindSnapshot, Path: "globe.SVG"}, false},
		{"markdown report", WizardConfig{Kind: KindReport, Path: "report.md"}, false},
		{"snapshot as md", WizardConfig{Kind: KindSnapshot, Path: "report.md"}, true},
		{"report as png", WizardConfig{Kind: KindReport, Path: "globe.png"}, true},
		{"missing path", WizardConfig{Kind: KindReport}, true},
		{"unknown kind", WizardConfig{Kind: "pdf", Path: "x.pdf"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewWizardDefaultsAreValid(t *testing.T) {
	w := NewWizard()
	if err := w.Config().Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}
	for _, kind := range []string{KindSnapshot, KindReport} {
		c := WizardConfig{Kind: kind, Path: DefaultExportPath(kind)}
		if err := c.Validate(); err != nil {
			t.Errorf("default path for %s invalid: %v", kind, err)
		}
	}
}

func TestWizardConfigSaveLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := LoadWizardConfig()
	if err != nil || got != nil {
		t.Fatalf("expected nothing saved yet, got %+v, %v", got, err)
	}

	want := &WizardConfig{Kind: KindReport, Path: "r.md", Title: "Weekly"}
	if err := SaveWizardConfig(want); err != nil {
		t.Fatalf("SaveWizardConfig: %v", err)
	}
	if _, err := os.Stat(WizardConfigPath()); err != nil {
		t.Fatalf("expected saved file: %v", err)
	}
	got, err = LoadWizardConfig()
	if err != nil {
		t.Fatalf("LoadWizardConfig: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
