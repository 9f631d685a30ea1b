package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/importer"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Import.Strategy != "fail" {
		t.Errorf("default strategy = %q, want fail", cfg.Import.Strategy)
	}
	if cfg.Import.Suffix != "-imported" {
		t.Errorf("default suffix = %q, want -imported", cfg.Import.Suffix)
	}
	if cfg.Export.Format != "json" {
		t.Errorf("default format = %q, want json", cfg.Export.Format)
	}
	if !cfg.Backup.Enabled {
		t.Error("backups disabled by default")
	}
	if !cfg.Import.Dashboard.ExportToCSV || !cfg.Import.Dashboard.SheetControlsExpanded {
		t.Error("dashboard publish defaults changed")
	}
	if cfg.Import.Dashboard.AdHocFiltering {
		t.Error("ad hoc filtering enabled by default")
	}
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
import:
  strategy: overwrite
  suffix: "-stage"
  dashboard:
    export_to_csv: false
export:
  format: yaml
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Import.Strategy != "overwrite" {
		t.Errorf("strategy = %q, want overwrite", cfg.Import.Strategy)
	}
	if cfg.Import.Suffix != "-stage" {
		t.Errorf("suffix = %q, want -stage", cfg.Import.Suffix)
	}
	if cfg.Export.Format != "yaml" {
		t.Errorf("format = %q, want yaml", cfg.Export.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Backup.MaxBackups != 10 {
		t.Errorf("max backups = %d, want default 10", cfg.Backup.MaxBackups)
	}
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("QSS_AWS_PROFILE", "staging")
	t.Setenv("QSS_IMPORT_STRATEGY", "skip")
	t.Setenv("QSS_IMPORT_SUFFIX", "-copy")
	t.Setenv("QSS_OUTPUT_VERBOSE", "yes")
	t.Setenv("QSS_BACKUP_ENABLED", "false")
	t.Setenv("QSS_BACKUP_MAX", "3")

	cfg := Default()
	cfg.applyEnvironment()

	if cfg.AWS.Profile != "staging" {
		t.Errorf("profile = %q, want staging", cfg.AWS.Profile)
	}
	if cfg.Import.Strategy != "skip" {
		t.Errorf("strategy = %q, want skip", cfg.Import.Strategy)
	}
	if cfg.Import.Suffix != "-copy" {
		t.Errorf("suffix = %q, want -copy", cfg.Import.Suffix)
	}
	if !cfg.Output.Verbose {
		t.Error("verbose not applied")
	}
	if cfg.Backup.Enabled {
		t.Error("backup enabled override not applied")
	}
	if cfg.Backup.MaxBackups != 3 {
		t.Errorf("max backups = %d, want 3", cfg.Backup.MaxBackups)
	}
}

func TestGetStrategy_FallsBackOnInvalid(t *testing.T) {
	cfg := Default()
	cfg.Import.Strategy = "merge"
	if got := cfg.GetStrategy(); got != importer.StrategyFail {
		t.Errorf("GetStrategy() = %q, want fail", got)
	}

	cfg.Import.Strategy = "overwrite"
	if got := cfg.GetStrategy(); got != importer.StrategyOverwrite {
		t.Errorf("GetStrategy() = %q, want overwrite", got)
	}
}

func TestGetFormat_FallsBackOnInvalid(t *testing.T) {
	cfg := Default()
	cfg.Export.Format = "toml"
	if got := cfg.GetFormat(); got != bundle.FormatJSON {
		t.Errorf("GetFormat() = %q, want json", got)
	}
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Import.Strategy = "skip"
	cfg.Import.Dashboard.Grants = []PermissionGrant{
		{Principal: "arn:aws:quicksight:us-east-1:123456789012:user/default/bob", Actions: []string{"quicksight:DescribeDashboard"}},
	}
	if err := cfg.SaveToPath(path); err != nil {
		t.Fatalf("SaveToPath() error = %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if got.Import.Strategy != "skip" {
		t.Errorf("strategy = %q, want skip", got.Import.Strategy)
	}
	if len(got.Import.Dashboard.Grants) != 1 || got.Import.Dashboard.Grants[0].Actions[0] != "quicksight:DescribeDashboard" {
		t.Errorf("grants lost in round trip: %+v", got.Import.Dashboard.Grants)
	}
}
