// Package config provides configuration management for qss.
// It supports YAML configuration files, environment variables, and sensible
// defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/importer"
)

// Config represents the complete qss configuration.
type Config struct {
	// AWS configures credential profiles and regions.
	AWS AWSConfig `yaml:"aws"`

	// Export configures default export behavior.
	Export ExportConfig `yaml:"export"`

	// Import configures default import behavior.
	Import ImportConfig `yaml:"import"`

	// Output configures display preferences.
	Output OutputConfig `yaml:"output"`

	// Backup configures pre-overwrite backups.
	Backup BackupConfig `yaml:"backup"`
}

// AWSConfig holds credential and region settings.
type AWSConfig struct {
	// Profile is the default shared-config profile.
	Profile string `yaml:"profile,omitempty"`
	// Region overrides the profile's region.
	Region string `yaml:"region,omitempty"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// OutputDir is where bundle files are written.
	OutputDir string `yaml:"output_dir"`
	// Format is the bundle serialization format (json or yaml).
	Format string `yaml:"format"`
}

// ImportConfig holds import defaults.
type ImportConfig struct {
	// Strategy is the default conflict strategy (fail, overwrite, skip).
	Strategy string `yaml:"strategy"`
	// Suffix is appended to imported asset IDs and names.
	Suffix string `yaml:"suffix"`
	// SkipPublish leaves imported dashboards unpublished.
	SkipPublish bool `yaml:"skip_publish"`
	// Dashboard controls published dashboard behavior.
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DashboardConfig holds publish options and permission grants for the
// dashboard derived from an imported analysis.
type DashboardConfig struct {
	// AdHocFiltering allows viewers to add their own filters.
	AdHocFiltering bool `yaml:"ad_hoc_filtering"`
	// ExportToCSV allows viewers to export visual data.
	ExportToCSV bool `yaml:"export_to_csv"`
	// SheetControlsExpanded shows the sheet control pane expanded.
	SheetControlsExpanded bool `yaml:"sheet_controls_expanded"`
	// Grants overrides the permissions granted on imported dashboards.
	// When empty, the analysis permissions are reused.
	Grants []PermissionGrant `yaml:"grants,omitempty"`
}

// PermissionGrant names a principal and the actions granted to it.
type PermissionGrant struct {
	Principal string   `yaml:"principal"`
	Actions   []string `yaml:"actions"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never).
	Color string `yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose"`
}

// BackupConfig holds pre-overwrite backup settings.
type BackupConfig struct {
	// Enabled snapshots target assets before overwriting them.
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path.
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of snapshots kept per asset.
	MaxBackups int `yaml:"max_backups"`
}

// Dir returns the qss configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".qss")
	}
	return filepath.Join(home, ".config", "qss")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir: ".",
			Format:    string(bundle.FormatJSON),
		},
		Import: ImportConfig{
			Strategy: string(importer.StrategyFail),
			Suffix:   importer.DefaultSuffix,
			Dashboard: DashboardConfig{
				AdHocFiltering:        false,
				ExportToCSV:           true,
				SheetControlsExpanded: true,
			},
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   filepath.Join(Dir(), "backups"),
			MaxBackups: 10,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern QSS_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// AWS settings
	if v := os.Getenv("QSS_AWS_PROFILE"); v != "" {
		c.AWS.Profile = v
	}
	if v := os.Getenv("QSS_AWS_REGION"); v != "" {
		c.AWS.Region = v
	}

	// Export settings
	if v := os.Getenv("QSS_EXPORT_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("QSS_EXPORT_FORMAT"); v != "" {
		c.Export.Format = v
	}

	// Import settings
	if v := os.Getenv("QSS_IMPORT_STRATEGY"); v != "" {
		c.Import.Strategy = v
	}
	if v := os.Getenv("QSS_IMPORT_SUFFIX"); v != "" {
		c.Import.Suffix = v
	}
	if v := os.Getenv("QSS_IMPORT_SKIP_PUBLISH"); v != "" {
		c.Import.SkipPublish = parseBool(v)
	}

	// Output settings
	if v := os.Getenv("QSS_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("QSS_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	// Backup settings
	if v := os.Getenv("QSS_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("QSS_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("QSS_BACKUP_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// GetStrategy returns the import strategy from config, validating it.
func (c *Config) GetStrategy() importer.Strategy {
	strategy := importer.Strategy(c.Import.Strategy)
	if strategy.IsValid() {
		return strategy
	}
	return importer.StrategyFail
}

// GetFormat returns the export format from config, validating it.
func (c *Config) GetFormat() bundle.Format {
	format, err := bundle.ParseFormat(c.Export.Format)
	if err != nil {
		return bundle.FormatJSON
	}
	return format
}
