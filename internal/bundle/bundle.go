// Package bundle defines the portable on-disk snapshot of a QuickSight
// analysis and its dependency closure, and the codecs that make the
// QuickSight SDK's tagged-union types JSON- and YAML-serializable.
package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"gopkg.in/yaml.v3"

	"github.com/dimkharitonov/quicksightsync/internal/model"
)

// Format represents the serialization format of a bundle file.
type Format string

const (
	// FormatJSON stores the bundle as pretty-printed JSON.
	FormatJSON Format = "json"
	// FormatYAML stores the bundle as YAML.
	FormatYAML Format = "yaml"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	default:
		return ".json"
	}
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported bundle format %q (valid: json, yaml)", s)
	}
	return format, nil
}

// Manifest records where and when a bundle was exported.
type Manifest struct {
	SourceAccount string    `json:"SourceAccount" yaml:"SourceAccount"`
	SourceRegion  string    `json:"SourceRegion" yaml:"SourceRegion"`
	Tool          string    `json:"Tool" yaml:"Tool"`
	ToolVersion   string    `json:"ToolVersion" yaml:"ToolVersion"`
	ExportedAt    time.Time `json:"ExportedAt" yaml:"ExportedAt"`
}

// Analysis is the portable snapshot of a QuickSight analysis.
type Analysis struct {
	AnalysisID  string                     `json:"AnalysisId" yaml:"AnalysisId"`
	Name        string                     `json:"Name" yaml:"Name"`
	ThemeARN    string                     `json:"ThemeArn,omitempty" yaml:"ThemeArn,omitempty"`
	Definition  *types.AnalysisDefinition  `json:"Definition" yaml:"Definition"`
	Permissions []types.ResourcePermission `json:"Permissions,omitempty" yaml:"Permissions,omitempty"`
}

// DatasetIDs returns the unique dataset IDs referenced by the analysis
// definition's DataSetIdentifierDeclarations.
func (a *Analysis) DatasetIDs() []string {
	if a.Definition == nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, decl := range a.Definition.DataSetIdentifierDeclarations {
		id := model.IDFromARN(aws.ToString(decl.DataSetArn))
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Dataset is the portable snapshot of a QuickSight dataset. The physical
// and logical table maps hold codec documents rather than SDK union values
// so the snapshot survives a JSON or YAML round trip.
type Dataset struct {
	DataSetID                 string                              `json:"DataSetId" yaml:"DataSetId"`
	Name                      string                              `json:"Name" yaml:"Name"`
	PhysicalTableMap          map[string]PhysicalTableDocument    `json:"PhysicalTableMap" yaml:"PhysicalTableMap"`
	LogicalTableMap           map[string]LogicalTableDocument     `json:"LogicalTableMap,omitempty" yaml:"LogicalTableMap,omitempty"`
	ImportMode                types.DataSetImportMode             `json:"ImportMode" yaml:"ImportMode"`
	Permissions               []types.ResourcePermission          `json:"Permissions,omitempty" yaml:"Permissions,omitempty"`
	RowLevelPermissionDataSet *types.RowLevelPermissionDataSet    `json:"RowLevelPermissionDataSet,omitempty" yaml:"RowLevelPermissionDataSet,omitempty"`
	UsageConfiguration        *types.DataSetUsageConfiguration    `json:"DataSetUsageConfiguration,omitempty" yaml:"DataSetUsageConfiguration,omitempty"`
}

// DataSourceIDs returns the unique data source IDs referenced by the
// dataset's physical tables.
func (d *Dataset) DataSourceIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, table := range d.PhysicalTableMap {
		arn := table.DataSourceARN()
		if arn == "" {
			continue
		}
		id := model.IDFromARN(arn)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// RLSDatasetID returns the ID of the row-level-security dataset this
// dataset references, or an empty string.
func (d *Dataset) RLSDatasetID() string {
	if d.RowLevelPermissionDataSet == nil {
		return ""
	}
	return model.IDFromARN(aws.ToString(d.RowLevelPermissionDataSet.Arn))
}

// LogicalDatasetIDs returns dataset IDs referenced by logical table
// sources (composite datasets built on other datasets).
func (d *Dataset) LogicalDatasetIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, table := range d.LogicalTableMap {
		if table.Source == nil || table.Source.DataSetArn == nil {
			continue
		}
		id := model.IDFromARN(aws.ToString(table.Source.DataSetArn))
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// DataSource is the portable snapshot of a QuickSight data source.
// Credentials are deliberately never part of a bundle.
type DataSource struct {
	DataSourceID            string                         `json:"DataSourceId" yaml:"DataSourceId"`
	Name                    string                         `json:"Name" yaml:"Name"`
	Type                    types.DataSourceType           `json:"Type" yaml:"Type"`
	Parameters              *DataSourceParametersDocument  `json:"DataSourceParameters,omitempty" yaml:"DataSourceParameters,omitempty"`
	SslProperties           *types.SslProperties           `json:"SslProperties,omitempty" yaml:"SslProperties,omitempty"`
	VpcConnectionProperties *types.VpcConnectionProperties `json:"VpcConnectionProperties,omitempty" yaml:"VpcConnectionProperties,omitempty"`
	Permissions             []types.ResourcePermission     `json:"Permissions,omitempty" yaml:"Permissions,omitempty"`
}

// Theme is the portable snapshot of a custom theme.
type Theme struct {
	ThemeID       string                     `json:"ThemeId" yaml:"ThemeId"`
	Name          string                     `json:"Name" yaml:"Name"`
	BaseThemeID   string                     `json:"BaseThemeId" yaml:"BaseThemeId"`
	Configuration *types.ThemeConfiguration  `json:"Configuration" yaml:"Configuration"`
	Permissions   []types.ResourcePermission `json:"Permissions,omitempty" yaml:"Permissions,omitempty"`
}

// Bundle is the complete portable snapshot of one analysis and every asset
// it depends on. The section layout mirrors the dump the tool produces:
// data sources feed datasets, security datasets gate analysis datasets,
// themes style the analysis.
type Bundle struct {
	Manifest         Manifest     `json:"manifest" yaml:"manifest"`
	Analysis         Analysis     `json:"analysis" yaml:"analysis"`
	AnalysisDatasets []Dataset    `json:"analysis_datasets" yaml:"analysis_datasets"`
	SecurityDatasets []Dataset    `json:"security_datasets,omitempty" yaml:"security_datasets,omitempty"`
	DataSources      []DataSource `json:"datasources" yaml:"datasources"`
	Themes           []Theme      `json:"themes,omitempty" yaml:"themes,omitempty"`
}

// Datasets returns security datasets followed by analysis datasets.
func (b *Bundle) Datasets() []Dataset {
	out := make([]Dataset, 0, len(b.SecurityDatasets)+len(b.AnalysisDatasets))
	out = append(out, b.SecurityDatasets...)
	out = append(out, b.AnalysisDatasets...)
	return out
}

// DashboardID returns the ID the importer uses for the dashboard derived
// from the bundled analysis.
func (b *Bundle) DashboardID() string {
	return b.Analysis.AnalysisID + "-dashboard"
}

// Refs flattens the bundle into asset references with dependencies, for
// ordering and validation. The derived dashboard is included so ordering
// places it after the analysis.
func (b *Bundle) Refs() []model.AssetRef {
	themeIDs := make(map[string]bool)
	for _, theme := range b.Themes {
		themeIDs[theme.ThemeID] = true
	}

	var refs []model.AssetRef

	for _, ds := range b.DataSources {
		refs = append(refs, model.AssetRef{
			ID:   ds.DataSourceID,
			Type: model.TypeDataSource,
			Name: ds.Name,
		})
	}

	for _, theme := range b.Themes {
		refs = append(refs, model.AssetRef{
			ID:   theme.ThemeID,
			Type: model.TypeTheme,
			Name: theme.Name,
		})
	}

	for _, ds := range b.Datasets() {
		deps := ds.DataSourceIDs()
		deps = append(deps, ds.LogicalDatasetIDs()...)
		if rls := ds.RLSDatasetID(); rls != "" {
			deps = append(deps, rls)
		}
		refs = append(refs, model.AssetRef{
			ID:           ds.DataSetID,
			Type:         model.TypeDataset,
			Name:         ds.Name,
			Dependencies: deps,
		})
	}

	analysisDeps := b.Analysis.DatasetIDs()
	if themeID := model.IDFromARN(b.Analysis.ThemeARN); themeID != "" && themeIDs[themeID] {
		analysisDeps = append(analysisDeps, themeID)
	}
	refs = append(refs, model.AssetRef{
		ID:           b.Analysis.AnalysisID,
		Type:         model.TypeAnalysis,
		Name:         b.Analysis.Name,
		Dependencies: analysisDeps,
	})

	refs = append(refs, model.AssetRef{
		ID:           b.DashboardID(),
		Type:         model.TypeDashboard,
		Name:         b.Analysis.Name,
		Dependencies: []string{b.Analysis.AnalysisID},
	})

	return refs
}

// Write serializes the bundle to w in the given format.
func (b *Bundle) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(b)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(b); err != nil {
			_ = encoder.Close()
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported bundle format: %s", format)
	}
}

// WriteFile serializes the bundle to path, inferring the format from the
// extension when format is empty.
func (b *Bundle) WriteFile(path string, format Format) error {
	if format == "" {
		format = formatForPath(path)
	}
	f, err := os.Create(path) // #nosec G304 - path chosen by the operator
	if err != nil {
		return fmt.Errorf("failed to create bundle file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := b.Write(f, format); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// Read deserializes a bundle from r in the given format.
func Read(r io.Reader, format Format) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var b Bundle
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &b)
	case FormatYAML:
		err = yaml.Unmarshal(data, &b)
	default:
		return nil, fmt.Errorf("unsupported bundle format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &b, nil
}

// ReadFile deserializes a bundle from path, inferring the format from the
// extension.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path) // #nosec G304 - path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Read(f, formatForPath(path))
}

func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
