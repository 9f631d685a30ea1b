// Package model defines the asset types and identifier helpers shared by
// the export and import pipelines.
package model

// AssetType identifies a kind of QuickSight asset.
type AssetType string

const (
	// TypeAnalysis is a QuickSight analysis.
	TypeAnalysis AssetType = "analysis"

	// TypeDashboard is a published dashboard.
	TypeDashboard AssetType = "dashboard"

	// TypeDataset is a dataset (including row-level-security datasets).
	TypeDataset AssetType = "dataset"

	// TypeDataSource is a data source a dataset reads from.
	TypeDataSource AssetType = "datasource"

	// TypeTheme is a custom theme referenced by an analysis.
	TypeTheme AssetType = "theme"
)

// IsValid returns true if the asset type is recognized.
func (t AssetType) IsValid() bool {
	switch t {
	case TypeAnalysis, TypeDashboard, TypeDataset, TypeDataSource, TypeTheme:
		return true
	default:
		return false
	}
}

// String returns the string representation of the asset type.
func (t AssetType) String() string {
	return string(t)
}

// Description returns a human-readable description of the asset type.
func (t AssetType) Description() string {
	switch t {
	case TypeAnalysis:
		return "QuickSight analysis"
	case TypeDashboard:
		return "Published dashboard"
	case TypeDataset:
		return "Dataset"
	case TypeDataSource:
		return "Data source"
	case TypeTheme:
		return "Theme"
	default:
		return "Unknown asset type"
	}
}

// AllAssetTypes returns all supported asset types.
func AllAssetTypes() []AssetType {
	return []AssetType{TypeAnalysis, TypeDashboard, TypeDataset, TypeDataSource, TypeTheme}
}

// AssetRef is a lightweight reference to an asset inside a bundle,
// carrying just enough to order creation and validate cross-references.
type AssetRef struct {
	// ID is the source-side asset identifier.
	ID string

	// Type is the kind of asset.
	Type AssetType

	// Name is the display name, used in messages only.
	Name string

	// Dependencies lists the IDs of assets that must exist in the target
	// before this one can be created.
	Dependencies []string
}
