package model

import "testing"

func TestAssetType_IsValid(t *testing.T) {
	tests := []struct {
		typ   AssetType
		valid bool
	}{
		{TypeAnalysis, true},
		{TypeDashboard, true},
		{TypeDataset, true},
		{TypeDataSource, true},
		{TypeTheme, true},
		{AssetType("visual"), false},
		{AssetType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.valid {
				t.Errorf("AssetType(%q).IsValid() = %v, want %v", tt.typ, got, tt.valid)
			}
		})
	}
}

func TestAllAssetTypes(t *testing.T) {
	all := AllAssetTypes()
	if len(all) != 5 {
		t.Errorf("expected 5 asset types, got %d", len(all))
	}
	for _, typ := range all {
		if !typ.IsValid() {
			t.Errorf("AllAssetTypes() returned invalid type: %s", typ)
		}
		if typ.Description() == "Unknown asset type" {
			t.Errorf("missing description for %s", typ)
		}
	}
}
