package bundle

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/dimkharitonov/quicksightsync/internal/model"
)

const testAccount = "123456789012"

func testARN(kind, id string) string {
	return "arn:aws:quicksight:us-east-1:" + testAccount + ":" + kind + "/" + id
}

// testBundle builds a small but complete bundle: one data source, one RLS
// dataset, one analysis dataset gated by it, one theme, one analysis.
func testBundle() *Bundle {
	physical := func(sourceID string) map[string]PhysicalTableDocument {
		return map[string]PhysicalTableDocument{
			"pt-1": {
				RelationalTable: &types.RelationalTable{
					DataSourceArn: aws.String(testARN("datasource", sourceID)),
					Name:          aws.String("orders"),
					InputColumns: []types.InputColumn{
						{Name: aws.String("id"), Type: types.InputColumnDataTypeInteger},
					},
				},
			},
		}
	}

	return &Bundle{
		Manifest: Manifest{
			SourceAccount: testAccount,
			SourceRegion:  "us-east-1",
			Tool:          "qss",
			ToolVersion:   "test",
			ExportedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Analysis: Analysis{
			AnalysisID: "an-1",
			Name:       "Revenue",
			ThemeARN:   testARN("theme", "th-1"),
			Definition: &types.AnalysisDefinition{
				DataSetIdentifierDeclarations: []types.DataSetIdentifierDeclaration{
					{
						DataSetArn: aws.String(testARN("dataset", "ds-main")),
						Identifier: aws.String("main"),
					},
				},
			},
			Permissions: []types.ResourcePermission{
				{
					Principal: aws.String(testARN("user", "default/alice")),
					Actions:   []string{"quicksight:DescribeAnalysis"},
				},
			},
		},
		AnalysisDatasets: []Dataset{
			{
				DataSetID:        "ds-main",
				Name:             "Orders",
				PhysicalTableMap: physical("src-1"),
				ImportMode:       types.DataSetImportModeSpice,
				RowLevelPermissionDataSet: &types.RowLevelPermissionDataSet{
					Arn:              aws.String(testARN("dataset", "ds-rls")),
					PermissionPolicy: types.RowLevelPermissionPolicyGrantAccess,
				},
			},
		},
		SecurityDatasets: []Dataset{
			{
				DataSetID:        "ds-rls",
				Name:             "Orders RLS",
				PhysicalTableMap: physical("src-1"),
				ImportMode:       types.DataSetImportModeSpice,
			},
		},
		DataSources: []DataSource{
			{
				DataSourceID: "src-1",
				Name:         "Analytics DB",
				Type:         types.DataSourceTypePostgresql,
				Parameters: &DataSourceParametersDocument{
					PostgreSqlParameters: &types.PostgreSqlParameters{
						Host:     aws.String("db.example.com"),
						Port:     aws.Int32(5432),
						Database: aws.String("analytics"),
					},
				},
			},
		},
		Themes: []Theme{
			{
				ThemeID:       "th-1",
				Name:          "Corporate",
				BaseThemeID:   "MIDNIGHT",
				Configuration: &types.ThemeConfiguration{},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"toml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDataset_DependencyAccessors(t *testing.T) {
	b := testBundle()
	main := b.AnalysisDatasets[0]

	if ids := main.DataSourceIDs(); len(ids) != 1 || ids[0] != "src-1" {
		t.Errorf("DataSourceIDs() = %v, want [src-1]", ids)
	}
	if rls := main.RLSDatasetID(); rls != "ds-rls" {
		t.Errorf("RLSDatasetID() = %q, want ds-rls", rls)
	}
	if rls := b.SecurityDatasets[0].RLSDatasetID(); rls != "" {
		t.Errorf("security dataset RLSDatasetID() = %q, want empty", rls)
	}
}

func TestAnalysis_DatasetIDs(t *testing.T) {
	b := testBundle()
	if ids := b.Analysis.DatasetIDs(); len(ids) != 1 || ids[0] != "ds-main" {
		t.Errorf("DatasetIDs() = %v, want [ds-main]", ids)
	}

	empty := Analysis{}
	if ids := empty.DatasetIDs(); ids != nil {
		t.Errorf("nil definition DatasetIDs() = %v, want nil", ids)
	}
}

func TestBundle_Refs(t *testing.T) {
	b := testBundle()
	refs := b.Refs()

	byID := make(map[string]model.AssetRef)
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	// datasource + theme + 2 datasets + analysis + dashboard
	if len(refs) != 6 {
		t.Fatalf("Refs() returned %d refs, want 6", len(refs))
	}

	main := byID["ds-main"]
	wantDeps := map[string]bool{"src-1": true, "ds-rls": true}
	if len(main.Dependencies) != 2 {
		t.Fatalf("ds-main deps = %v, want src-1 and ds-rls", main.Dependencies)
	}
	for _, dep := range main.Dependencies {
		if !wantDeps[dep] {
			t.Errorf("unexpected ds-main dependency %q", dep)
		}
	}

	analysis := byID["an-1"]
	depSet := make(map[string]bool)
	for _, dep := range analysis.Dependencies {
		depSet[dep] = true
	}
	if !depSet["ds-main"] || !depSet["th-1"] {
		t.Errorf("analysis deps = %v, want ds-main and th-1", analysis.Dependencies)
	}

	dashboard := byID[b.DashboardID()]
	if dashboard.Type != model.TypeDashboard {
		t.Fatalf("dashboard ref missing or wrong type: %+v", dashboard)
	}
	if len(dashboard.Dependencies) != 1 || dashboard.Dependencies[0] != "an-1" {
		t.Errorf("dashboard deps = %v, want [an-1]", dashboard.Dependencies)
	}
}

func TestBundle_FileRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			b := testBundle()
			path := filepath.Join(t.TempDir(), "an-1"+format.Extension())

			if err := b.WriteFile(path, format); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}

			if got.Analysis.AnalysisID != "an-1" {
				t.Errorf("analysis ID = %q, want an-1", got.Analysis.AnalysisID)
			}
			if got.Manifest.SourceAccount != testAccount {
				t.Errorf("manifest account = %q, want %q", got.Manifest.SourceAccount, testAccount)
			}
			if len(got.DataSources) != 1 || got.DataSources[0].Parameters == nil {
				t.Fatal("data source parameters lost in round trip")
			}
			if got.DataSources[0].Parameters.PostgreSqlParameters == nil {
				t.Error("postgres parameters lost in round trip")
			}

			table := got.AnalysisDatasets[0].PhysicalTableMap["pt-1"]
			if table.RelationalTable == nil {
				t.Fatal("relational table lost in round trip")
			}
			if aws.ToString(table.RelationalTable.Name) != "orders" {
				t.Errorf("table name = %q, want orders", aws.ToString(table.RelationalTable.Name))
			}

			if got.Analysis.Definition == nil || len(got.Analysis.Definition.DataSetIdentifierDeclarations) != 1 {
				t.Error("analysis definition lost in round trip")
			}
		})
	}
}

func TestRead_RejectsUnknownFormat(t *testing.T) {
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml format")
	}
}
