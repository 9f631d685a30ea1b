package validation

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/dimkharitonov/quicksightsync/internal/bundle"
)

func arn(kind, id string) string {
	return "arn:aws:quicksight:us-east-1:123456789012:" + kind + "/" + id
}

func validBundle() *bundle.Bundle {
	return &bundle.Bundle{
		Manifest: bundle.Manifest{SourceAccount: "123456789012", SourceRegion: "us-east-1"},
		Analysis: bundle.Analysis{
			AnalysisID: "an-1",
			Name:       "Revenue",
			Definition: &types.AnalysisDefinition{
				DataSetIdentifierDeclarations: []types.DataSetIdentifierDeclaration{
					{DataSetArn: aws.String(arn("dataset", "ds-1")), Identifier: aws.String("main")},
				},
			},
			Permissions: []types.ResourcePermission{
				{Principal: aws.String(arn("user", "default/alice")), Actions: []string{"quicksight:DescribeAnalysis"}},
			},
		},
		AnalysisDatasets: []bundle.Dataset{
			{
				DataSetID: "ds-1",
				Name:      "Orders",
				PhysicalTableMap: map[string]bundle.PhysicalTableDocument{
					"pt": {RelationalTable: &types.RelationalTable{
						DataSourceArn: aws.String(arn("datasource", "src-1")),
						Name:          aws.String("orders"),
						InputColumns: []types.InputColumn{
							{Name: aws.String("order_id"), Type: types.InputColumnDataTypeString},
						},
					}},
				},
			},
		},
		DataSources: []bundle.DataSource{
			{DataSourceID: "src-1", Name: "DB", Type: types.DataSourceTypePostgresql},
		},
	}
}

func TestValidateBundle_Valid(t *testing.T) {
	result := ValidateBundle(validBundle())
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.Valid {
		t.Error("Valid = false, want true")
	}
}

func TestValidateBundle_Nil(t *testing.T) {
	result := ValidateBundle(nil)
	if !result.HasErrors() {
		t.Fatal("expected error for nil bundle")
	}
}

func TestValidateBundle_MissingAnalysis(t *testing.T) {
	b := validBundle()
	b.Analysis = bundle.Analysis{}

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for missing analysis")
	}
}

func TestValidateBundle_MissingDefinition(t *testing.T) {
	b := validBundle()
	b.Analysis.Definition = nil

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for missing definition")
	}
}

func TestValidateBundle_DanglingDataSource(t *testing.T) {
	b := validBundle()
	b.DataSources = nil

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for dangling data source reference")
	}
	if !strings.Contains(result.Error().Error(), "src-1") {
		t.Errorf("error does not name the missing source: %v", result.Error())
	}
}

func TestValidateBundle_DanglingRLSDataset(t *testing.T) {
	b := validBundle()
	b.AnalysisDatasets[0].RowLevelPermissionDataSet = &types.RowLevelPermissionDataSet{
		Arn:              aws.String(arn("dataset", "ds-rls")),
		PermissionPolicy: types.RowLevelPermissionPolicyGrantAccess,
	}

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for missing RLS dataset")
	}
}

func TestValidateBundle_DanglingAnalysisDataset(t *testing.T) {
	b := validBundle()
	b.Analysis.Definition.DataSetIdentifierDeclarations = append(
		b.Analysis.Definition.DataSetIdentifierDeclarations,
		types.DataSetIdentifierDeclaration{
			DataSetArn: aws.String(arn("dataset", "ds-phantom")),
			Identifier: aws.String("phantom"),
		},
	)

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for dataset declared but not carried")
	}
}

func TestValidateBundle_DuplicateIDs(t *testing.T) {
	b := validBundle()
	b.AnalysisDatasets = append(b.AnalysisDatasets, b.AnalysisDatasets[0])

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for duplicate asset ID")
	}
}

func TestValidateBundle_IDCollidesWithDerivedDashboardID(t *testing.T) {
	b := validBundle()
	b.AnalysisDatasets[0].DataSetID = "an-1-dashboard"
	// Keep the analysis declaration aligned so only the collision fires.
	b.Analysis.Definition.DataSetIdentifierDeclarations[0].DataSetArn =
		aws.String(arn("dataset", "an-1-dashboard"))

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for ID colliding with the derived dashboard ID")
	}
	if !strings.Contains(result.Error().Error(), "dashboard ID") {
		t.Errorf("error = %v, want dashboard ID collision message", result.Error())
	}
}

func TestValidateBundle_ColumnlessPhysicalTable(t *testing.T) {
	b := validBundle()
	b.AnalysisDatasets[0].PhysicalTableMap["pt"].RelationalTable.InputColumns = nil

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for physical table without input columns")
	}
	if !strings.Contains(result.Error().Error(), "input columns") {
		t.Errorf("error = %v, want input column message", result.Error())
	}
}

func TestValidateBundle_InvalidIDSyntax(t *testing.T) {
	b := validBundle()
	b.DataSources[0].DataSourceID = "src 1/../etc"
	// Keep the dataset reference aligned so only the syntax error fires.
	b.AnalysisDatasets[0].PhysicalTableMap["pt"].RelationalTable.DataSourceArn =
		aws.String(arn("datasource", "src 1/../etc"))

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for invalid ID syntax")
	}
}

func TestValidateBundle_StarterThemeAllowed(t *testing.T) {
	b := validBundle()
	b.Analysis.ThemeARN = "arn:aws:quicksight::aws:theme/MIDNIGHT"

	result := ValidateBundle(b)
	if result.HasErrors() {
		t.Fatalf("starter theme should not require a bundled theme: %v", result.Errors)
	}
}

func TestValidateBundle_CustomThemeMustBeCarried(t *testing.T) {
	b := validBundle()
	b.Analysis.ThemeARN = arn("theme", "th-custom")

	result := ValidateBundle(b)
	if !result.HasErrors() {
		t.Fatal("expected error for custom theme not in bundle")
	}
}

func TestResult_Summary(t *testing.T) {
	r := &Result{Valid: true}
	if got := r.Summary(); got != "All validations passed" {
		t.Errorf("Summary() = %q", got)
	}

	r.AddWarning("something minor")
	if got := r.Summary(); !strings.Contains(got, "warning") {
		t.Errorf("Summary() = %q, want warning mention", got)
	}

	r.AddError(&Error{Field: "x", Message: "broken"})
	if got := r.Summary(); !strings.Contains(got, "failed") {
		t.Errorf("Summary() = %q, want failure mention", got)
	}
}
