package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/dimkharitonov/quicksightsync/internal/awsapi"
)

const (
	sourceAccount = "111111111111"
	targetAccount = "222222222222"
	sourceRegion  = "us-east-1"
	targetRegion  = "eu-west-1"
)

func sourceARN(kind, id string) string {
	return "arn:aws:quicksight:" + sourceRegion + ":" + sourceAccount + ":" + kind + "/" + id
}

// seedSource populates the source account with an analysis and its full
// dependency closure.
func seedSource(t *testing.T) *awsapi.Fake {
	t.Helper()
	fake := awsapi.NewFake(sourceAccount, sourceRegion)
	ctx := context.Background()

	if _, err := fake.CreateDataSource(ctx, &quicksight.CreateDataSourceInput{
		AwsAccountId: aws.String(sourceAccount),
		DataSourceId: aws.String("src-1"),
		Name:         aws.String("Analytics DB"),
		Type:         types.DataSourceTypePostgresql,
		DataSourceParameters: &types.DataSourceParametersMemberPostgreSqlParameters{
			Value: types.PostgreSqlParameters{
				Host:     aws.String("db.example.com"),
				Port:     aws.Int32(5432),
				Database: aws.String("analytics"),
			},
		},
	}); err != nil {
		t.Fatal(err)
	}

	table := &types.PhysicalTableMemberRelationalTable{
		Value: types.RelationalTable{
			DataSourceArn: aws.String(sourceARN("datasource", "src-1")),
			Name:          aws.String("orders"),
			InputColumns: []types.InputColumn{
				{Name: aws.String("order_id"), Type: types.InputColumnDataTypeString},
			},
		},
	}

	if _, err := fake.CreateDataSet(ctx, &quicksight.CreateDataSetInput{
		AwsAccountId:     aws.String(sourceAccount),
		DataSetId:        aws.String("ds-rls"),
		Name:             aws.String("Orders RLS"),
		PhysicalTableMap: map[string]types.PhysicalTable{"pt": table},
		ImportMode:       types.DataSetImportModeSpice,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := fake.CreateDataSet(ctx, &quicksight.CreateDataSetInput{
		AwsAccountId:     aws.String(sourceAccount),
		DataSetId:        aws.String("ds-main"),
		Name:             aws.String("Orders"),
		PhysicalTableMap: map[string]types.PhysicalTable{"pt": table},
		ImportMode:       types.DataSetImportModeSpice,
		RowLevelPermissionDataSet: &types.RowLevelPermissionDataSet{
			Arn:              aws.String(sourceARN("dataset", "ds-rls")),
			PermissionPolicy: types.RowLevelPermissionPolicyGrantAccess,
		},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := fake.CreateTheme(ctx, &quicksight.CreateThemeInput{
		AwsAccountId:  aws.String(sourceAccount),
		ThemeId:       aws.String("th-1"),
		Name:          aws.String("Corporate"),
		BaseThemeId:   aws.String("MIDNIGHT"),
		Configuration: &types.ThemeConfiguration{},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := fake.CreateAnalysis(ctx, &quicksight.CreateAnalysisInput{
		AwsAccountId: aws.String(sourceAccount),
		AnalysisId:   aws.String("an-1"),
		Name:         aws.String("Revenue"),
		ThemeArn:     aws.String(sourceARN("theme", "th-1")),
		Definition: &types.AnalysisDefinition{
			DataSetIdentifierDeclarations: []types.DataSetIdentifierDeclaration{
				{DataSetArn: aws.String(sourceARN("dataset", "ds-main")), Identifier: aws.String("main")},
			},
		},
		Permissions: []types.ResourcePermission{
			{Principal: aws.String(sourceARN("user", "default/alice")), Actions: []string{"quicksight:DescribeAnalysis"}},
		},
	}); err != nil {
		t.Fatal(err)
	}

	return fake
}

// exportBundle runs the export command against the source account and
// returns the bundle file path.
func exportBundle(t *testing.T, h *Harness, dir string) string {
	t.Helper()

	h.UseAccount(seedSource(t))
	res := h.Run("export", "-o", dir, "--format", "json", "an-1")
	if !res.Success() {
		t.Fatalf("export failed: %v\n%s", res.Err, res.Stdout)
	}

	path := filepath.Join(dir, "an-1.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("bundle file not written: %v", err)
	}
	return path
}

func TestExportImportRoundTrip(t *testing.T) {
	h := NewHarness(t)
	path := exportBundle(t, h, t.TempDir())

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	res := h.Run("import", "-r", targetRegion, path)
	if !res.Success() {
		t.Fatalf("import failed: %v\n%s", res.Err, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "Created:   6") {
		t.Errorf("summary missing created count:\n%s", res.Stdout)
	}

	// Everything lands under the default suffix.
	if _, ok := target.Analyses["an-1-imported"]; !ok {
		t.Error("analysis not created in target account")
	}
	if _, ok := target.DataSources["src-1-imported"]; !ok {
		t.Error("data source not created in target account")
	}
	if _, ok := target.DataSets["ds-rls-imported"]; !ok {
		t.Error("RLS dataset not created in target account")
	}
	if _, ok := target.Dashboards["an-1-dashboard-imported"]; !ok {
		t.Error("dashboard not created in target account")
	}
	if v := target.PublishedVersions["an-1-dashboard-imported"]; v != 1 {
		t.Errorf("published version = %d, want 1", v)
	}

	// The imported dataset points at the target-account data source.
	an := target.Analyses["an-1-imported"]
	arn := aws.ToString(an.Definition.DataSetIdentifierDeclarations[0].DataSetArn)
	if !strings.Contains(arn, targetAccount) || !strings.Contains(arn, "ds-main-imported") {
		t.Errorf("dataset declaration not remapped: %s", arn)
	}
}

func TestImportDryRunMakesNoCalls(t *testing.T) {
	h := NewHarness(t)
	path := exportBundle(t, h, t.TempDir())

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	res := h.Run("import", "--dry-run", path)
	if !res.Success() {
		t.Fatalf("dry run failed: %v\n%s", res.Err, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "Dry run - no changes made") {
		t.Errorf("missing dry run banner:\n%s", res.Stdout)
	}
	if len(target.Calls) != 0 {
		t.Errorf("dry run called the API: %v", target.Calls)
	}
}

func TestImportConflictFail(t *testing.T) {
	h := NewHarness(t)
	path := exportBundle(t, h, t.TempDir())

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	if res := h.Run("import", path); !res.Success() {
		t.Fatalf("first import failed: %v", res.Err)
	}

	res := h.Run("import", path)
	if res.ExitCode != 1 {
		t.Fatalf("second import exit code = %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Err.Error(), "already exists") {
		t.Errorf("error = %v, want conflict message", res.Err)
	}
	// The failed asset line carries the conflict error itself.
	if !strings.Contains(res.Stdout, `src-1 -> src-1-imported: datasource "src-1-imported" already exists`) {
		t.Errorf("failed asset line missing error detail:\n%s", res.Stdout)
	}
}

func TestImportConflictSkipAndOverwrite(t *testing.T) {
	h := NewHarness(t)
	path := exportBundle(t, h, t.TempDir())

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	if res := h.Run("import", path); !res.Success() {
		t.Fatalf("first import failed: %v", res.Err)
	}

	res := h.Run("import", "--on-conflict", "skip", path)
	if !res.Success() {
		t.Fatalf("skip import failed: %v\n%s", res.Err, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "Skipped:   6") {
		t.Errorf("summary missing skipped count:\n%s", res.Stdout)
	}

	res = h.Run("import", "--on-conflict", "overwrite", "--no-backup", path)
	if !res.Success() {
		t.Fatalf("overwrite import failed: %v\n%s", res.Err, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "Updated:   6") {
		t.Errorf("summary missing updated count:\n%s", res.Stdout)
	}
	if v := target.PublishedVersions["an-1-dashboard-imported"]; v != 2 {
		t.Errorf("published version after overwrite = %d, want 2", v)
	}
}

func TestImportCustomSuffix(t *testing.T) {
	h := NewHarness(t)
	path := exportBundle(t, h, t.TempDir())

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	res := h.Run("import", "--suffix", "-staging", path)
	if !res.Success() {
		t.Fatalf("import failed: %v\n%s", res.Err, res.Stdout)
	}
	if _, ok := target.Analyses["an-1-staging"]; !ok {
		t.Error("analysis not created with custom suffix")
	}
}

func TestListAnalyses(t *testing.T) {
	h := NewHarness(t)
	h.UseAccount(seedSource(t))

	res := h.Run("list", "analyses")
	if !res.Success() {
		t.Fatalf("list failed: %v", res.Err)
	}
	if !strings.Contains(res.Stdout, "an-1") || !strings.Contains(res.Stdout, "Revenue") {
		t.Errorf("list output missing analysis:\n%s", res.Stdout)
	}
}

func TestExportYAMLImportRoundTrip(t *testing.T) {
	h := NewHarness(t)
	dir := t.TempDir()

	h.UseAccount(seedSource(t))
	res := h.Run("export", "-o", dir, "--format", "yaml", "an-1")
	if !res.Success() {
		t.Fatalf("export failed: %v\n%s", res.Err, res.Stdout)
	}

	target := awsapi.NewFake(targetAccount, targetRegion)
	h.UseAccount(target)

	res = h.Run("import", filepath.Join(dir, "an-1.yaml"))
	if !res.Success() {
		t.Fatalf("import failed: %v\n%s", res.Err, res.Stdout)
	}
	if _, ok := target.Analyses["an-1-imported"]; !ok {
		t.Error("analysis not created from YAML bundle")
	}
}
