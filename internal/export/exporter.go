// Package export walks an analysis and its dependency closure in the
// source account and captures everything into a portable bundle.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/dimkharitonov/quicksightsync/internal/awsapi"
	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/logging"
	"github.com/dimkharitonov/quicksightsync/internal/model"
	"github.com/dimkharitonov/quicksightsync/internal/progress"
)

// Options configures export behavior.
type Options struct {
	// OutputDir is where bundle files are written.
	OutputDir string

	// Format is the bundle serialization format.
	Format bundle.Format

	// ToolVersion is recorded in the bundle manifest.
	ToolVersion string
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{
		OutputDir: ".",
		Format:    bundle.FormatJSON,
	}
}

// Exporter captures analyses from a source account.
type Exporter struct {
	api     awsapi.QuickSight
	account string
	region  string
	opts    Options
}

// New creates an Exporter for the given source account and region.
func New(api awsapi.QuickSight, accountID, region string, opts Options) *Exporter {
	if opts.Format == "" {
		opts.Format = bundle.FormatJSON
	}
	return &Exporter{
		api:     api,
		account: accountID,
		region:  region,
		opts:    opts,
	}
}

// Export walks the dependency closure of an analysis and returns it as a
// bundle: the analysis definition and permissions, every declared dataset,
// the row-level-security datasets gating them, the data sources they read
// from, and the custom theme if one is referenced. Data source credentials
// are never part of the closure; the QuickSight API does not return them.
func (e *Exporter) Export(ctx context.Context, analysisID string) (*bundle.Bundle, error) {
	defer logging.Timer("export")()

	logging.Debug("starting export",
		logging.Asset(analysisID),
		logging.Account(e.account),
		logging.Region(e.region),
	)

	bar := progress.Simple(-1, "Exporting "+analysisID)
	defer func() {
		_ = bar.Finish()
	}()

	b := &bundle.Bundle{
		Manifest: bundle.Manifest{
			SourceAccount: e.account,
			SourceRegion:  e.region,
			Tool:          "qss",
			ToolVersion:   e.opts.ToolVersion,
			ExportedAt:    time.Now().UTC(),
		},
	}

	analysis, err := e.exportAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	b.Analysis = analysis
	_ = bar.Add(1)

	// The analysis declares its datasets; those may gate access through
	// RLS datasets, which are datasets themselves.
	exported := make(map[string]bool)
	var rlsIDs []string
	for _, datasetID := range analysis.DatasetIDs() {
		ds, err := e.exportDataset(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		b.AnalysisDatasets = append(b.AnalysisDatasets, ds)
		exported[datasetID] = true
		if rls := ds.RLSDatasetID(); rls != "" {
			rlsIDs = append(rlsIDs, rls)
		}
		_ = bar.Add(1)
	}
	for _, rlsID := range rlsIDs {
		if exported[rlsID] {
			continue
		}
		ds, err := e.exportDataset(ctx, rlsID)
		if err != nil {
			return nil, err
		}
		b.SecurityDatasets = append(b.SecurityDatasets, ds)
		exported[rlsID] = true
		_ = bar.Add(1)
	}

	// Data sources referenced by any exported dataset.
	seenSources := make(map[string]bool)
	for _, ds := range b.Datasets() {
		for _, sourceID := range ds.DataSourceIDs() {
			if seenSources[sourceID] {
				continue
			}
			seenSources[sourceID] = true
			src, err := e.exportDataSource(ctx, sourceID)
			if err != nil {
				return nil, err
			}
			b.DataSources = append(b.DataSources, src)
			_ = bar.Add(1)
		}
	}

	// Custom theme, if the analysis references one. AWS starter themes
	// exist in every account and are not exported.
	if arn := analysis.ThemeARN; arn != "" && model.AccountFromARN(arn) != "aws" {
		theme, err := e.exportTheme(ctx, model.IDFromARN(arn))
		if err != nil {
			return nil, err
		}
		b.Themes = append(b.Themes, theme)
		_ = bar.Add(1)
	}

	logging.Debug("export completed",
		logging.Asset(analysisID),
		logging.Count(len(b.Refs())),
	)

	return b, nil
}

// ExportToFile exports an analysis and writes the bundle to the configured
// output directory, returning the file path.
func (e *Exporter) ExportToFile(ctx context.Context, analysisID string) (string, *bundle.Bundle, error) {
	b, err := e.Export(ctx, analysisID)
	if err != nil {
		return "", nil, err
	}

	path := filepath.Join(e.opts.OutputDir, analysisID+e.opts.Format.Extension())
	if err := b.WriteFile(path, e.opts.Format); err != nil {
		return "", nil, err
	}
	return path, b, nil
}

// ListAnalyses returns the analyses visible in the source account.
func (e *Exporter) ListAnalyses(ctx context.Context) ([]types.AnalysisSummary, error) {
	var summaries []types.AnalysisSummary
	var nextToken *string
	for {
		out, err := e.api.ListAnalyses(ctx, &quicksight.ListAnalysesInput{
			AwsAccountId: aws.String(e.account),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list analyses: %w", err)
		}
		summaries = append(summaries, out.AnalysisSummaryList...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return summaries, nil
}

func (e *Exporter) exportAnalysis(ctx context.Context, analysisID string) (bundle.Analysis, error) {
	def, err := e.api.DescribeAnalysisDefinition(ctx, &quicksight.DescribeAnalysisDefinitionInput{
		AwsAccountId: aws.String(e.account),
		AnalysisId:   aws.String(analysisID),
	})
	if err != nil {
		if awsapi.IsNotFound(err) {
			return bundle.Analysis{}, fmt.Errorf("analysis %q not found in account %s", analysisID, e.account)
		}
		return bundle.Analysis{}, fmt.Errorf("failed to describe analysis %q: %w", analysisID, err)
	}

	perms, err := e.api.DescribeAnalysisPermissions(ctx, &quicksight.DescribeAnalysisPermissionsInput{
		AwsAccountId: aws.String(e.account),
		AnalysisId:   aws.String(analysisID),
	})
	if err != nil {
		return bundle.Analysis{}, fmt.Errorf("failed to describe permissions of analysis %q: %w", analysisID, err)
	}

	return bundle.Analysis{
		AnalysisID:  analysisID,
		Name:        aws.ToString(def.Name),
		ThemeARN:    aws.ToString(def.ThemeArn),
		Definition:  def.Definition,
		Permissions: perms.Permissions,
	}, nil
}

func (e *Exporter) exportDataset(ctx context.Context, datasetID string) (bundle.Dataset, error) {
	out, err := e.api.DescribeDataSet(ctx, &quicksight.DescribeDataSetInput{
		AwsAccountId: aws.String(e.account),
		DataSetId:    aws.String(datasetID),
	})
	if err != nil {
		return bundle.Dataset{}, fmt.Errorf("failed to describe dataset %q: %w", datasetID, err)
	}

	perms, err := e.api.DescribeDataSetPermissions(ctx, &quicksight.DescribeDataSetPermissionsInput{
		AwsAccountId: aws.String(e.account),
		DataSetId:    aws.String(datasetID),
	})
	if err != nil {
		return bundle.Dataset{}, fmt.Errorf("failed to describe permissions of dataset %q: %w", datasetID, err)
	}

	return datasetFromSDK(out.DataSet, perms.Permissions)
}

// datasetFromSDK converts a described dataset into its bundle snapshot.
// OutputColumns are computed by the service and deliberately dropped; the
// Create call rejects them.
func datasetFromSDK(ds *types.DataSet, perms []types.ResourcePermission) (bundle.Dataset, error) {
	datasetID := aws.ToString(ds.DataSetId)

	out := bundle.Dataset{
		DataSetID:                 datasetID,
		Name:                      aws.ToString(ds.Name),
		ImportMode:                ds.ImportMode,
		Permissions:               perms,
		RowLevelPermissionDataSet: ds.RowLevelPermissionDataSet,
		UsageConfiguration:        ds.DataSetUsageConfiguration,
	}

	if len(ds.PhysicalTableMap) > 0 {
		out.PhysicalTableMap = make(map[string]bundle.PhysicalTableDocument, len(ds.PhysicalTableMap))
		for key, table := range ds.PhysicalTableMap {
			doc, err := bundle.PhysicalTableFromSDK(table)
			if err != nil {
				return bundle.Dataset{}, fmt.Errorf("dataset %q physical table %q: %w", datasetID, key, err)
			}
			out.PhysicalTableMap[key] = doc
		}
	}

	if len(ds.LogicalTableMap) > 0 {
		out.LogicalTableMap = make(map[string]bundle.LogicalTableDocument, len(ds.LogicalTableMap))
		for key, table := range ds.LogicalTableMap {
			doc, err := bundle.LogicalTableFromSDK(table)
			if err != nil {
				return bundle.Dataset{}, fmt.Errorf("dataset %q logical table %q: %w", datasetID, key, err)
			}
			out.LogicalTableMap[key] = doc
		}
	}

	return out, nil
}

func (e *Exporter) exportDataSource(ctx context.Context, sourceID string) (bundle.DataSource, error) {
	out, err := e.api.DescribeDataSource(ctx, &quicksight.DescribeDataSourceInput{
		AwsAccountId: aws.String(e.account),
		DataSourceId: aws.String(sourceID),
	})
	if err != nil {
		return bundle.DataSource{}, fmt.Errorf("failed to describe data source %q: %w", sourceID, err)
	}

	perms, err := e.api.DescribeDataSourcePermissions(ctx, &quicksight.DescribeDataSourcePermissionsInput{
		AwsAccountId: aws.String(e.account),
		DataSourceId: aws.String(sourceID),
	})
	if err != nil {
		return bundle.DataSource{}, fmt.Errorf("failed to describe permissions of data source %q: %w", sourceID, err)
	}

	params, err := bundle.DataSourceParametersFromSDK(out.DataSource.DataSourceParameters)
	if err != nil {
		return bundle.DataSource{}, fmt.Errorf("data source %q: %w", sourceID, err)
	}

	return bundle.DataSource{
		DataSourceID:            sourceID,
		Name:                    aws.ToString(out.DataSource.Name),
		Type:                    out.DataSource.Type,
		Parameters:              params,
		SslProperties:           out.DataSource.SslProperties,
		VpcConnectionProperties: out.DataSource.VpcConnectionProperties,
		Permissions:             perms.Permissions,
	}, nil
}

func (e *Exporter) exportTheme(ctx context.Context, themeID string) (bundle.Theme, error) {
	out, err := e.api.DescribeTheme(ctx, &quicksight.DescribeThemeInput{
		AwsAccountId: aws.String(e.account),
		ThemeId:      aws.String(themeID),
	})
	if err != nil {
		return bundle.Theme{}, fmt.Errorf("failed to describe theme %q: %w", themeID, err)
	}

	perms, err := e.api.DescribeThemePermissions(ctx, &quicksight.DescribeThemePermissionsInput{
		AwsAccountId: aws.String(e.account),
		ThemeId:      aws.String(themeID),
	})
	if err != nil {
		return bundle.Theme{}, fmt.Errorf("failed to describe permissions of theme %q: %w", themeID, err)
	}

	theme := bundle.Theme{
		ThemeID:     themeID,
		Name:        aws.ToString(out.Theme.Name),
		Permissions: perms.Permissions,
	}
	if out.Theme.Version != nil {
		theme.BaseThemeID = aws.ToString(out.Theme.Version.BaseThemeId)
		theme.Configuration = out.Theme.Version.Configuration
	}
	return theme, nil
}
