package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"

	"github.com/dimkharitonov/quicksightsync/internal/awsapi"
	"github.com/dimkharitonov/quicksightsync/internal/backup"
	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/dependency"
	"github.com/dimkharitonov/quicksightsync/internal/logging"
	"github.com/dimkharitonov/quicksightsync/internal/model"
	"github.com/dimkharitonov/quicksightsync/internal/progress"
	"github.com/dimkharitonov/quicksightsync/internal/validation"
)

// DefaultSuffix is appended to every imported asset's ID and name so
// imports never collide with assets native to the target account.
const DefaultSuffix = "-imported"

// PublishOptions controls how the derived dashboard behaves once published.
type PublishOptions struct {
	// AdHocFiltering allows viewers to add their own filters.
	AdHocFiltering bool
	// ExportToCSV allows viewers to export visual data.
	ExportToCSV bool
	// SheetControlsExpanded shows the sheet control pane expanded.
	SheetControlsExpanded bool
}

// toSDK converts the publish options to the SDK representation.
func (p PublishOptions) toSDK() *types.DashboardPublishOptions {
	availability := func(enabled bool) types.DashboardBehavior {
		if enabled {
			return types.DashboardBehaviorEnabled
		}
		return types.DashboardBehaviorDisabled
	}
	visibility := types.DashboardUIStateCollapsed
	if p.SheetControlsExpanded {
		visibility = types.DashboardUIStateExpanded
	}
	return &types.DashboardPublishOptions{
		AdHocFilteringOption: &types.AdHocFilteringOption{
			AvailabilityStatus: availability(p.AdHocFiltering),
		},
		ExportToCSVOption: &types.ExportToCSVOption{
			AvailabilityStatus: availability(p.ExportToCSV),
		},
		SheetControlsOption: &types.SheetControlsOption{
			VisibilityState: visibility,
		},
	}
}

// Options configures import behavior.
type Options struct {
	// Strategy defines how to handle assets that already exist.
	Strategy Strategy

	// Suffix is appended to asset IDs and names in the target account.
	Suffix string

	// DryRun resolves and plans the import without calling any write API.
	DryRun bool

	// SkipPublish leaves the dashboard created but unpublished.
	SkipPublish bool

	// PublishOptions controls published dashboard behavior.
	PublishOptions PublishOptions

	// DashboardPermissions overrides the permissions granted on the derived
	// dashboard. When empty, the analysis permissions are reused with
	// dashboard actions.
	DashboardPermissions []types.ResourcePermission

	// Backup, when set, snapshots existing target assets before they are
	// overwritten.
	Backup *backup.Store
}

// DefaultOptions returns the default import options.
func DefaultOptions() Options {
	return Options{
		Strategy: StrategyFail,
		Suffix:   DefaultSuffix,
		PublishOptions: PublishOptions{
			AdHocFiltering:        false,
			ExportToCSV:           true,
			SheetControlsExpanded: true,
		},
	}
}

// dashboardActions is the full owner action set granted on the derived
// dashboard when no explicit permissions are configured.
var dashboardActions = []string{
	"quicksight:DescribeDashboard",
	"quicksight:ListDashboardVersions",
	"quicksight:UpdateDashboardPermissions",
	"quicksight:QueryDashboard",
	"quicksight:UpdateDashboard",
	"quicksight:DeleteDashboard",
	"quicksight:DescribeDashboardPermissions",
	"quicksight:UpdateDashboardPublishedVersion",
}

// Importer recreates bundles in a target account.
type Importer struct {
	api     awsapi.QuickSight
	account string
	region  string
	opts    Options
}

// New creates an Importer for the given target account and region.
func New(api awsapi.QuickSight, accountID, region string, opts Options) *Importer {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFail
	}
	return &Importer{
		api:     api,
		account: accountID,
		region:  region,
		opts:    opts,
	}
}

// Run validates the bundle, orders its assets, and creates each one in the
// target account. The first failure aborts the import; assets already
// created stay in place so a rerun with the overwrite strategy can resume.
func (imp *Importer) Run(ctx context.Context, b *bundle.Bundle) (*Result, error) {
	defer logging.Timer("import")()

	vres := validation.ValidateBundle(b)
	for _, warning := range vres.Warnings {
		logging.Warn(warning)
	}
	if vres.HasErrors() {
		return nil, fmt.Errorf("bundle validation failed: %w", vres.Error())
	}

	dres := dependency.Resolve(b.Refs())
	if dres.HasErrors() {
		return nil, fmt.Errorf("dependency resolution failed: %w", dres.Err())
	}

	logging.Debug("starting import",
		logging.Asset(b.Analysis.AnalysisID),
		logging.Account(imp.account),
		logging.Region(imp.region),
		logging.Count(len(dres.Ordered)),
		slog.String("strategy", string(imp.opts.Strategy)),
		slog.Bool("dry_run", imp.opts.DryRun),
	)

	result := &Result{
		TargetAccount: imp.account,
		TargetRegion:  imp.region,
		Strategy:      imp.opts.Strategy,
		DryRun:        imp.opts.DryRun,
	}

	datasets := make(map[string]bundle.Dataset)
	for _, ds := range b.Datasets() {
		datasets[ds.DataSetID] = ds
	}
	sources := make(map[string]bundle.DataSource)
	for _, src := range b.DataSources {
		sources[src.DataSourceID] = src
	}
	themes := make(map[string]bundle.Theme)
	for _, th := range b.Themes {
		themes[th.ThemeID] = th
	}

	ids := NewIDMap()
	bar := progress.Simple(int64(len(dres.Ordered)), "Importing")

	for _, ref := range dres.Ordered {
		var ar AssetResult
		switch ref.Type {
		case model.TypeDataSource:
			ar = imp.importDataSource(ctx, ref, sources[ref.ID], ids)
		case model.TypeTheme:
			ar = imp.importTheme(ctx, ref, themes[ref.ID], ids)
		case model.TypeDataset:
			ar = imp.importDataset(ctx, ref, datasets[ref.ID], ids)
		case model.TypeAnalysis:
			ar = imp.importAnalysis(ctx, ref, b, ids)
		case model.TypeDashboard:
			ar = imp.importDashboard(ctx, ref, b, ids)
		default:
			ar = AssetResult{Ref: ref, Action: ActionFailed, Error: fmt.Errorf("unsupported asset type %q", ref.Type)}
		}

		result.Assets = append(result.Assets, ar)
		_ = bar.Add(1)

		if !ar.Success() {
			_ = bar.Clear()
			logging.Error("import aborted",
				logging.Asset(ref.ID),
				logging.AssetType(string(ref.Type)),
				logging.Err(ar.Error),
			)
			return result, fmt.Errorf("failed to import %s %q: %w", ref.Type, ref.ID, ar.Error)
		}
	}
	_ = bar.Finish()

	return result, nil
}

// targetID applies the configured suffix to a source asset ID.
func (imp *Importer) targetID(sourceID string) string {
	return sourceID + imp.opts.Suffix
}

// syntheticARN constructs the deterministic ARN an asset will have in the
// target account.
func (imp *Importer) syntheticARN(kind model.AssetType, id string) string {
	return fmt.Sprintf("arn:aws:quicksight:%s:%s:%s/%s", imp.region, imp.account, kind, id)
}

// remapPermissions rewrites principal ARNs to the target account.
func (imp *Importer) remapPermissions(perms []types.ResourcePermission) []types.ResourcePermission {
	if len(perms) == 0 {
		return nil
	}
	out := make([]types.ResourcePermission, len(perms))
	for i, perm := range perms {
		out[i] = types.ResourcePermission{
			Principal: aws.String(model.ReplaceAccountID(aws.ToString(perm.Principal), imp.account)),
			Actions:   perm.Actions,
		}
	}
	return out
}

// conflictError is returned when an asset exists and the strategy is fail.
func conflictError(assetType model.AssetType, id string) error {
	return fmt.Errorf("%s %q already exists in target account (rerun with --on-conflict overwrite or skip)", assetType, id)
}

// snapshot backs up an existing target asset definition before overwrite.
// Backup failures abort: overwriting without the promised snapshot loses
// the only copy of the target's previous state.
func (imp *Importer) snapshot(assetType model.AssetType, id string, describe func() (any, error)) error {
	if imp.opts.Backup == nil {
		return nil
	}
	current, err := describe()
	if err != nil {
		return fmt.Errorf("failed to describe existing %s for backup: %w", assetType, err)
	}
	if _, err := imp.opts.Backup.Save(assetType, id, current); err != nil {
		return fmt.Errorf("failed to back up existing %s: %w", assetType, err)
	}
	return nil
}

func (imp *Importer) importDataSource(ctx context.Context, ref model.AssetRef, src bundle.DataSource, ids *IDMap) AssetResult {
	newID := imp.targetID(src.DataSourceID)
	ar := AssetResult{Ref: ref, TargetID: newID}

	if imp.opts.DryRun {
		arn := imp.syntheticARN(model.TypeDataSource, newID)
		ids.Set(src.DataSourceID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionPlanned, arn, "would create data source"
		return ar
	}

	params, err := src.Parameters.ToSDK()
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}

	out, err := imp.api.CreateDataSource(ctx, &quicksight.CreateDataSourceInput{
		AwsAccountId:            aws.String(imp.account),
		DataSourceId:            aws.String(newID),
		Name:                    aws.String(imp.targetID(src.Name)),
		Type:                    src.Type,
		DataSourceParameters:    params,
		SslProperties:           src.SslProperties,
		VpcConnectionProperties: src.VpcConnectionProperties,
		Permissions:             imp.remapPermissions(src.Permissions),
	})
	switch {
	case err == nil:
		ids.Set(src.DataSourceID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionCreated, aws.ToString(out.Arn)
		return ar
	case awsapi.IsResourceExists(err):
		return imp.resolveDataSourceConflict(ctx, ar, src, newID, params, ids)
	default:
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
}

func (imp *Importer) resolveDataSourceConflict(ctx context.Context, ar AssetResult, src bundle.DataSource, newID string, params types.DataSourceParameters, ids *IDMap) AssetResult {
	arn := imp.syntheticARN(model.TypeDataSource, newID)

	switch imp.opts.Strategy {
	case StrategySkip:
		ids.Set(src.DataSourceID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionSkipped, arn, "data source already exists"
		return ar

	case StrategyOverwrite:
		err := imp.snapshot(model.TypeDataSource, newID, func() (any, error) {
			return imp.api.DescribeDataSource(ctx, &quicksight.DescribeDataSourceInput{
				AwsAccountId: aws.String(imp.account),
				DataSourceId: aws.String(newID),
			})
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		// Update drops Permissions and Type; neither can change on an
		// existing data source.
		out, err := imp.api.UpdateDataSource(ctx, &quicksight.UpdateDataSourceInput{
			AwsAccountId:            aws.String(imp.account),
			DataSourceId:            aws.String(newID),
			Name:                    aws.String(imp.targetID(src.Name)),
			DataSourceParameters:    params,
			SslProperties:           src.SslProperties,
			VpcConnectionProperties: src.VpcConnectionProperties,
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		ids.Set(src.DataSourceID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionUpdated, aws.ToString(out.Arn)
		return ar

	default:
		ar.Action, ar.Error = ActionFailed, conflictError(model.TypeDataSource, newID)
		return ar
	}
}

// remapDatasetTables rewrites every data source and dataset reference in
// the dataset's table maps to the target account, returning SDK values
// ready for Create/UpdateDataSet.
func (imp *Importer) remapDatasetTables(ds bundle.Dataset, ids *IDMap) (map[string]types.PhysicalTable, map[string]types.LogicalTable, error) {
	physical := make(map[string]types.PhysicalTable, len(ds.PhysicalTableMap))
	for key, doc := range ds.PhysicalTableMap {
		doc = doc.Clone()
		if arn := doc.DataSourceARN(); arn != "" {
			mapped, err := ids.ARN(model.IDFromARN(arn))
			if err != nil {
				return nil, nil, err
			}
			doc.SetDataSourceARN(mapped)
		}
		table, err := doc.ToSDK()
		if err != nil {
			return nil, nil, fmt.Errorf("physical table %q: %w", key, err)
		}
		physical[key] = table
	}

	var logical map[string]types.LogicalTable
	if len(ds.LogicalTableMap) > 0 {
		logical = make(map[string]types.LogicalTable, len(ds.LogicalTableMap))
		for key, doc := range ds.LogicalTableMap {
			table, err := doc.ToSDK()
			if err != nil {
				return nil, nil, fmt.Errorf("logical table %q: %w", key, err)
			}
			if table.Source != nil && table.Source.DataSetArn != nil {
				source := *table.Source
				mapped, err := ids.ARN(model.IDFromARN(aws.ToString(source.DataSetArn)))
				if err != nil {
					return nil, nil, err
				}
				source.DataSetArn = aws.String(mapped)
				table.Source = &source
			}
			logical[key] = table
		}
	}

	return physical, logical, nil
}

func (imp *Importer) importDataset(ctx context.Context, ref model.AssetRef, ds bundle.Dataset, ids *IDMap) AssetResult {
	newID := imp.targetID(ds.DataSetID)
	ar := AssetResult{Ref: ref, TargetID: newID}

	if imp.opts.DryRun {
		arn := imp.syntheticARN(model.TypeDataset, newID)
		ids.Set(ds.DataSetID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionPlanned, arn, "would create dataset"
		return ar
	}

	physical, logical, err := imp.remapDatasetTables(ds, ids)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}

	var rls *types.RowLevelPermissionDataSet
	if ds.RowLevelPermissionDataSet != nil {
		mapped, err := ids.ARN(ds.RLSDatasetID())
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		clone := *ds.RowLevelPermissionDataSet
		clone.Arn = aws.String(mapped)
		rls = &clone
	}

	out, err := imp.api.CreateDataSet(ctx, &quicksight.CreateDataSetInput{
		AwsAccountId:              aws.String(imp.account),
		DataSetId:                 aws.String(newID),
		Name:                      aws.String(imp.targetID(ds.Name)),
		PhysicalTableMap:          physical,
		LogicalTableMap:           logical,
		ImportMode:                ds.ImportMode,
		Permissions:               imp.remapPermissions(ds.Permissions),
		RowLevelPermissionDataSet: rls,
		DataSetUsageConfiguration: ds.UsageConfiguration,
	})
	switch {
	case err == nil:
		ids.Set(ds.DataSetID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionCreated, aws.ToString(out.Arn)
		return ar
	case awsapi.IsResourceExists(err):
		return imp.resolveDatasetConflict(ctx, ar, ds, newID, physical, logical, rls, ids)
	default:
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
}

func (imp *Importer) resolveDatasetConflict(ctx context.Context, ar AssetResult, ds bundle.Dataset, newID string, physical map[string]types.PhysicalTable, logical map[string]types.LogicalTable, rls *types.RowLevelPermissionDataSet, ids *IDMap) AssetResult {
	arn := imp.syntheticARN(model.TypeDataset, newID)

	switch imp.opts.Strategy {
	case StrategySkip:
		ids.Set(ds.DataSetID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionSkipped, arn, "dataset already exists"
		return ar

	case StrategyOverwrite:
		err := imp.snapshot(model.TypeDataset, newID, func() (any, error) {
			return imp.api.DescribeDataSet(ctx, &quicksight.DescribeDataSetInput{
				AwsAccountId: aws.String(imp.account),
				DataSetId:    aws.String(newID),
			})
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		out, err := imp.api.UpdateDataSet(ctx, &quicksight.UpdateDataSetInput{
			AwsAccountId:              aws.String(imp.account),
			DataSetId:                 aws.String(newID),
			Name:                      aws.String(imp.targetID(ds.Name)),
			PhysicalTableMap:          physical,
			LogicalTableMap:           logical,
			ImportMode:                ds.ImportMode,
			RowLevelPermissionDataSet: rls,
			DataSetUsageConfiguration: ds.UsageConfiguration,
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		ids.Set(ds.DataSetID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionUpdated, aws.ToString(out.Arn)
		return ar

	default:
		ar.Action, ar.Error = ActionFailed, conflictError(model.TypeDataset, newID)
		return ar
	}
}

func (imp *Importer) importTheme(ctx context.Context, ref model.AssetRef, th bundle.Theme, ids *IDMap) AssetResult {
	newID := imp.targetID(th.ThemeID)
	ar := AssetResult{Ref: ref, TargetID: newID}

	if imp.opts.DryRun {
		arn := imp.syntheticARN(model.TypeTheme, newID)
		ids.Set(th.ThemeID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionPlanned, arn, "would create theme"
		return ar
	}

	out, err := imp.api.CreateTheme(ctx, &quicksight.CreateThemeInput{
		AwsAccountId:  aws.String(imp.account),
		ThemeId:       aws.String(newID),
		Name:          aws.String(imp.targetID(th.Name)),
		BaseThemeId:   aws.String(th.BaseThemeID),
		Configuration: th.Configuration,
		Permissions:   imp.remapPermissions(th.Permissions),
	})
	switch {
	case err == nil:
		ids.Set(th.ThemeID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionCreated, aws.ToString(out.Arn)
		return ar
	case awsapi.IsResourceExists(err):
		return imp.resolveThemeConflict(ctx, ar, th, newID, ids)
	default:
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
}

func (imp *Importer) resolveThemeConflict(ctx context.Context, ar AssetResult, th bundle.Theme, newID string, ids *IDMap) AssetResult {
	arn := imp.syntheticARN(model.TypeTheme, newID)

	switch imp.opts.Strategy {
	case StrategySkip:
		ids.Set(th.ThemeID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionSkipped, arn, "theme already exists"
		return ar

	case StrategyOverwrite:
		err := imp.snapshot(model.TypeTheme, newID, func() (any, error) {
			return imp.api.DescribeTheme(ctx, &quicksight.DescribeThemeInput{
				AwsAccountId: aws.String(imp.account),
				ThemeId:      aws.String(newID),
			})
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		out, err := imp.api.UpdateTheme(ctx, &quicksight.UpdateThemeInput{
			AwsAccountId:  aws.String(imp.account),
			ThemeId:       aws.String(newID),
			Name:          aws.String(imp.targetID(th.Name)),
			BaseThemeId:   aws.String(th.BaseThemeID),
			Configuration: th.Configuration,
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		ids.Set(th.ThemeID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionUpdated, aws.ToString(out.Arn)
		return ar

	default:
		ar.Action, ar.Error = ActionFailed, conflictError(model.TypeTheme, newID)
		return ar
	}
}

// remapDefinition rewrites the dataset declarations of an analysis
// definition to the target account. The returned definition shares
// everything but the declaration slice with the input.
func remapDefinition(def *types.AnalysisDefinition, ids *IDMap) (*types.AnalysisDefinition, error) {
	out := *def
	decls := make([]types.DataSetIdentifierDeclaration, len(def.DataSetIdentifierDeclarations))
	copy(decls, def.DataSetIdentifierDeclarations)
	for i := range decls {
		mapped, err := ids.ARN(model.IDFromARN(aws.ToString(decls[i].DataSetArn)))
		if err != nil {
			return nil, err
		}
		decls[i].DataSetArn = aws.String(mapped)
	}
	out.DataSetIdentifierDeclarations = decls
	return &out, nil
}

// themeARN resolves the ARN the imported analysis should reference. Custom
// themes map to their imported counterpart; AWS starter themes pass
// through untouched since they exist in every account.
func (imp *Importer) themeARN(b *bundle.Bundle, ids *IDMap) (string, error) {
	arn := b.Analysis.ThemeARN
	if arn == "" || model.AccountFromARN(arn) == "aws" {
		return arn, nil
	}
	return ids.ARN(model.IDFromARN(arn))
}

func (imp *Importer) importAnalysis(ctx context.Context, ref model.AssetRef, b *bundle.Bundle, ids *IDMap) AssetResult {
	newID := imp.targetID(b.Analysis.AnalysisID)
	ar := AssetResult{Ref: ref, TargetID: newID}

	if imp.opts.DryRun {
		arn := imp.syntheticARN(model.TypeAnalysis, newID)
		ids.Set(b.Analysis.AnalysisID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionPlanned, arn, "would create analysis"
		return ar
	}

	def, err := remapDefinition(b.Analysis.Definition, ids)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
	themeARN, err := imp.themeARN(b, ids)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}

	input := &quicksight.CreateAnalysisInput{
		AwsAccountId: aws.String(imp.account),
		AnalysisId:   aws.String(newID),
		Name:         aws.String(imp.targetID(b.Analysis.Name)),
		Definition:   def,
		Permissions:  imp.remapPermissions(b.Analysis.Permissions),
	}
	if themeARN != "" {
		input.ThemeArn = aws.String(themeARN)
	}

	out, err := imp.api.CreateAnalysis(ctx, input)
	switch {
	case err == nil:
		ids.Set(b.Analysis.AnalysisID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionCreated, aws.ToString(out.Arn)
		return ar
	case awsapi.IsResourceExists(err):
		return imp.resolveAnalysisConflict(ctx, ar, b, newID, def, themeARN, ids)
	default:
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
}

func (imp *Importer) resolveAnalysisConflict(ctx context.Context, ar AssetResult, b *bundle.Bundle, newID string, def *types.AnalysisDefinition, themeARN string, ids *IDMap) AssetResult {
	arn := imp.syntheticARN(model.TypeAnalysis, newID)

	switch imp.opts.Strategy {
	case StrategySkip:
		ids.Set(b.Analysis.AnalysisID, arn)
		ar.Action, ar.TargetARN, ar.Message = ActionSkipped, arn, "analysis already exists"
		return ar

	case StrategyOverwrite:
		err := imp.snapshot(model.TypeAnalysis, newID, func() (any, error) {
			return imp.api.DescribeAnalysisDefinition(ctx, &quicksight.DescribeAnalysisDefinitionInput{
				AwsAccountId: aws.String(imp.account),
				AnalysisId:   aws.String(newID),
			})
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		input := &quicksight.UpdateAnalysisInput{
			AwsAccountId: aws.String(imp.account),
			AnalysisId:   aws.String(newID),
			Name:         aws.String(imp.targetID(b.Analysis.Name)),
			Definition:   def,
		}
		if themeARN != "" {
			input.ThemeArn = aws.String(themeARN)
		}
		out, err := imp.api.UpdateAnalysis(ctx, input)
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		ids.Set(b.Analysis.AnalysisID, aws.ToString(out.Arn))
		ar.Action, ar.TargetARN = ActionUpdated, aws.ToString(out.Arn)
		return ar

	default:
		ar.Action, ar.Error = ActionFailed, conflictError(model.TypeAnalysis, newID)
		return ar
	}
}

// dashboardDefinition converts an analysis definition into a dashboard
// version definition. The two SDK shapes carry identical fields, so a JSON
// round trip is the lossless conversion.
func dashboardDefinition(def *types.AnalysisDefinition) (*types.DashboardVersionDefinition, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis definition: %w", err)
	}
	var out types.DashboardVersionDefinition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert analysis definition to dashboard definition: %w", err)
	}
	return &out, nil
}

// dashboardPermissions returns the permissions for the derived dashboard:
// the configured override if present, otherwise the analysis permissions
// re-granted with dashboard actions.
func (imp *Importer) dashboardPermissions(b *bundle.Bundle) []types.ResourcePermission {
	if len(imp.opts.DashboardPermissions) > 0 {
		return imp.remapPermissions(imp.opts.DashboardPermissions)
	}
	var out []types.ResourcePermission
	for _, perm := range b.Analysis.Permissions {
		out = append(out, types.ResourcePermission{
			Principal: aws.String(model.ReplaceAccountID(aws.ToString(perm.Principal), imp.account)),
			Actions:   dashboardActions,
		})
	}
	return out
}

func (imp *Importer) importDashboard(ctx context.Context, ref model.AssetRef, b *bundle.Bundle, ids *IDMap) AssetResult {
	newID := imp.targetID(b.DashboardID())
	ar := AssetResult{Ref: ref, TargetID: newID}

	if imp.opts.DryRun {
		arn := imp.syntheticARN(model.TypeDashboard, newID)
		ar.Action, ar.TargetARN, ar.Message = ActionPlanned, arn, "would create and publish dashboard"
		return ar
	}

	def, err := remapDefinition(b.Analysis.Definition, ids)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
	dashDef, err := dashboardDefinition(def)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
	themeARN, err := imp.themeARN(b, ids)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}

	input := &quicksight.CreateDashboardInput{
		AwsAccountId:            aws.String(imp.account),
		DashboardId:             aws.String(newID),
		Name:                    aws.String(imp.targetID(b.Analysis.Name)),
		Definition:              dashDef,
		DashboardPublishOptions: imp.opts.PublishOptions.toSDK(),
		Permissions:             imp.dashboardPermissions(b),
	}
	if themeARN != "" {
		input.ThemeArn = aws.String(themeARN)
	}

	out, err := imp.api.CreateDashboard(ctx, input)
	switch {
	case err == nil:
		ar.Action, ar.TargetARN = ActionCreated, aws.ToString(out.Arn)
		return imp.publishDashboard(ctx, ar, newID, aws.ToString(out.VersionArn))
	case awsapi.IsResourceExists(err):
		return imp.resolveDashboardConflict(ctx, ar, b, newID, dashDef, themeARN)
	default:
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
}

func (imp *Importer) resolveDashboardConflict(ctx context.Context, ar AssetResult, b *bundle.Bundle, newID string, dashDef *types.DashboardVersionDefinition, themeARN string) AssetResult {
	switch imp.opts.Strategy {
	case StrategySkip:
		ar.Action, ar.TargetARN, ar.Message = ActionSkipped, imp.syntheticARN(model.TypeDashboard, newID), "dashboard already exists"
		return ar

	case StrategyOverwrite:
		err := imp.snapshot(model.TypeDashboard, newID, func() (any, error) {
			return imp.api.DescribeDashboardDefinition(ctx, &quicksight.DescribeDashboardDefinitionInput{
				AwsAccountId: aws.String(imp.account),
				DashboardId:  aws.String(newID),
			})
		})
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		input := &quicksight.UpdateDashboardInput{
			AwsAccountId:            aws.String(imp.account),
			DashboardId:             aws.String(newID),
			Name:                    aws.String(imp.targetID(b.Analysis.Name)),
			Definition:              dashDef,
			DashboardPublishOptions: imp.opts.PublishOptions.toSDK(),
		}
		if themeARN != "" {
			input.ThemeArn = aws.String(themeARN)
		}
		out, err := imp.api.UpdateDashboard(ctx, input)
		if err != nil {
			ar.Action, ar.Error = ActionFailed, err
			return ar
		}
		ar.Action, ar.TargetARN = ActionUpdated, aws.ToString(out.Arn)
		return imp.publishDashboard(ctx, ar, newID, aws.ToString(out.VersionArn))

	default:
		ar.Action, ar.Error = ActionFailed, conflictError(model.TypeDashboard, newID)
		return ar
	}
}

// publishDashboard makes the just-written dashboard version the published
// one. Create and Update leave the new version as a draft; the version
// number comes off the returned version ARN.
func (imp *Importer) publishDashboard(ctx context.Context, ar AssetResult, dashboardID, versionARN string) AssetResult {
	if imp.opts.SkipPublish {
		ar.Message = "dashboard left unpublished"
		return ar
	}

	version, err := model.DashboardVersionFromARN(versionARN)
	if err != nil {
		ar.Action, ar.Error = ActionFailed, err
		return ar
	}
	if _, err := imp.api.UpdateDashboardPublishedVersion(ctx, &quicksight.UpdateDashboardPublishedVersionInput{
		AwsAccountId:  aws.String(imp.account),
		DashboardId:   aws.String(dashboardID),
		VersionNumber: aws.Int64(version),
	}); err != nil {
		ar.Action, ar.Error = ActionFailed, fmt.Errorf("failed to publish dashboard version %d: %w", version, err)
		return ar
	}

	logging.Debug("published dashboard version",
		logging.Asset(dashboardID),
		slog.Int64("version", version),
	)
	ar.Message = fmt.Sprintf("published version %d", version)
	return ar
}
