package awsapi

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Fake is an in-memory QuickSight control plane for tests. It stores
// whatever the Create calls send and serves it back from the Describe and
// List calls, with the same conflict and not-found errors the real service
// returns. All methods are safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	AccountID string
	Region    string

	DataSources map[string]*quicksight.CreateDataSourceInput
	DataSets    map[string]*quicksight.CreateDataSetInput
	Themes      map[string]*quicksight.CreateThemeInput
	Analyses    map[string]*quicksight.CreateAnalysisInput
	Dashboards  map[string]*quicksight.CreateDashboardInput

	// DashboardVersions tracks the latest version number per dashboard;
	// PublishedVersions tracks which version is published.
	DashboardVersions map[string]int64
	PublishedVersions map[string]int64

	// Permissions holds the latest permissions per asset ARN.
	Permissions map[string][]types.ResourcePermission

	// Failures injects an error for a method by name (e.g. "CreateDataSet").
	Failures map[string]error

	// Calls records method names in invocation order.
	Calls []string
}

// NewFake creates an empty fake control plane for the given account.
func NewFake(accountID, region string) *Fake {
	return &Fake{
		AccountID:         accountID,
		Region:            region,
		DataSources:       make(map[string]*quicksight.CreateDataSourceInput),
		DataSets:          make(map[string]*quicksight.CreateDataSetInput),
		Themes:            make(map[string]*quicksight.CreateThemeInput),
		Analyses:          make(map[string]*quicksight.CreateAnalysisInput),
		Dashboards:        make(map[string]*quicksight.CreateDashboardInput),
		DashboardVersions: make(map[string]int64),
		PublishedVersions: make(map[string]int64),
		Permissions:       make(map[string][]types.ResourcePermission),
		Failures:          make(map[string]error),
	}
}

var _ QuickSight = (*Fake)(nil)

// arn builds the ARN the fake account would assign an asset.
func (f *Fake) arn(kind, id string) string {
	return fmt.Sprintf("arn:aws:quicksight:%s:%s:%s/%s", f.Region, f.AccountID, kind, id)
}

// begin records the call and returns any injected failure.
func (f *Fake) begin(method string) error {
	f.Calls = append(f.Calls, method)
	return f.Failures[method]
}

func notFound(kind, id string) error {
	return &types.ResourceNotFoundException{
		Message: aws.String(fmt.Sprintf("%s %s is not found", kind, id)),
	}
}

func alreadyExists(kind, id string) error {
	return &types.ResourceExistsException{
		Message: aws.String(fmt.Sprintf("%s %s already exists", kind, id)),
	}
}

func (f *Fake) CreateDataSource(_ context.Context, params *quicksight.CreateDataSourceInput, _ ...func(*quicksight.Options)) (*quicksight.CreateDataSourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateDataSource"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSourceId)
	if _, exists := f.DataSources[id]; exists {
		return nil, alreadyExists("DataSource", id)
	}
	f.DataSources[id] = params
	arn := f.arn("datasource", id)
	f.Permissions[arn] = params.Permissions
	return &quicksight.CreateDataSourceOutput{Arn: aws.String(arn), DataSourceId: params.DataSourceId}, nil
}

func (f *Fake) UpdateDataSource(_ context.Context, params *quicksight.UpdateDataSourceInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateDataSourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateDataSource"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSourceId)
	existing, exists := f.DataSources[id]
	if !exists {
		return nil, notFound("DataSource", id)
	}
	existing.Name = params.Name
	existing.DataSourceParameters = params.DataSourceParameters
	existing.SslProperties = params.SslProperties
	existing.VpcConnectionProperties = params.VpcConnectionProperties
	return &quicksight.UpdateDataSourceOutput{Arn: aws.String(f.arn("datasource", id)), DataSourceId: params.DataSourceId}, nil
}

func (f *Fake) DescribeDataSource(_ context.Context, params *quicksight.DescribeDataSourceInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeDataSourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeDataSource"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSourceId)
	stored, exists := f.DataSources[id]
	if !exists {
		return nil, notFound("DataSource", id)
	}
	return &quicksight.DescribeDataSourceOutput{
		DataSource: &types.DataSource{
			Arn:                     aws.String(f.arn("datasource", id)),
			DataSourceId:            stored.DataSourceId,
			Name:                    stored.Name,
			Type:                    stored.Type,
			DataSourceParameters:    stored.DataSourceParameters,
			SslProperties:           stored.SslProperties,
			VpcConnectionProperties: stored.VpcConnectionProperties,
		},
	}, nil
}

func (f *Fake) DescribeDataSourcePermissions(_ context.Context, params *quicksight.DescribeDataSourcePermissionsInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeDataSourcePermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeDataSourcePermissions"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSourceId)
	if _, exists := f.DataSources[id]; !exists {
		return nil, notFound("DataSource", id)
	}
	arn := f.arn("datasource", id)
	return &quicksight.DescribeDataSourcePermissionsOutput{
		DataSourceArn: aws.String(arn),
		DataSourceId:  params.DataSourceId,
		Permissions:   f.Permissions[arn],
	}, nil
}

func (f *Fake) CreateDataSet(_ context.Context, params *quicksight.CreateDataSetInput, _ ...func(*quicksight.Options)) (*quicksight.CreateDataSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateDataSet"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSetId)
	if _, exists := f.DataSets[id]; exists {
		return nil, alreadyExists("DataSet", id)
	}
	f.DataSets[id] = params
	arn := f.arn("dataset", id)
	f.Permissions[arn] = params.Permissions
	return &quicksight.CreateDataSetOutput{Arn: aws.String(arn), DataSetId: params.DataSetId}, nil
}

func (f *Fake) UpdateDataSet(_ context.Context, params *quicksight.UpdateDataSetInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateDataSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateDataSet"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSetId)
	existing, exists := f.DataSets[id]
	if !exists {
		return nil, notFound("DataSet", id)
	}
	existing.Name = params.Name
	existing.PhysicalTableMap = params.PhysicalTableMap
	existing.LogicalTableMap = params.LogicalTableMap
	existing.ImportMode = params.ImportMode
	existing.RowLevelPermissionDataSet = params.RowLevelPermissionDataSet
	existing.DataSetUsageConfiguration = params.DataSetUsageConfiguration
	return &quicksight.UpdateDataSetOutput{Arn: aws.String(f.arn("dataset", id)), DataSetId: params.DataSetId}, nil
}

func (f *Fake) DescribeDataSet(_ context.Context, params *quicksight.DescribeDataSetInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeDataSetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeDataSet"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSetId)
	stored, exists := f.DataSets[id]
	if !exists {
		return nil, notFound("DataSet", id)
	}
	return &quicksight.DescribeDataSetOutput{
		DataSet: &types.DataSet{
			Arn:                       aws.String(f.arn("dataset", id)),
			DataSetId:                 stored.DataSetId,
			Name:                      stored.Name,
			PhysicalTableMap:          stored.PhysicalTableMap,
			LogicalTableMap:           stored.LogicalTableMap,
			ImportMode:                stored.ImportMode,
			RowLevelPermissionDataSet: stored.RowLevelPermissionDataSet,
			DataSetUsageConfiguration: stored.DataSetUsageConfiguration,
		},
	}, nil
}

func (f *Fake) DescribeDataSetPermissions(_ context.Context, params *quicksight.DescribeDataSetPermissionsInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeDataSetPermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeDataSetPermissions"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DataSetId)
	if _, exists := f.DataSets[id]; !exists {
		return nil, notFound("DataSet", id)
	}
	arn := f.arn("dataset", id)
	return &quicksight.DescribeDataSetPermissionsOutput{
		DataSetArn:  aws.String(arn),
		DataSetId:   params.DataSetId,
		Permissions: f.Permissions[arn],
	}, nil
}

func (f *Fake) CreateTheme(_ context.Context, params *quicksight.CreateThemeInput, _ ...func(*quicksight.Options)) (*quicksight.CreateThemeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateTheme"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.ThemeId)
	if _, exists := f.Themes[id]; exists {
		return nil, alreadyExists("Theme", id)
	}
	f.Themes[id] = params
	arn := f.arn("theme", id)
	f.Permissions[arn] = params.Permissions
	return &quicksight.CreateThemeOutput{Arn: aws.String(arn), ThemeId: params.ThemeId}, nil
}

func (f *Fake) UpdateTheme(_ context.Context, params *quicksight.UpdateThemeInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateThemeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateTheme"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.ThemeId)
	existing, exists := f.Themes[id]
	if !exists {
		return nil, notFound("Theme", id)
	}
	existing.Name = params.Name
	existing.BaseThemeId = params.BaseThemeId
	existing.Configuration = params.Configuration
	return &quicksight.UpdateThemeOutput{Arn: aws.String(f.arn("theme", id)), ThemeId: params.ThemeId}, nil
}

func (f *Fake) DescribeTheme(_ context.Context, params *quicksight.DescribeThemeInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeThemeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeTheme"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.ThemeId)
	stored, exists := f.Themes[id]
	if !exists {
		return nil, notFound("Theme", id)
	}
	return &quicksight.DescribeThemeOutput{
		Theme: &types.Theme{
			Arn:     aws.String(f.arn("theme", id)),
			ThemeId: stored.ThemeId,
			Name:    stored.Name,
			Version: &types.ThemeVersion{
				BaseThemeId:   stored.BaseThemeId,
				Configuration: stored.Configuration,
			},
		},
	}, nil
}

func (f *Fake) DescribeThemePermissions(_ context.Context, params *quicksight.DescribeThemePermissionsInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeThemePermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeThemePermissions"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.ThemeId)
	if _, exists := f.Themes[id]; !exists {
		return nil, notFound("Theme", id)
	}
	arn := f.arn("theme", id)
	return &quicksight.DescribeThemePermissionsOutput{
		ThemeArn:    aws.String(arn),
		ThemeId:     params.ThemeId,
		Permissions: f.Permissions[arn],
	}, nil
}

func (f *Fake) CreateAnalysis(_ context.Context, params *quicksight.CreateAnalysisInput, _ ...func(*quicksight.Options)) (*quicksight.CreateAnalysisOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateAnalysis"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.AnalysisId)
	if _, exists := f.Analyses[id]; exists {
		return nil, alreadyExists("Analysis", id)
	}
	f.Analyses[id] = params
	arn := f.arn("analysis", id)
	f.Permissions[arn] = params.Permissions
	return &quicksight.CreateAnalysisOutput{Arn: aws.String(arn), AnalysisId: params.AnalysisId}, nil
}

func (f *Fake) UpdateAnalysis(_ context.Context, params *quicksight.UpdateAnalysisInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateAnalysisOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateAnalysis"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.AnalysisId)
	existing, exists := f.Analyses[id]
	if !exists {
		return nil, notFound("Analysis", id)
	}
	existing.Name = params.Name
	existing.Definition = params.Definition
	existing.ThemeArn = params.ThemeArn
	return &quicksight.UpdateAnalysisOutput{Arn: aws.String(f.arn("analysis", id)), AnalysisId: params.AnalysisId}, nil
}

func (f *Fake) DescribeAnalysisDefinition(_ context.Context, params *quicksight.DescribeAnalysisDefinitionInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisDefinitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeAnalysisDefinition"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.AnalysisId)
	stored, exists := f.Analyses[id]
	if !exists {
		return nil, notFound("Analysis", id)
	}
	return &quicksight.DescribeAnalysisDefinitionOutput{
		AnalysisId: stored.AnalysisId,
		Name:       stored.Name,
		Definition: stored.Definition,
		ThemeArn:   stored.ThemeArn,
	}, nil
}

func (f *Fake) DescribeAnalysisPermissions(_ context.Context, params *quicksight.DescribeAnalysisPermissionsInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisPermissionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeAnalysisPermissions"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.AnalysisId)
	if _, exists := f.Analyses[id]; !exists {
		return nil, notFound("Analysis", id)
	}
	arn := f.arn("analysis", id)
	return &quicksight.DescribeAnalysisPermissionsOutput{
		AnalysisArn: aws.String(arn),
		AnalysisId:  params.AnalysisId,
		Permissions: f.Permissions[arn],
	}, nil
}

func (f *Fake) CreateDashboard(_ context.Context, params *quicksight.CreateDashboardInput, _ ...func(*quicksight.Options)) (*quicksight.CreateDashboardOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateDashboard"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DashboardId)
	if _, exists := f.Dashboards[id]; exists {
		return nil, alreadyExists("Dashboard", id)
	}
	f.Dashboards[id] = params
	f.DashboardVersions[id] = 1
	arn := f.arn("dashboard", id)
	f.Permissions[arn] = params.Permissions
	return &quicksight.CreateDashboardOutput{
		Arn:         aws.String(arn),
		DashboardId: params.DashboardId,
		VersionArn:  aws.String(arn + "/version/1"),
	}, nil
}

func (f *Fake) UpdateDashboard(_ context.Context, params *quicksight.UpdateDashboardInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateDashboardOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateDashboard"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DashboardId)
	existing, exists := f.Dashboards[id]
	if !exists {
		return nil, notFound("Dashboard", id)
	}
	existing.Name = params.Name
	existing.Definition = params.Definition
	existing.DashboardPublishOptions = params.DashboardPublishOptions
	existing.ThemeArn = params.ThemeArn
	f.DashboardVersions[id]++
	arn := f.arn("dashboard", id)
	return &quicksight.UpdateDashboardOutput{
		Arn:         aws.String(arn),
		DashboardId: params.DashboardId,
		VersionArn:  aws.String(fmt.Sprintf("%s/version/%d", arn, f.DashboardVersions[id])),
	}, nil
}

func (f *Fake) DescribeDashboardDefinition(_ context.Context, params *quicksight.DescribeDashboardDefinitionInput, _ ...func(*quicksight.Options)) (*quicksight.DescribeDashboardDefinitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DescribeDashboardDefinition"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DashboardId)
	stored, exists := f.Dashboards[id]
	if !exists {
		return nil, notFound("Dashboard", id)
	}
	return &quicksight.DescribeDashboardDefinitionOutput{
		DashboardId: stored.DashboardId,
		Name:        stored.Name,
		Definition:  stored.Definition,
		ThemeArn:    stored.ThemeArn,
	}, nil
}

func (f *Fake) UpdateDashboardPublishedVersion(_ context.Context, params *quicksight.UpdateDashboardPublishedVersionInput, _ ...func(*quicksight.Options)) (*quicksight.UpdateDashboardPublishedVersionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateDashboardPublishedVersion"); err != nil {
		return nil, err
	}
	id := aws.ToString(params.DashboardId)
	if _, exists := f.Dashboards[id]; !exists {
		return nil, notFound("Dashboard", id)
	}
	version := aws.ToInt64(params.VersionNumber)
	if version < 1 || version > f.DashboardVersions[id] {
		return nil, &types.InvalidParameterValueException{
			Message: aws.String(fmt.Sprintf("dashboard %s has no version %d", id, version)),
		}
	}
	f.PublishedVersions[id] = version
	return &quicksight.UpdateDashboardPublishedVersionOutput{
		DashboardArn: aws.String(f.arn("dashboard", id)),
		DashboardId:  params.DashboardId,
	}, nil
}

func (f *Fake) ListAnalyses(_ context.Context, _ *quicksight.ListAnalysesInput, _ ...func(*quicksight.Options)) (*quicksight.ListAnalysesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListAnalyses"); err != nil {
		return nil, err
	}
	out := &quicksight.ListAnalysesOutput{}
	for _, id := range sortedKeys(f.Analyses) {
		out.AnalysisSummaryList = append(out.AnalysisSummaryList, types.AnalysisSummary{
			AnalysisId: aws.String(id),
			Arn:        aws.String(f.arn("analysis", id)),
			Name:       f.Analyses[id].Name,
			Status:     types.ResourceStatusCreationSuccessful,
		})
	}
	return out, nil
}

func (f *Fake) ListDashboards(_ context.Context, _ *quicksight.ListDashboardsInput, _ ...func(*quicksight.Options)) (*quicksight.ListDashboardsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListDashboards"); err != nil {
		return nil, err
	}
	out := &quicksight.ListDashboardsOutput{}
	for _, id := range sortedKeys(f.Dashboards) {
		out.DashboardSummaryList = append(out.DashboardSummaryList, types.DashboardSummary{
			DashboardId:            aws.String(id),
			Arn:                    aws.String(f.arn("dashboard", id)),
			Name:                   f.Dashboards[id].Name,
			PublishedVersionNumber: aws.Int64(f.PublishedVersions[id]),
		})
	}
	return out, nil
}

func (f *Fake) ListDataSets(_ context.Context, _ *quicksight.ListDataSetsInput, _ ...func(*quicksight.Options)) (*quicksight.ListDataSetsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListDataSets"); err != nil {
		return nil, err
	}
	out := &quicksight.ListDataSetsOutput{}
	for _, id := range sortedKeys(f.DataSets) {
		out.DataSetSummaries = append(out.DataSetSummaries, types.DataSetSummary{
			DataSetId:  aws.String(id),
			Arn:        aws.String(f.arn("dataset", id)),
			Name:       f.DataSets[id].Name,
			ImportMode: f.DataSets[id].ImportMode,
		})
	}
	return out, nil
}

func (f *Fake) ListDataSources(_ context.Context, _ *quicksight.ListDataSourcesInput, _ ...func(*quicksight.Options)) (*quicksight.ListDataSourcesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListDataSources"); err != nil {
		return nil, err
	}
	out := &quicksight.ListDataSourcesOutput{}
	for _, id := range sortedKeys(f.DataSources) {
		out.DataSources = append(out.DataSources, types.DataSource{
			DataSourceId: aws.String(id),
			Arn:          aws.String(f.arn("datasource", id)),
			Name:         f.DataSources[id].Name,
			Type:         f.DataSources[id].Type,
		})
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FakeSTS answers GetCallerIdentity with a fixed account.
type FakeSTS struct {
	Account string
}

var _ STS = (*FakeSTS)(nil)

func (f *FakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(fmt.Sprintf("arn:aws:iam::%s:user/test", f.Account)),
	}, nil
}
