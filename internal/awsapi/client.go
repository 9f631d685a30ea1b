// Package awsapi wraps the AWS SDK clients behind narrow interfaces so the
// export and import pipelines can be exercised against fakes.
package awsapi

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/dimkharitonov/quicksightsync/internal/logging"
)

// QuickSight is the subset of the QuickSight control-plane API the tool
// calls. It matches *quicksight.Client method signatures exactly.
type QuickSight interface {
	DescribeAnalysisDefinition(ctx context.Context, params *quicksight.DescribeAnalysisDefinitionInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisDefinitionOutput, error)
	DescribeAnalysisPermissions(ctx context.Context, params *quicksight.DescribeAnalysisPermissionsInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeAnalysisPermissionsOutput, error)
	DescribeDataSet(ctx context.Context, params *quicksight.DescribeDataSetInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeDataSetOutput, error)
	DescribeDataSetPermissions(ctx context.Context, params *quicksight.DescribeDataSetPermissionsInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeDataSetPermissionsOutput, error)
	DescribeDataSource(ctx context.Context, params *quicksight.DescribeDataSourceInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeDataSourceOutput, error)
	DescribeDataSourcePermissions(ctx context.Context, params *quicksight.DescribeDataSourcePermissionsInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeDataSourcePermissionsOutput, error)
	DescribeTheme(ctx context.Context, params *quicksight.DescribeThemeInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeThemeOutput, error)
	DescribeThemePermissions(ctx context.Context, params *quicksight.DescribeThemePermissionsInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeThemePermissionsOutput, error)
	DescribeDashboardDefinition(ctx context.Context, params *quicksight.DescribeDashboardDefinitionInput, optFns ...func(*quicksight.Options)) (*quicksight.DescribeDashboardDefinitionOutput, error)

	CreateDataSource(ctx context.Context, params *quicksight.CreateDataSourceInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateDataSourceOutput, error)
	UpdateDataSource(ctx context.Context, params *quicksight.UpdateDataSourceInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateDataSourceOutput, error)
	CreateDataSet(ctx context.Context, params *quicksight.CreateDataSetInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateDataSetOutput, error)
	UpdateDataSet(ctx context.Context, params *quicksight.UpdateDataSetInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateDataSetOutput, error)
	CreateTheme(ctx context.Context, params *quicksight.CreateThemeInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateThemeOutput, error)
	UpdateTheme(ctx context.Context, params *quicksight.UpdateThemeInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateThemeOutput, error)
	CreateAnalysis(ctx context.Context, params *quicksight.CreateAnalysisInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateAnalysisOutput, error)
	UpdateAnalysis(ctx context.Context, params *quicksight.UpdateAnalysisInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateAnalysisOutput, error)
	CreateDashboard(ctx context.Context, params *quicksight.CreateDashboardInput, optFns ...func(*quicksight.Options)) (*quicksight.CreateDashboardOutput, error)
	UpdateDashboard(ctx context.Context, params *quicksight.UpdateDashboardInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateDashboardOutput, error)
	UpdateDashboardPublishedVersion(ctx context.Context, params *quicksight.UpdateDashboardPublishedVersionInput, optFns ...func(*quicksight.Options)) (*quicksight.UpdateDashboardPublishedVersionOutput, error)

	ListAnalyses(ctx context.Context, params *quicksight.ListAnalysesInput, optFns ...func(*quicksight.Options)) (*quicksight.ListAnalysesOutput, error)
	ListDashboards(ctx context.Context, params *quicksight.ListDashboardsInput, optFns ...func(*quicksight.Options)) (*quicksight.ListDashboardsOutput, error)
	ListDataSets(ctx context.Context, params *quicksight.ListDataSetsInput, optFns ...func(*quicksight.Options)) (*quicksight.ListDataSetsOutput, error)
	ListDataSources(ctx context.Context, params *quicksight.ListDataSourcesInput, optFns ...func(*quicksight.Options)) (*quicksight.ListDataSourcesOutput, error)
}

// STS is the subset of the STS API the tool calls.
type STS interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Compile-time checks that the real SDK clients satisfy the interfaces.
var (
	_ QuickSight = (*quicksight.Client)(nil)
	_ STS        = (*sts.Client)(nil)
)

// Session bundles the clients for one account/region with the resolved
// account ID.
type Session struct {
	QuickSight QuickSight
	STS        STS
	AccountID  string
	Region     string
}

// NewSession builds clients from the standard AWS credential chain for the
// given shared-config profile and resolves the account ID via STS.
// An empty region falls back to the profile's configured region.
func NewSession(ctx context.Context, profile, region string) (*Session, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeAdaptive),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	stsClient := sts.NewFromConfig(cfg)
	identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account identity: %w", err)
	}

	session := &Session{
		QuickSight: quicksight.NewFromConfig(cfg),
		STS:        stsClient,
		AccountID:  aws.ToString(identity.Account),
		Region:     cfg.Region,
	}

	logging.Debug("AWS session established",
		logging.Account(session.AccountID),
		logging.Region(session.Region),
	)

	return session, nil
}
