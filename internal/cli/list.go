package cli

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/urfave/cli/v3"

	"github.com/dimkharitonov/quicksightsync/internal/awsapi"
	"github.com/dimkharitonov/quicksightsync/internal/ui"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List QuickSight assets in an account",
		UsageText: "qss list [options] <analyses|dashboards|datasets|datasources>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "AWS shared-config profile",
			},
			&cli.StringFlag{
				Name:    "region",
				Aliases: []string{"r"},
				Usage:   "AWS region",
			},
		},
		Action: runList,
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 1 {
		return fmt.Errorf("list requires exactly 1 argument: <analyses|dashboards|datasets|datasources>")
	}
	kind := args.Get(0)
	switch kind {
	case "analyses", "dashboards", "datasets", "datasources":
	default:
		return fmt.Errorf("unknown asset kind %q (valid: analyses, dashboards, datasets, datasources)", kind)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	session, err := SessionFactory(ctx, stringOr(cmd.String("profile"), cfg.AWS.Profile), stringOr(cmd.String("region"), cfg.AWS.Region))
	if err != nil {
		return err
	}

	switch kind {
	case "analyses":
		return listAnalyses(ctx, session)
	case "dashboards":
		return listDashboards(ctx, session)
	case "datasets":
		return listDataSets(ctx, session)
	default:
		return listDataSources(ctx, session)
	}
}

func listAnalyses(ctx context.Context, session *awsapi.Session) error {
	fmt.Println(ui.Header("Analyses in account " + session.AccountID))
	var nextToken *string
	for {
		out, err := session.QuickSight.ListAnalyses(ctx, &quicksight.ListAnalysesInput{
			AwsAccountId: aws.String(session.AccountID),
			NextToken:    nextToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}
		for _, s := range out.AnalysisSummaryList {
			printAsset(aws.ToString(s.AnalysisId), aws.ToString(s.Name))
		}
		if out.NextToken == nil {
			return nil
		}
		nextToken = out.NextToken
	}
}

func listDashboards(ctx context.Context, session *awsapi.Session) error {
	fmt.Println(ui.Header("Dashboards in account " + session.AccountID))
	var nextToken *string
	for {
		out, err := session.QuickSight.ListDashboards(ctx, &quicksight.ListDashboardsInput{
			AwsAccountId: aws.String(session.AccountID),
			NextToken:    nextToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list dashboards: %w", err)
		}
		for _, s := range out.DashboardSummaryList {
			printAsset(aws.ToString(s.DashboardId), aws.ToString(s.Name))
		}
		if out.NextToken == nil {
			return nil
		}
		nextToken = out.NextToken
	}
}

func listDataSets(ctx context.Context, session *awsapi.Session) error {
	fmt.Println(ui.Header("Datasets in account " + session.AccountID))
	var nextToken *string
	for {
		out, err := session.QuickSight.ListDataSets(ctx, &quicksight.ListDataSetsInput{
			AwsAccountId: aws.String(session.AccountID),
			NextToken:    nextToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list datasets: %w", err)
		}
		for _, s := range out.DataSetSummaries {
			printAsset(aws.ToString(s.DataSetId), aws.ToString(s.Name))
		}
		if out.NextToken == nil {
			return nil
		}
		nextToken = out.NextToken
	}
}

func listDataSources(ctx context.Context, session *awsapi.Session) error {
	fmt.Println(ui.Header("Data sources in account " + session.AccountID))
	var nextToken *string
	for {
		out, err := session.QuickSight.ListDataSources(ctx, &quicksight.ListDataSourcesInput{
			AwsAccountId: aws.String(session.AccountID),
			NextToken:    nextToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list data sources: %w", err)
		}
		for _, s := range out.DataSources {
			printAsset(aws.ToString(s.DataSourceId), aws.ToString(s.Name))
		}
		if out.NextToken == nil {
			return nil
		}
		nextToken = out.NextToken
	}
}

func printAsset(id, name string) {
	fmt.Printf("  %s  %s\n", ui.Bold(id), ui.Dim(name))
}
