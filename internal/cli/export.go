package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/export"
	"github.com/dimkharitonov/quicksightsync/internal/ui"
	"github.com/dimkharitonov/quicksightsync/internal/ui/tui"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export analyses and their dependencies to bundle files",
		UsageText: "qss export [options] [analysis-id...]",
		Description: `Export one or more analyses from the source account. Each bundle
   captures the analysis definition, its datasets, the row-level-security
   datasets gating them, the data sources they read from, and any custom
   theme.

   With no arguments an interactive picker lists the analyses in the
   account.

   Examples:
     qss export 4e2dd6a1-5b3e-4a96-aaa0-eae37e35e274
     qss export --profile prod --format yaml -o ./bundles an-1 an-2`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "AWS shared-config profile for the source account",
			},
			&cli.StringFlag{
				Name:    "region",
				Aliases: []string{"r"},
				Usage:   "AWS region of the source account",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory bundle files are written to",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Bundle format (json or yaml)",
			},
		},
		Action: runExport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.OutputDir
	opts.Format = cfg.GetFormat()
	opts.ToolVersion = Version
	if dir := cmd.String("output"); dir != "" {
		opts.OutputDir = dir
	}
	if f := cmd.String("format"); f != "" {
		format, err := bundle.ParseFormat(f)
		if err != nil {
			return err
		}
		opts.Format = format
	}

	analysisIDs := cmd.Args().Slice()
	if len(analysisIDs) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("no analysis IDs given; pass them as arguments or run interactively")
	}

	session, err := SessionFactory(ctx, stringOr(cmd.String("profile"), cfg.AWS.Profile), stringOr(cmd.String("region"), cfg.AWS.Region))
	if err != nil {
		return err
	}

	exp := export.New(session.QuickSight, session.AccountID, session.Region, opts)

	if len(analysisIDs) == 0 {
		analysisIDs, err = pickAnalyses(ctx, exp)
		if err != nil {
			return err
		}
		if len(analysisIDs) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}
	}

	for _, id := range analysisIDs {
		path, b, err := exp.ExportToFile(ctx, id)
		if err != nil {
			fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", id, err)))
			return err
		}
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s (%d assets) -> %s", id, len(b.Refs()), path)))
	}

	return nil
}

// pickAnalyses lists the account's analyses and lets the user choose
// interactively.
func pickAnalyses(ctx context.Context, exp *export.Exporter) ([]string, error) {
	summaries, err := exp.ListAnalyses(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, errors.New("no analyses found in the source account")
	}

	items := make([]tui.PickerItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, tui.PickerItem{
			ID:   aws.ToString(s.AnalysisId),
			Name: aws.ToString(s.Name),
		})
	}

	result, err := tui.RunPicker(items)
	if err != nil {
		return nil, fmt.Errorf("analysis picker failed: %w", err)
	}
	if result.Action != tui.PickerActionSelect {
		return nil, nil
	}

	ids := make([]string, 0, len(result.Selected))
	for _, item := range result.Selected {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// stringOr returns the first non-empty string.
func stringOr(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
