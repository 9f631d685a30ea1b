package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/urfave/cli/v3"

	"github.com/dimkharitonov/quicksightsync/internal/backup"
	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/config"
	"github.com/dimkharitonov/quicksightsync/internal/importer"
	"github.com/dimkharitonov/quicksightsync/internal/ui"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import bundle files into the target account",
		UsageText: "qss import [options] <bundle-file...>",
		Description: `Import previously exported bundles. Assets are created in
   dependency order: data sources first, then datasets and themes, then the
   analysis, and finally a dashboard derived from the analysis.

   Examples:
     qss import bundles/an-1.json
     qss import --profile staging --on-conflict overwrite an-1.json
     qss import --dry-run --suffix -copy an-1.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "AWS shared-config profile for the target account",
			},
			&cli.StringFlag{
				Name:    "region",
				Aliases: []string{"r"},
				Usage:   "AWS region of the target account",
			},
			&cli.StringFlag{
				Name:  "on-conflict",
				Usage: "What to do when an asset already exists (fail, overwrite, skip)",
			},
			&cli.StringFlag{
				Name:  "suffix",
				Usage: "Suffix appended to imported asset IDs and names",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Plan the import without calling any write API",
			},
			&cli.BoolFlag{
				Name:  "skip-publish",
				Usage: "Leave the imported dashboard unpublished",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "Skip snapshots of target assets before overwriting",
			},
		},
		Action: runImport,
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() == 0 {
		return errors.New("import requires at least one bundle file")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts, err := importOptions(cmd, cfg)
	if err != nil {
		return err
	}

	// Read every bundle up front so a typo in the last path does not abort
	// a half-finished import.
	bundles := make([]*bundle.Bundle, 0, args.Len())
	for _, path := range args.Slice() {
		b, err := bundle.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read bundle %q: %w", path, err)
		}
		bundles = append(bundles, b)
	}

	session, err := SessionFactory(ctx, stringOr(cmd.String("profile"), cfg.AWS.Profile), stringOr(cmd.String("region"), cfg.AWS.Region))
	if err != nil {
		return err
	}

	imp := importer.New(session.QuickSight, session.AccountID, session.Region, opts)

	for i, b := range bundles {
		result, runErr := imp.Run(ctx, b)
		if result != nil {
			printImportResult(args.Get(i), result)
		}
		if runErr != nil {
			return runErr
		}
	}

	return nil
}

// importOptions builds importer options from config defaults and CLI flags.
// Flags win over config.
func importOptions(cmd *cli.Command, cfg *config.Config) (importer.Options, error) {
	opts := importer.Options{
		Strategy:    cfg.GetStrategy(),
		Suffix:      cfg.Import.Suffix,
		DryRun:      cmd.Bool("dry-run"),
		SkipPublish: cfg.Import.SkipPublish || cmd.Bool("skip-publish"),
		PublishOptions: importer.PublishOptions{
			AdHocFiltering:        cfg.Import.Dashboard.AdHocFiltering,
			ExportToCSV:           cfg.Import.Dashboard.ExportToCSV,
			SheetControlsExpanded: cfg.Import.Dashboard.SheetControlsExpanded,
		},
		DashboardPermissions: grantsToPermissions(cfg.Import.Dashboard.Grants),
	}

	if s := cmd.String("on-conflict"); s != "" {
		strategy, err := importer.ParseStrategy(s)
		if err != nil {
			return importer.Options{}, err
		}
		opts.Strategy = strategy
	}
	if suffix := cmd.String("suffix"); suffix != "" {
		opts.Suffix = suffix
	}

	if cfg.Backup.Enabled && !cmd.Bool("no-backup") {
		opts.Backup = backup.NewStore(cfg.Backup.Location, cfg.Backup.MaxBackups)
	}

	return opts, nil
}

// grantsToPermissions converts configured permission grants to the SDK type.
func grantsToPermissions(grants []config.PermissionGrant) []types.ResourcePermission {
	if len(grants) == 0 {
		return nil
	}
	perms := make([]types.ResourcePermission, 0, len(grants))
	for _, g := range grants {
		perms = append(perms, types.ResourcePermission{
			Principal: aws.String(g.Principal),
			Actions:   g.Actions,
		})
	}
	return perms
}

// printImportResult renders per-asset outcomes followed by the summary line.
func printImportResult(path string, result *importer.Result) {
	fmt.Println(ui.Bold(path))
	for _, asset := range result.Assets {
		line := fmt.Sprintf("%s %s -> %s", asset.Ref.Type, asset.Ref.ID, asset.TargetID)
		switch asset.Action {
		case importer.ActionCreated, importer.ActionUpdated:
			fmt.Println("  " + ui.StatusSuccess(line+" ("+string(asset.Action)+")"))
		case importer.ActionPlanned:
			fmt.Println("  " + ui.Info(string(importer.ActionPlanned)) + " " + line)
		case importer.ActionSkipped:
			fmt.Println("  " + ui.StatusSkipped(line+": "+asset.Message))
		case importer.ActionFailed:
			fmt.Println("  " + ui.StatusError(fmt.Sprintf("%s: %v", line, asset.Error)))
		}
	}
	fmt.Println(result.Summary())
}
