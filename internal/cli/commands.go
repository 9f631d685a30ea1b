package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dimkharitonov/quicksightsync/internal/config"
	"github.com/dimkharitonov/quicksightsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize the configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "init",
				Usage: "Write a config file with the default settings",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Bool("init") {
				if config.Exists() {
					return fmt.Errorf("config file already exists at %s", config.FilePath())
				}
				if err := config.Default().Save(); err != nil {
					return fmt.Errorf("failed to write config file: %w", err)
				}
				fmt.Println(ui.StatusSuccess("Wrote " + config.FilePath()))
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			fmt.Println(ui.Header("Configuration"))
			fmt.Printf("  File: %s", config.FilePath())
			if !config.Exists() {
				fmt.Printf(" %s", ui.Dim("(not present, using defaults)"))
			}
			fmt.Println()
			fmt.Printf("  AWS profile:       %s\n", valueOrDefault(cfg.AWS.Profile))
			fmt.Printf("  AWS region:        %s\n", valueOrDefault(cfg.AWS.Region))
			fmt.Printf("  Export directory:  %s\n", cfg.Export.OutputDir)
			fmt.Printf("  Export format:     %s\n", cfg.Export.Format)
			fmt.Printf("  Conflict strategy: %s\n", cfg.Import.Strategy)
			fmt.Printf("  Import suffix:     %s\n", cfg.Import.Suffix)
			fmt.Printf("  Backups:           %s\n", backupSummary(cfg))
			return nil
		},
	}
}

func valueOrDefault(v string) string {
	if v == "" {
		return ui.Dim("(default)")
	}
	return v
}

func backupSummary(cfg *config.Config) string {
	if !cfg.Backup.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("%s (keep %d per asset)", cfg.Backup.Location, cfg.Backup.MaxBackups)
}
