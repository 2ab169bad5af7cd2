package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wrouesnel/vscode-extension-downloader/internal/config"
	"github.com/wrouesnel/vscode-extension-downloader/internal/journal"
	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
	"github.com/wrouesnel/vscode-extension-downloader/internal/report"
	"github.com/wrouesnel/vscode-extension-downloader/internal/store"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mirror",
		Aliases: []string{"mirror-extensions"},
		Short:   "Download every indexed extension version into a local directory",
		Long: `mirror reads a previously built index file and downloads one packaged
artifact per (publisher, extension, version) into the output directory,
newest versions first.

Downloads are delegated to an external content-disposition-aware fetch
tool (wget by default), run sequentially with the output directory as its
working directory. A failed download is logged and recorded in the mirror
journal, and the run continues; re-running against the same index is safe
and relies on the fetch tool's own handling of already-present files.

Examples:
  # Mirror into ./vscode-extensions
  vscode-extension-downloader mirror

  # Mirror elsewhere and write a Markdown run summary
  vscode-extension-downloader mirror -o /srv/mirror --summary /srv/mirror/last-run.md`,
		Args: cobra.NoArgs,
		RunE: runMirrorCmd,
	}

	cmd.Flags().StringP("index-file", "i", config.DefaultIndexFile,
		"Path of the index file to read")
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory to download artifacts into")
	cmd.Flags().String("fetch-command", config.DefaultFetchCommand,
		"External download executable")
	cmd.Flags().String("summary", "",
		"Write a Markdown run summary to this path")
	cmd.Flags().String("journal-dir", "",
		"Directory for the mirror journal database (default: XDG data directory)")
	cmd.Flags().Bool("no-journal", false,
		"Disable recording download outcomes to the journal")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")

	return cmd
}

// runMirrorCmd executes the mirror command.
func runMirrorCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := mirrorConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runMirror(ctx, cfg, logger)
}

// mirrorConfig creates a Config from the mirror flags and the optional
// config file.
func mirrorConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("index-file") || cfg.IndexFile == "" {
		if cfg.IndexFile, err = cmd.Flags().GetString("index-file"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output-dir") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("fetch-command") {
		if cfg.FetchCommand, err = cmd.Flags().GetString("fetch-command"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("journal-dir") {
		if cfg.JournalDir, err = cmd.Flags().GetString("journal-dir"); err != nil {
			return nil, err
		}
	}
	if cfg.SummaryFile, err = cmd.Flags().GetString("summary"); err != nil {
		return nil, err
	}
	if cfg.NoJournal, err = cmd.Flags().GetBool("no-journal"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runMirror downloads every indexed artifact and reports the outcome.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("loading index file", "path", cfg.IndexFile)
	index, err := store.Load(cfg.IndexFile)
	if err != nil {
		return err
	}
	logger.Info("loaded index file", "publishers", index.PublisherCount())

	plannerOpts := []mirror.PlannerOption{
		mirror.WithPlannerLogger(logger),
	}

	if !cfg.NoJournal {
		j, err := journal.Open(cfg.JournalDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				logger.Error("failed to close journal", "error", err)
			}
		}()
		logger.Info("journal opened", "path", j.Path())
		plannerOpts = append(plannerOpts, mirror.WithRecorder(j))
	}

	planner := mirror.NewPlanner(
		&mirror.CommandFetcher{Command: cfg.FetchCommand},
		plannerOpts...,
	)

	summary, runErr := planner.Run(ctx, index, cfg.OutputDir)

	logger.Info("mirror run finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	if cfg.SummaryFile != "" {
		if err := writeSummary(cfg.SummaryFile, &summary); err != nil {
			logger.Error("failed to write run summary", "path", cfg.SummaryFile, "error", err)
		}
	}

	return runErr
}

// writeSummary renders the Markdown run summary to path.
func writeSummary(path string, summary *mirror.Summary) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided summary path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Write error captured below

	if _, err := report.NewSummaryWriter(f).Write(summary); err != nil {
		return err
	}
	return f.Close()
}
