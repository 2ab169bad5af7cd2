package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrouesnel/vscode-extension-downloader/internal/config"
	"github.com/wrouesnel/vscode-extension-downloader/internal/gallery"
	"github.com/wrouesnel/vscode-extension-downloader/internal/store"
)

// NewBuildIndexCmd creates the build-index command.
func NewBuildIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build-index",
		Aliases: []string{"download-index"},
		Short:   "Crawl the marketplace gallery and write the extension index",
		Long: `build-index crawls the marketplace gallery search API page by page and
records every publisher, extension, and version it finds into an index
file. The index is the prerequisite for print-links and mirror.

The crawl retries transient gallery failures (rate limiting, transport
errors) with exponential backoff and stops when the gallery reports no
further results.

Examples:
  # Write index.json in the current directory
  vscode-extension-downloader build-index

  # Write a specific index file, giving up on a page after 10 retries
  vscode-extension-downloader build-index -i /srv/mirror/index.json --max-attempts 10`,
		Args: cobra.NoArgs,
		RunE: runBuildIndexCmd,
	}

	cmd.Flags().StringP("index-file", "i", config.DefaultIndexFile,
		"Path of the index file to write")
	cmd.Flags().String("endpoint", gallery.DefaultEndpoint,
		"Gallery search endpoint URL")
	cmd.Flags().String("api-version", gallery.DefaultAPIVersion,
		"Gallery api-version query parameter")
	cmd.Flags().Int("max-attempts", config.DefaultMaxAttempts,
		"Retry ceiling per gallery page (0 retries without bound)")
	cmd.Flags().Duration("backoff-base", gallery.DefaultBackoffBase,
		"Initial retry backoff")
	cmd.Flags().Duration("backoff-max", gallery.DefaultBackoffMax,
		"Retry backoff cap")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")

	return cmd
}

// runBuildIndexCmd executes the build-index command.
func runBuildIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildIndexConfig(cmd)
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

	return runBuildIndex(ctx, cfg, logger)
}

// buildIndexConfig creates a Config from the build-index flags and the
// optional config file.
func buildIndexConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	// Flags the user set explicitly win over the config file.
	if cmd.Flags().Changed("index-file") || cfg.IndexFile == "" {
		if cfg.IndexFile, err = cmd.Flags().GetString("index-file"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("endpoint") {
		if cfg.GalleryEndpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("api-version") {
		if cfg.APIVersion, err = cmd.Flags().GetString("api-version"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-attempts") {
		if cfg.MaxAttempts, err = cmd.Flags().GetInt("max-attempts"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("backoff-base") {
		if cfg.BackoffBase, err = cmd.Flags().GetDuration("backoff-base"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("backoff-max") {
		if cfg.BackoffMax, err = cmd.Flags().GetDuration("backoff-max"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// runBuildIndex crawls the gallery and persists the resulting index.
func runBuildIndex(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := gallery.NewClient(
		gallery.WithEndpoint(cfg.GalleryEndpoint),
		gallery.WithAPIVersion(cfg.APIVersion),
	)
	crawler := gallery.NewCrawler(client,
		gallery.WithLogger(logger),
		gallery.WithBackoff(cfg.BackoffBase, cfg.BackoffMax),
		gallery.WithMaxAttempts(cfg.MaxAttempts),
	)

	startTime := time.Now()
	index, err := crawler.Run(ctx)
	if err != nil {
		return fmt.Errorf("gallery crawl failed: %w", err)
	}

	if err := store.Save(cfg.IndexFile, index); err != nil {
		return err
	}

	logger.Info("index download complete",
		"path", cfg.IndexFile,
		"publishers", index.PublisherCount(),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)
	return nil
}
