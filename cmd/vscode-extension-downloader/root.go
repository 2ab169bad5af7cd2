package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wrouesnel/vscode-extension-downloader/internal/config"
)

// NewRootCmd creates the root command for the extension downloader.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vscode-extension-downloader",
		Short: "Build and maintain a local mirror of the VS Code extension marketplace",
		Long: `vscode-extension-downloader builds local mirrors of Visual Studio Code
extensions.

It works in two stages: build-index crawls the marketplace gallery API and
writes an index of every publisher, extension, and version it finds; mirror
(or print-links) then consumes that index to download each packaged version
into a local directory.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewBuildIndexCmd())
	cmd.AddCommand(NewPrintLinksCmd())
	cmd.AddCommand(NewMirrorCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger creates a structured logger based on verbosity setting.
// Crawl and download progress is the tool's primary operator feedback, so
// the default level is Info rather than Warn.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// signalContext returns a context cancelled by SIGINT or SIGTERM, so both
// crawling and mirroring can stop cleanly between requests.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// applyConfigFile merges an optional YAML config file into cfg. An
// explicitly requested file that does not exist is an error; a missing
// default file is not.
func applyConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	cf, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cf.Apply(cfg)
	return nil
}
