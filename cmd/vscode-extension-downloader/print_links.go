package main

import (
	"github.com/spf13/cobra"

	"github.com/wrouesnel/vscode-extension-downloader/internal/config"
	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
	"github.com/wrouesnel/vscode-extension-downloader/internal/store"
)

// NewPrintLinksCmd creates the print-links command.
func NewPrintLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "print-links",
		Aliases: []string{"print-download-links"},
		Short:   "Print one package download URL per indexed extension version",
		Long: `print-links reads a previously built index file and writes one VSIX
download URL per (publisher, extension, version) to standard output.
No network activity takes place.

Examples:
  vscode-extension-downloader print-links
  vscode-extension-downloader print-links -i /srv/mirror/index.json`,
		Args: cobra.NoArgs,
		RunE: runPrintLinksCmd,
	}

	cmd.Flags().StringP("index-file", "i", config.DefaultIndexFile,
		"Path of the index file to read")

	return cmd
}

// runPrintLinksCmd executes the print-links command.
func runPrintLinksCmd(cmd *cobra.Command, _ []string) error {
	indexFile, err := cmd.Flags().GetString("index-file")
	if err != nil {
		return err
	}

	index, err := store.Load(indexFile)
	if err != nil {
		return err
	}

	return mirror.PrintLinks(cmd.OutOrStdout(), index)
}
