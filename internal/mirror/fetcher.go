package mirror

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// DefaultFetchCommand is the external download tool invoked per artifact.
const DefaultFetchCommand = "wget"

// Fetcher downloads a single artifact URL into a directory. Success or
// failure is observed through the returned error only; implementations do
// not report anything about the downloaded content.
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) error
}

// CommandFetcher shells out to a content-disposition-aware download tool
// (wget by default), run with the target directory as its working
// directory. The tool's own overwrite/skip behavior decides what happens
// when an artifact is already present; this type does not inspect it.
type CommandFetcher struct {
	// Command is the executable to invoke. Empty means DefaultFetchCommand.
	Command string
}

// Fetch runs the download tool for one URL and maps its exit status to an
// error. The tool's output passes straight through to the terminal.
func (f *CommandFetcher) Fetch(ctx context.Context, url, dir string) error {
	command := f.Command
	if command == "" {
		command = DefaultFetchCommand
	}

	cmd := exec.CommandContext(ctx, command, "--content-disposition", url) //nolint:gosec // URL is derived from the index, command from config
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mirror: %s failed for %s: %w", command, url, err)
	}
	return nil
}
