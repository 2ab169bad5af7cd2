package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/wrouesnel/vscode-extension-downloader/internal/gallery"
	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
	"github.com/wrouesnel/vscode-extension-downloader/internal/store"
)

// Default configuration values. Endpoint and layout defaults live with the
// packages that own them; this package re-exports them as the single place
// command wiring reads defaults from.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "vscode-extension-downloader"

	// DefaultIndexFile is the default index file path, relative to the
	// working directory.
	DefaultIndexFile = store.DefaultIndexFile

	// DefaultOutputDir is the default mirror output directory.
	DefaultOutputDir = mirror.DefaultOutputDir

	// DefaultFetchCommand is the external download tool.
	DefaultFetchCommand = mirror.DefaultFetchCommand

	// DefaultMaxAttempts is the default retry ceiling for a single gallery
	// page. 0 preserves the historical behavior of retrying without bound
	// until the endpoint recovers.
	DefaultMaxAttempts = 0
)

// Config holds all configuration options for the extension downloader.
// It is populated from CLI flags (and optionally a config file) and passed
// through the application by value reference, never read from globals.
type Config struct {
	// GalleryEndpoint is the gallery search endpoint URL.
	GalleryEndpoint string

	// APIVersion is the api-version query parameter sent to the gallery.
	APIVersion string

	// IndexFile is the path of the index file to write or read.
	IndexFile string

	// OutputDir is the directory artifacts are mirrored into.
	OutputDir string

	// FetchCommand is the external download executable used by mirror.
	FetchCommand string

	// SummaryFile, when set, is where mirror writes a Markdown run summary.
	SummaryFile string

	// MaxAttempts bounds consecutive retries of a single gallery page
	// during crawling. 0 means unbounded.
	MaxAttempts int

	// BackoffBase is the wait before the first retry of a failed page.
	BackoffBase time.Duration

	// BackoffMax caps the exponential retry backoff.
	BackoffMax time.Duration

	// JournalDir is the directory holding the mirror journal database.
	JournalDir string

	// NoJournal disables recording download outcomes to the journal.
	NoJournal bool

	// ConfigFilePath is an explicitly requested config file path. Empty
	// means search the standard locations.
	ConfigFilePath string

	// Verbose enables slog.LevelDebug output.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: A constructor rather than zero values, because most
// defaults are non-zero and this documents them in one place.
func NewConfig() *Config {
	return &Config{
		GalleryEndpoint: gallery.DefaultEndpoint,
		APIVersion:      gallery.DefaultAPIVersion,
		IndexFile:       DefaultIndexFile,
		OutputDir:       DefaultOutputDir,
		FetchCommand:    DefaultFetchCommand,
		MaxAttempts:     DefaultMaxAttempts,
		BackoffBase:     gallery.DefaultBackoffBase,
		BackoffMax:      gallery.DefaultBackoffMax,
		JournalDir:      XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for the application.
// On Linux: ~/.local/share/vscode-extension-downloader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag and file parsing, before any work begins.
func (c *Config) Validate() error {
	if c.GalleryEndpoint == "" {
		return ErrNoEndpoint
	}
	if c.IndexFile == "" {
		return ErrNoIndexFile
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.MaxAttempts < 0 {
		return ErrInvalidMaxAttempts
	}
	if c.BackoffBase <= 0 {
		return ErrInvalidBackoff
	}
	if c.BackoffMax < c.BackoffBase {
		return ErrInvalidBackoff
	}
	return nil
}
