package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".vscode-extension-downloader"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// duration wraps time.Duration so YAML values like "2s" or "1m" decode
// with time.ParseDuration semantics.
type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// File is the YAML configuration file format. Every field is optional;
// unset fields keep their flag or built-in defaults.
type File struct {
	// GalleryEndpoint overrides the gallery search endpoint URL.
	GalleryEndpoint string `yaml:"gallery_endpoint"`

	// APIVersion overrides the api-version query parameter.
	APIVersion string `yaml:"api_version"`

	// IndexFile overrides the index file path.
	IndexFile string `yaml:"index_file"`

	// OutputDir overrides the mirror output directory.
	OutputDir string `yaml:"output_dir"`

	// FetchCommand overrides the external download executable.
	FetchCommand string `yaml:"fetch_command"`

	// MaxAttempts overrides the per-page retry ceiling.
	MaxAttempts *int `yaml:"max_attempts"`

	// BackoffBase overrides the initial retry backoff.
	BackoffBase duration `yaml:"backoff_base"`

	// BackoffMax overrides the retry backoff cap.
	BackoffMax duration `yaml:"backoff_max"`

	// JournalDir overrides the mirror journal directory.
	JournalDir string `yaml:"journal_dir"`
}

// LoadConfigFile loads overrides from a YAML file. A missing file yields
// ErrConfigNotFound; callers decide whether that matters based on whether
// the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies the file's set fields onto cfg, leaving unset fields alone.
func (f *File) Apply(cfg *Config) {
	if f.GalleryEndpoint != "" {
		cfg.GalleryEndpoint = f.GalleryEndpoint
	}
	if f.APIVersion != "" {
		cfg.APIVersion = f.APIVersion
	}
	if f.IndexFile != "" {
		cfg.IndexFile = f.IndexFile
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.FetchCommand != "" {
		cfg.FetchCommand = f.FetchCommand
	}
	if f.MaxAttempts != nil {
		cfg.MaxAttempts = *f.MaxAttempts
	}
	if f.BackoffBase > 0 {
		cfg.BackoffBase = time.Duration(f.BackoffBase)
	}
	if f.BackoffMax > 0 {
		cfg.BackoffMax = time.Duration(f.BackoffMax)
	}
	if f.JournalDir != "" {
		cfg.JournalDir = f.JournalDir
	}
}

// FindConfigFile searches for the configuration file:
//  1. If configPath is specified, use it directly
//  2. Look for the default file name in the current directory
//  3. Look for the default file name in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
