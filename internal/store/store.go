package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/wrouesnel/vscode-extension-downloader/internal/model"
)

// Sentinel errors for index file handling. Both conditions are fatal to
// the operation that hit them; neither print-links nor mirror can proceed
// without a valid index.
var (
	// ErrIndexNotFound is returned when the index file does not exist.
	ErrIndexNotFound = errors.New("index file not found")

	// ErrMalformedIndex is returned when the index file exists but cannot
	// be decoded.
	ErrMalformedIndex = errors.New("malformed index file")
)

// DefaultIndexFile is the default index file path.
const DefaultIndexFile = "index.json"

// Save writes the index to path as canonical sorted-key JSON. Writing the
// same in-memory index twice produces byte-identical files. The file
// handle is scoped to this single write.
func Save(path string, index *model.Index) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("store: encode index: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("store: write index to %s: %w", path, err)
	}
	return nil
}

// Load reads an index previously written by Save. A missing file yields
// ErrIndexNotFound and an undecodable one ErrMalformedIndex; both are
// detectable with errors.Is.
func Load(path string) (*model.Index, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided index path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("store: read index from %s: %w", path, err)
	}

	index := model.NewIndex()
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedIndex, path, err)
	}
	return index, nil
}
