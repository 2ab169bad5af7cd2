package model

import (
	"encoding/json"
	"sort"
)

// Index is the publisher -> extension -> versions mapping built by crawling
// the gallery. It is the durable artifact that decouples crawling from
// mirroring: build-index produces it, print-links and mirror consume it.
//
// Design decision: We wrap the nested map in a struct instead of exposing
// a bare map[string]map[string][]string because:
//  1. The mutation API is a single append operation; hiding the map keeps
//     the two-level invariant (no nil inner maps) in one place
//  2. Sorted accessors give the planner its deterministic traversal order
//     without callers re-sorting keys everywhere
//  3. JSON round-tripping stays an implementation detail of this type
type Index struct {
	// extensions maps publisher name to extension name to the version
	// strings seen for that extension, in the order the crawler saw them.
	// Versions are appended without deduplication; consumers must tolerate
	// duplicates.
	extensions map[string]map[string][]string
}

// NewIndex creates an empty Index ready to accumulate crawl results.
func NewIndex() *Index {
	return &Index{
		extensions: make(map[string]map[string][]string),
	}
}

// Add appends a version under the given publisher and extension.
// It never deduplicates; a version recorded twice is stored twice.
func (i *Index) Add(publisher, extension, version string) {
	exts, ok := i.extensions[publisher]
	if !ok {
		exts = make(map[string][]string)
		i.extensions[publisher] = exts
	}
	exts[extension] = append(exts[extension], version)
}

// Publishers returns all publisher names in ascending sorted order.
func (i *Index) Publishers() []string {
	publishers := make([]string, 0, len(i.extensions))
	for publisher := range i.extensions {
		publishers = append(publishers, publisher)
	}
	sort.Strings(publishers)
	return publishers
}

// PublisherCount returns the number of distinct publishers in the index.
func (i *Index) PublisherCount() int {
	return len(i.extensions)
}

// Extensions returns the extension names for a publisher in ascending
// sorted order. It returns nil for an unknown publisher.
func (i *Index) Extensions(publisher string) []string {
	exts, ok := i.extensions[publisher]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(exts))
	for name := range exts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Versions returns the versions recorded for an extension in the order
// they were added. The returned slice is a copy; mutating it does not
// affect the index.
func (i *Index) Versions(publisher, extension string) []string {
	exts, ok := i.extensions[publisher]
	if !ok {
		return nil
	}
	versions := exts[extension]
	if versions == nil {
		return nil
	}
	out := make([]string, len(versions))
	copy(out, versions)
	return out
}

// VersionsNewestFirst returns the versions for an extension in descending
// string order. The mirror planner uses this so interrupted runs make the
// newest versions available first.
func (i *Index) VersionsNewestFirst(publisher, extension string) []string {
	versions := i.Versions(publisher, extension)
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	return versions
}

// Walk calls fn for every (publisher, extension, version) triple in the
// index. Iteration follows Go's map order and carries no ordering
// guarantee. Walk stops and returns the first error fn returns.
func (i *Index) Walk(fn func(publisher, extension, version string) error) error {
	for publisher, exts := range i.extensions {
		for extension, versions := range exts {
			for _, version := range versions {
				if err := fn(publisher, extension, version); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MarshalJSON encodes the index as a nested JSON object. encoding/json
// sorts map keys, so repeated serialization of the same index is
// byte-for-byte identical.
func (i *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.extensions)
}

// UnmarshalJSON decodes the nested JSON object form produced by
// MarshalJSON. Decoding then re-encoding an index loses no information.
func (i *Index) UnmarshalJSON(data []byte) error {
	var extensions map[string]map[string][]string
	if err := json.Unmarshal(data, &extensions); err != nil {
		return err
	}
	if extensions == nil {
		extensions = make(map[string]map[string][]string)
	}
	i.extensions = extensions
	return nil
}
