// Package config provides configuration structures and defaults for the
// extension downloader: gallery endpoint parameters, file locations, and
// crawl retry tuning, populated from CLI flags and an optional YAML file.
package config
