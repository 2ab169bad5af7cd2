// Package mirror turns a persisted extension index into local artifacts.
// The Planner walks the index deterministically and hands each download
// URL to an external content-disposition-aware fetch tool; it also prints
// download links for consumers that want to fetch elsewhere.
package mirror
