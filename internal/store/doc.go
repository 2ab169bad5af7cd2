// Package store persists the extension index to disk as deterministic
// sorted-key JSON and loads it back without information loss.
package store
