// Package model defines the core data structures for the extension mirror.
// Its central type is Index, the publisher -> extension -> versions mapping
// that the crawler builds and the mirror planner consumes.
package model
