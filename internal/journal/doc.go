// Package journal persists per-download outcomes of mirror runs in a
// SQLite database so operators can diagnose partial failures later.
package journal
