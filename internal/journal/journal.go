package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
)

// dbFileName is the journal database file name inside the journal
// directory.
const dbFileName = "mirror-journal.db"

// Journal records the outcome of every artifact download attempt in a
// SQLite database. The journal is what lets an operator diagnose a partly
// failed mirror run after the fact: each row carries the full (publisher,
// extension, version) context plus the error text for failures.
//
// Design decision: One database per journal directory rather than one per
// run. Rows from successive runs accumulate, so failure history across
// runs is a single query away.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Entry is one recorded download attempt.
type Entry struct {
	Publisher  string
	Extension  string
	Version    string
	URL        string
	OK         bool
	Error      string
	RecordedAt time.Time
}

// Open opens or creates the journal database under dir, creating the
// directory if needed.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("journal: create directory %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("journal: open database %s: %w", dbPath, err)
	}

	// SQLite supports a single writer; the mirror run is sequential anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db, dbPath: dbPath}
	if err := j.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}
	return j, nil
}

// migrate creates the downloads table if it does not exist.
func (j *Journal) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	publisher   TEXT NOT NULL,
	extension   TEXT NOT NULL,
	version     TEXT NOT NULL,
	url         TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_downloads_ok ON downloads(ok);
`
	if _, err := j.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("journal: create schema: %w", err)
	}
	return nil
}

// Record stores the outcome of one download attempt. It implements
// mirror.Recorder.
func (j *Journal) Record(ctx context.Context, result mirror.Result) error {
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO downloads (publisher, extension, version, url, ok, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.Publisher,
		result.Extension,
		result.Version,
		result.URL,
		result.Err == nil,
		errText,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("journal: record download of %s/%s@%s: %w",
			result.Publisher, result.Extension, result.Version, err)
	}
	return nil
}

// Failures returns all recorded failed downloads, oldest first.
func (j *Journal) Failures(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT publisher, extension, version, url, ok, error, recorded_at
		 FROM downloads WHERE ok = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("journal: query failures: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.Publisher, &e.Extension, &e.Version, &e.URL, &e.OK, &e.Error, &recordedAt); err != nil {
			return nil, fmt.Errorf("journal: scan failure row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			e.RecordedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate failures: %w", err)
	}
	return entries, nil
}

// Path returns the journal database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
