package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
)

// TestJournalRecord tests recording and querying download outcomes.
func TestJournalRecord(t *testing.T) {
	t.Parallel()

	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer j.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()

	ok := mirror.Result{
		Publisher: "rebornix",
		Extension: "Ruby",
		Version:   "0.22.3",
		URL:       "https://example.com/ok",
	}
	failed := mirror.Result{
		Publisher: "acme",
		Extension: "foo",
		Version:   "1.0.0",
		URL:       "https://example.com/failed",
		Err:       errors.New("exit status 8"),
	}

	if err := j.Record(ctx, ok); err != nil {
		t.Fatalf("failed to record success: %v", err)
	}
	if err := j.Record(ctx, failed); err != nil {
		t.Fatalf("failed to record failure: %v", err)
	}

	failures, err := j.Failures(ctx)
	if err != nil {
		t.Fatalf("failed to query failures: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}

	entry := failures[0]
	if entry.Publisher != "acme" || entry.Extension != "foo" || entry.Version != "1.0.0" {
		t.Errorf("unexpected failure entry: %+v", entry)
	}
	if entry.OK {
		t.Error("expected failure entry to have OK=false")
	}
	if entry.Error != "exit status 8" {
		t.Errorf("expected error text preserved, got %q", entry.Error)
	}
	if entry.RecordedAt.IsZero() {
		t.Error("expected recorded timestamp to be set")
	}
}

// TestJournalReopen tests that records survive reopening the database.
func TestJournalReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	record := mirror.Result{
		Publisher: "acme",
		Extension: "foo",
		Version:   "2.0.0",
		URL:       "https://example.com/foo",
		Err:       errors.New("network unreachable"),
	}
	if err := j.Record(ctx, record); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("failed to close journal: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to reopen journal: %v", err)
	}
	defer reopened.Close() //nolint:errcheck // Test cleanup

	failures, err := reopened.Failures(ctx)
	if err != nil {
		t.Fatalf("failed to query failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Version != "2.0.0" {
		t.Errorf("expected persisted failure, got %+v", failures)
	}
}
