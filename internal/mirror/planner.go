package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wrouesnel/vscode-extension-downloader/internal/gallery"
	"github.com/wrouesnel/vscode-extension-downloader/internal/model"
)

// DefaultOutputDir is the default directory artifacts are mirrored into.
const DefaultOutputDir = "vscode-extensions"

// Result records the outcome of one artifact download.
type Result struct {
	Publisher string
	Extension string
	Version   string
	URL       string
	Err       error
}

// Recorder observes per-download results, for example to journal them.
// Recording failures never abort the mirror run.
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// Summary describes a completed mirror run.
type Summary struct {
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Attempted, Succeeded and Failed count downloads. Attempted is always
	// Succeeded + Failed.
	Attempted int
	Succeeded int
	Failed    int

	// Failures holds one entry per failed download, in visit order.
	Failures []Result
}

// Planner walks an index and downloads one artifact per (publisher,
// extension, version) triple, strictly sequentially.
//
// Traversal is deterministic: publishers ascending, extensions ascending,
// versions descending. Newest-first version order is deliberate so an
// interrupted run leaves the most recent versions mirrored.
type Planner struct {
	fetcher  Fetcher
	logger   *slog.Logger
	recorder Recorder
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPlannerLogger sets the logger for per-download progress.
func WithPlannerLogger(logger *slog.Logger) PlannerOption {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithRecorder sets an observer for per-download results.
func WithRecorder(recorder Recorder) PlannerOption {
	return func(p *Planner) {
		p.recorder = recorder
	}
}

// NewPlanner creates a Planner that downloads through fetcher.
func NewPlanner(fetcher Fetcher, opts ...PlannerOption) *Planner {
	p := &Planner{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run mirrors every indexed artifact into outputDir, creating the
// directory first if needed.
//
// A failed download is logged with its full (publisher, extension,
// version) context and the run continues; per-artifact failures are
// best-effort and never abort the run. Only context cancellation stops
// the walk early, between downloads.
func (p *Planner) Run(ctx context.Context, index *model.Index, outputDir string) (Summary, error) {
	summary := Summary{StartedAt: time.Now()}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return summary, fmt.Errorf("mirror: create output directory %s: %w", outputDir, err)
	}

	for _, publisher := range index.Publishers() {
		for _, extension := range index.Extensions(publisher) {
			for _, version := range index.VersionsNewestFirst(publisher, extension) {
				select {
				case <-ctx.Done():
					summary.FinishedAt = time.Now()
					return summary, ctx.Err()
				default:
				}

				result := Result{
					Publisher: publisher,
					Extension: extension,
					Version:   version,
					URL:       gallery.PackageURL(publisher, extension, version),
				}

				p.logger.Info("downloading extension",
					"publisher", publisher,
					"extension", extension,
					"version", version,
				)

				result.Err = p.fetcher.Fetch(ctx, result.URL, outputDir)
				summary.Attempted++
				if result.Err != nil {
					summary.Failed++
					summary.Failures = append(summary.Failures, result)
					p.logger.Error("failed downloading package",
						"publisher", publisher,
						"extension", extension,
						"version", version,
						"error", result.Err,
					)
				} else {
					summary.Succeeded++
				}

				p.record(ctx, result)
			}
		}
	}

	summary.FinishedAt = time.Now()
	return summary, nil
}

// record passes a result to the recorder, if any. A recorder failure is
// logged and otherwise ignored; journaling problems must not stop the run.
func (p *Planner) record(ctx context.Context, result Result) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, result); err != nil {
		p.logger.Warn("failed to record download result",
			"publisher", result.Publisher,
			"extension", result.Extension,
			"version", result.Version,
			"error", err,
		)
	}
}
