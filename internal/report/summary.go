package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/wrouesnel/vscode-extension-downloader/internal/mirror"
)

// SummaryWriter renders a mirror run summary as Markdown. The summary is
// meant to be committed or shared alongside the mirrored artifacts so the
// state of the mirror is documented without reading logs.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation instead of hand-rolled string building.
type SummaryWriter struct {
	output io.Writer
}

// NewSummaryWriter creates a SummaryWriter that writes to output.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{output: output}
}

// Write renders the summary and returns the number of bytes generated.
func (w *SummaryWriter) Write(summary *mirror.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Extension Mirror Run")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Attempted", strconv.Itoa(summary.Attempted)},
			{"Succeeded", strconv.Itoa(summary.Succeeded)},
			{"Failed", strconv.Itoa(summary.Failed)},
		},
	})
	md.PlainText("")

	w.writeFailures(md, summary)

	return len(md.String()), md.Build()
}

// writeFailures renders the per-artifact failure table, if any downloads
// failed.
func (w *SummaryWriter) writeFailures(md *markdown.Markdown, summary *mirror.Summary) {
	md.H2("Failures")
	md.PlainText("")

	if len(summary.Failures) == 0 {
		md.PlainText("All downloads succeeded.")
		return
	}

	rows := make([][]string, 0, len(summary.Failures))
	for _, failure := range summary.Failures {
		errText := ""
		if failure.Err != nil {
			errText = failure.Err.Error()
		}
		rows = append(rows, []string{
			failure.Publisher,
			failure.Extension,
			failure.Version,
			errText,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Publisher", "Extension", "Version", "Error"},
		Rows:   rows,
	})
}
