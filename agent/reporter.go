package agent

import (
	"fmt"
	"io"
)

// Reporter receives the user-facing progress of a run. It is separate from
// the diagnostic logger.
type Reporter interface {
	// Progress announces the stage about to run.
	Progress(msg string)
	// Notice reports a result or a reason for stopping.
	Notice(msg string)
	// Warn reports a recoverable problem.
	Warn(msg string)
	// Show prints a titled block such as the recommendations.
	Show(title, body string)
}

// WriterReporter writes plain lines to an io.Writer.
type WriterReporter struct {
	w io.Writer
}

func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Progress(msg string) { fmt.Fprintln(r.w, msg) }
func (r *WriterReporter) Notice(msg string)   { fmt.Fprintln(r.w, msg) }
func (r *WriterReporter) Warn(msg string)     { fmt.Fprintln(r.w, msg) }

func (r *WriterReporter) Show(title, body string) {
	fmt.Fprintln(r.w, title)
	fmt.Fprintln(r.w, body)
}
