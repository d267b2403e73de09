// Package progress draws file-processing progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/wisegam/codesleuth/pkg/analyzer"
)

// Bar is a progress bar fed by analyzer.Tracker events.
type Bar struct {
	bar   *progressbar.ProgressBar
	w     io.Writer
	label string
}

// New creates a bar on stderr.
func New(label string) *Bar {
	return NewWithWriter(label, os.Stderr)
}

// NewWithWriter creates a bar drawing to w. The total is unknown until the
// first event reports one.
func NewWithWriter(label string, w io.Writer) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, w: w, label: label}
}

// Tracker returns an analyzer.Tracker that advances this bar.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(b.label, b.Observe)
}

// Observe advances the bar to ev. Safe for concurrent use.
func (b *Bar) Observe(ev analyzer.ProgressEvent) {
	if ev.Total > 0 && b.bar.GetMax() != ev.Total {
		b.bar.ChangeMax(ev.Total)
	}
	_ = b.bar.Set(ev.Done)
}

// Finish clears the bar.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishError clears the bar and prints err.
func (b *Bar) FinishError(err error) {
	b.Finish()
	fmt.Fprintf(b.w, "  %s error: %v\n", b.label, err)
}
