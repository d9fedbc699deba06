// Package progress renders narration progress as a terminal bar.
package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"narrationgen/pkg/narration"
)

// Bar implements narration.Listener.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a bar over total jobs writing to w (normally stderr).
func New(w io.Writer, total int) *Bar {
	return &Bar{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("narration"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(20),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		),
	}
}

func (b *Bar) OnJobStart(job narration.Job) {
	b.bar.Describe(fmt.Sprintf("intro_%s", job.Language))
}

func (b *Bar) OnJobDone(outcome narration.Outcome) {
	_ = b.bar.Add(1)
}
