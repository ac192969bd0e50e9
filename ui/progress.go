package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress shows the multi-page fetch as a single bar.
type Progress struct {
	p   *mpb.Progress
	bar *mpb.Bar

	listings atomic.Int64
	start    time.Time
}

// NewProgress draws a bar on w for total pages.
func NewProgress(w io.Writer, label string, total int) *Progress {
	pr := &Progress{
		p: mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(w),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
		start: time.Now(),
	}

	pr.bar = pr.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(label+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %d listings", pr.listings.Load())
			}),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %ds", int(time.Since(pr.start).Seconds()))
			}),
		),
	)
	pr.bar.SetTotal(int64(total), false)
	return pr
}

// Page records one finished page and the records it held.
func (pr *Progress) Page(records int) {
	pr.listings.Add(int64(records))
	pr.bar.Increment()
}

// Done completes the bar, even when the walk stopped early, and waits for
// the final render.
func (pr *Progress) Done() {
	pr.bar.SetTotal(-1, true)
	pr.p.Wait()
}
