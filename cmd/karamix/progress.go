// SPDX-License-Identifier: EPL-2.0

package main

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// renderProgress draws the export progress bar. The bar is created on the
// first update, once the total frame count is known.
type renderProgress struct {
	mu  sync.Mutex
	p   *mpb.Progress
	bar *mpb.Bar
}

func newRenderProgress(w io.Writer) *renderProgress {
	return &renderProgress{p: mpb.New(mpb.WithWidth(64), mpb.WithOutput(w))}
}

func (r *renderProgress) update(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		r.bar = r.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("Rendering: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.Name(" "),
				decor.Elapsed(decor.ET_STYLE_GO),
			),
		)
	}

	r.bar.SetCurrent(int64(done))
}

// finish waits for the bar to be drawn. A render that stopped early
// aborts the bar instead.
func (r *renderProgress) finish() {
	r.mu.Lock()
	if r.bar != nil && !r.bar.Completed() {
		r.bar.Abort(false)
	}
	r.mu.Unlock()

	r.p.Wait()
}
