package wikirace

import (
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// stageTemplate drives one long-lived indeterminate bar for the whole
// build, reusing the cheggaaa/pb machinery each parser already uses
// for its own file-by-file byte counter instead of a second,
// hand-rolled printer. wikirace_stage carries the current step label;
// wikirace_prev carries how long the previous step took, blank until
// the first step finishes.
const stageTemplate = `{{ cycle . "-" "\\" "|" "/" }} {{ string . "wikirace_stage" }}{{ string . "wikirace_prev" }}`

// stageProgress reports BuildGraph's fixed sequence of pipeline steps
// to the terminal: one bar, advanced by calling next at every stage
// boundary.
type stageProgress struct {
	bar     *pb.ProgressBar
	total   int
	current int
	started time.Time
}

// newStageProgress starts a stage progress bar for a pipeline with
// totalStages named steps.
func newStageProgress(totalStages int) *stageProgress {
	p := &stageProgress{total: totalStages}
	p.bar = pb.ProgressBarTemplate(stageTemplate).New(0)
	p.bar.Set("wikirace_stage", "starting")
	p.bar.Set("wikirace_prev", "")
	p.bar.SetRefreshRate(200 * time.Millisecond)
	p.bar.Start()
	p.started = time.Now()
	return p
}

// next closes out whichever step was running (recording how long it
// took) and opens the next one, labeled message.
func (p *stageProgress) next(message string) {
	if p.current > 0 {
		elapsed := time.Since(p.started).Round(time.Millisecond)
		p.bar.Set("wikirace_prev", fmt.Sprintf(" (step %d took %s)", p.current, elapsed))
	}
	p.current++
	p.started = time.Now()
	p.bar.Set("wikirace_stage", fmt.Sprintf("step %d/%d: %s", p.current, p.total, message))
	p.bar.Write()
}

// done prints a final message and stops the bar; call it once, after
// the last next, to report overall completion instead of a step.
func (p *stageProgress) done(message string) {
	p.bar.Set("wikirace_stage", message)
	p.bar.Set("wikirace_prev", "")
	p.bar.Write()
	p.bar.Finish()
}
