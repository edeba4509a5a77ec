package pipeline

import "fmt"

// Stage names a pipeline step reported in progress events.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageValidating   Stage = "validating"
	StageExpanding    Stage = "expanding"
	StageLayout       Stage = "layout"
	StageRendering    Stage = "rendering"
	StageExporting    Stage = "exporting"
	StageComplete     Stage = "complete"
)

// Event is a progress notification. Percent never decreases within a run.
type Event struct {
	JobID   string  `json:"job_id"`
	Stage   Stage   `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// Rendering progress is mapped into this percentage band.
const (
	renderStart = 25.0
	renderEnd   = 85.0
)

type reporter struct {
	jobID string
	fn    func(Event)
	last  float64
}

func (r *reporter) emit(stage Stage, pct float64, msg string) {
	if r.fn == nil {
		return
	}
	pct = max(r.last, min(pct, 100))
	r.last = pct
	r.fn(Event{JobID: r.jobID, Stage: stage, Percent: pct, Message: msg})
}

// sheets maps assembler progress into the rendering band.
func (r *reporter) sheets(done, total int) {
	if total == 0 {
		return
	}
	pct := renderStart + (renderEnd-renderStart)*float64(done)/float64(total)
	r.emit(StageRendering, pct, fmt.Sprintf("rendered sheet %d of %d", done, total))
}
