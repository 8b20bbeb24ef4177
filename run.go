package boothcrawl

import "time"

// Stage is a state of the per-source run state machine:
// pending → fetching → extracting → validating → reconciling →
// succeeded | partial | failed.
type Stage string

// Run stages.
const (
	StagePending     Stage = "pending"
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageValidating  Stage = "validating"
	StageReconciling Stage = "reconciling"
	StageSucceeded   Stage = "succeeded"
	StagePartial     Stage = "partial"
	StageFailed      Stage = "failed"
)

// Final reports whether the stage ends a run.
func (s Stage) Final() bool {
	return s == StageSucceeded || s == StagePartial || s == StageFailed
}

// SourceStatus maps a final stage to the status stored on the source.
func (s Stage) SourceStatus() SourceStatus {
	switch s {
	case StageSucceeded:
		return SourceSuccess
	case StagePartial:
		return SourcePartial
	case StageFailed:
		return SourceFailed
	default:
		return SourceRunning
	}
}

// EventType classifies progress events.
type EventType string

// Progress event types. Every run stream ends with exactly one
// EventComplete or EventError.
const (
	EventStage    EventType = "stage"
	EventLog      EventType = "log"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Counts are the running totals reported with progress events.
type Counts struct {
	Pages       int `json:"pages"`
	FailedPages int `json:"failedPages"`
	Candidates  int `json:"candidates"`
	Valid       int `json:"valid"`
	Rejected    int `json:"rejected"`
	Added       int `json:"added"`
	Updated     int `json:"updated"`
}

// ProgressEvent reports progress during a source run.
type ProgressEvent struct {
	Type    EventType `json:"type"`
	Stage   Stage     `json:"stage,omitempty"`
	Message string    `json:"message"`
	Counts  *Counts   `json:"counts,omitempty"`
	Time    time.Time `json:"time"`
}

// Terminal reports whether the event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// RunResult is written back to the registry when a run ends.
type RunResult struct {
	Status      SourceStatus
	Found       int
	Added       int
	Updated     int
	Rejected    int
	Pages       int
	FailedPages int
	Error       string
	StartedAt   time.Time
}

// Run is a run history entry.
type Run struct {
	ID          string       `json:"id"`
	SourceID    string       `json:"sourceId"`
	Status      SourceStatus `json:"status"`
	Found       int          `json:"found"`
	Added       int          `json:"added"`
	Updated     int          `json:"updated"`
	Rejected    int          `json:"rejected"`
	Pages       int          `json:"pages"`
	FailedPages int          `json:"failedPages"`
	Error       string       `json:"error"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt"`
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	SourceID *string `json:"sourceId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
