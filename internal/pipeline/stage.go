// Package pipeline runs the deck-building stages over one run state, and
// queues those runs for the HTTP server.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dgallion1/deckgen/internal/state"
)

// OutcomeStatus tags how a stage ended.
type OutcomeStatus string

const (
	OutcomeDone    OutcomeStatus = "done"
	OutcomeSkipped OutcomeStatus = "skipped" // A required input was missing.
	OutcomeEmpty   OutcomeStatus = "empty"   // Ran, but produced nothing usable.
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the tagged result of one stage.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return string(o.Status)
	}
	return fmt.Sprintf("%s (%s)", o.Status, o.Reason)
}

// OK reports whether the stage produced its outputs.
func (o Outcome) OK() bool { return o.Status == OutcomeDone }

func done(format string, args ...any) Outcome {
	return Outcome{Status: OutcomeDone, Reason: fmt.Sprintf(format, args...)}
}

func skipped(format string, args ...any) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: fmt.Sprintf(format, args...)}
}

func empty(format string, args ...any) Outcome {
	return Outcome{Status: OutcomeEmpty, Reason: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...any) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: fmt.Sprintf(format, args...)}
}

// Stage is one step of a run. It checks its own inputs: a missing input is
// reported as a Skipped outcome, never as an error. A non-nil error is fatal
// and stops the run.
type Stage interface {
	Name() string
	Reads() []state.Key
	Writes() []state.Key
	Run(ctx context.Context, st *state.State) (Outcome, error)
}

// Stage names, in run order.
const (
	StageContent = "content"
	StageFormat  = "format"
	StageDesign  = "design"
	StageMedia   = "media"
	StageRender  = "render"
	StageExport  = "export"
)

// StageOrder is the fixed order stages run in.
var StageOrder = []string{StageContent, StageFormat, StageDesign, StageMedia, StageRender, StageExport}
