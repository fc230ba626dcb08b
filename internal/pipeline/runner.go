package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/deckgen/internal/state"
)

// Observer is told about each stage as it finishes.
type Observer func(index, total int, stage string, out Outcome)

// StageReport is one stage's line in a Report.
type StageReport struct {
	Stage    string        `json:"stage"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// Report summarises a run.
type Report struct {
	RunID    string        `json:"run_id"`
	Stages   []StageReport `json:"stages"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Outcome returns the outcome of the named stage if it ran.
func (r Report) Outcome(stage string) (Outcome, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Outcome, true
		}
	}
	return Outcome{}, false
}

// UnknownStageError is returned by RunFrom for a stage name not in the runner.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Stage)
}

// Runner executes stages in order against one state. Every stage runs even
// when an earlier one produced nothing; only a stage error stops the run.
type Runner struct {
	stages      []Stage
	snapshotDir string
	observer    Observer
	log         *slog.Logger
}

// NewRunner returns a runner for stages. When snapshotDir is set the state is
// saved there after every stage.
func NewRunner(stages []Stage, snapshotDir string, log *slog.Logger) *Runner {
	return &Runner{stages: stages, snapshotDir: snapshotDir, log: log}
}

// OnStage registers the observer for stage events.
func (r *Runner) OnStage(obs Observer) *Runner {
	r.observer = obs
	return r
}

// Stages lists the runner's stage names in order.
func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage.
func (r *Runner) Run(ctx context.Context, st *state.State) (Report, error) {
	return r.run(ctx, st, 0)
}

// RunFrom executes the named stage and those after it, typically on a state
// loaded from a snapshot.
func (r *Runner) RunFrom(ctx context.Context, st *state.State, stage string) (Report, error) {
	for i, s := range r.stages {
		if s.Name() == stage {
			return r.run(ctx, st, i)
		}
	}
	return Report{RunID: st.RunID}, &UnknownStageError{Stage: stage}
}

func (r *Runner) run(ctx context.Context, st *state.State, from int) (Report, error) {
	start := time.Now()
	log := r.log.With("run_id", st.RunID)
	rep := Report{RunID: st.RunID}
	total := len(r.stages)

	if st.Phase == "" {
		st.Phase = state.PhaseCreated
	}
	if from < total {
		log.Info("run starting", "from", r.stages[from].Name(), "stages", total-from)
	}

	for i := from; i < total; i++ {
		s := r.stages[i]
		if err := ctx.Err(); err != nil {
			rep.Err = fmt.Errorf("run cancelled before %s: %w", s.Name(), err)
			break
		}
		stageLog := log.With("stage", s.Name())
		if missing := st.Missing(s.Reads()...); len(missing) > 0 {
			stageLog.Debug("stage inputs not produced", "missing", missing)
		}

		st.Phase = state.Running(s.Name())
		t0 := time.Now()
		out, err := s.Run(ctx, st)
		d := time.Since(t0)
		if err != nil {
			out = failed("%v", err)
		}
		st.Phase = state.Finished(s.Name())
		st.Record(state.StageRecord{Stage: s.Name(), Status: string(out.Status), Reason: out.Reason, DurationMs: d.Milliseconds()})
		st.Logf("Runner", "%s %s", s.Name(), out)
		rep.Stages = append(rep.Stages, StageReport{Stage: s.Name(), Outcome: out, Duration: d})

		switch out.Status {
		case OutcomeDone:
			stageLog.Info("stage done", "duration_ms", d.Milliseconds(), "detail", out.Reason)
		case OutcomeFailed:
			stageLog.Error("stage failed", "duration_ms", d.Milliseconds(), "reason", out.Reason)
		default:
			stageLog.Warn("stage produced no output", "status", out.Status, "reason", out.Reason)
		}

		r.snapshot(st, s.Name(), stageLog)
		if r.observer != nil {
			r.observer(i, total, s.Name(), out)
		}
		if err != nil {
			rep.Err = fmt.Errorf("stage %s: %w", s.Name(), err)
			break
		}
	}

	if rep.Err == nil {
		st.Phase = state.PhaseCompleted
	}
	rep.Duration = time.Since(start)
	log.Info("run finished", "phase", st.Phase, "duration_ms", rep.Duration.Milliseconds(), "fatal", rep.Err != nil)
	return rep, rep.Err
}

func (r *Runner) snapshot(st *state.State, stage string, log *slog.Logger) {
	if r.snapshotDir == "" {
		return
	}
	path := filepath.Join(r.snapshotDir, state.SnapshotName(stage))
	if err := st.Save(path); err != nil {
		log.Warn("snapshot failed", "path", path, "error", err)
	}
}
