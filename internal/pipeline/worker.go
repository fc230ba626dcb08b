package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/deckgen/internal/state"
)

// RunnerFactory builds the runner for one job, with every file the run
// writes kept under workDir.
type RunnerFactory func(workDir string) *Runner

// Worker processes a single deck job.
type Worker struct {
	build RunnerFactory
	log   *slog.Logger
}

func NewWorker(build RunnerFactory, log *slog.Logger) *Worker {
	return &Worker{build: build, log: log}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Request.Filename)
	job.SetStatus(JobRunning, string(state.PhaseCreated))

	st := state.New(job.ID)
	st.InputPath = job.InputPath()
	st.Tone = job.Request.Tone
	st.SlideCount = job.Request.SlideCount
	st.ThemeFile = job.Request.Theme

	runner := w.build(job.WorkDir()).OnStage(func(i, total int, stage string, out Outcome) {
		job.RecordStage(stage, out)
		log.Debug("job stage finished", "stage", stage, "step", i+1, "of", total, "status", out.Status)
	})

	rep, err := runner.Run(ctx, st)
	job.Finish(st, err)

	snap := job.Snapshot()
	if snap.Status == JobCompleted {
		log.Info("job completed", "slides", snap.Slides, "pdf", snap.HasPDF, "duration_ms", rep.Duration.Milliseconds())
		return
	}
	log.Error("job failed", "error", snap.Error, "duration_ms", rep.Duration.Milliseconds())
}
