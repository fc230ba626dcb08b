package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	assert.Equal(t, h1, ContentHashHex(data))
	// SHA-256 of "hello world" is well-known.
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", h1)
}

func TestNewJob(t *testing.T) {
	dataDir := t.TempDir()
	job, err := NewJob(dataDir, JobRequest{Filename: "../../etc/notes.md", Tone: deck.ToneExpert})
	require.NoError(t, err)
	assert.Equal(t, JobQueued, job.Status)
	assert.DirExists(t, job.WorkDir())
	assert.Equal(t, job.WorkDir(), filepath.Dir(filepath.Dir(job.InputPath())), "input path stays inside the work dir")
	assert.Equal(t, "notes.md", filepath.Base(job.InputPath()))

	other, err := NewJob(dataDir, JobRequest{Filename: "b.txt"})
	require.NoError(t, err)
	assert.Greater(t, other.ID, job.ID, "ids are time-ordered")
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    JobQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{JobRunning, "created"},
		{JobRunning, "content:done"},
		{JobCompleted, "completed"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		assert.Equal(t, tr.status, job.Status)
		assert.Equal(t, tr.phase, job.Phase)
		assert.True(t, job.UpdatedAt.After(before), "UpdatedAt advances after SetStatus(%q)", tr.status)
	}
}

func TestJob_RecordStage(t *testing.T) {
	job := &Job{ID: "rec-test", UpdatedAt: time.Now()}
	job.RecordStage(StageContent, done("2 chapters"))
	job.RecordStage(StageFormat, skipped("no chapters"))

	snap := job.Snapshot()
	require.Len(t, snap.Stages, 2)
	assert.Equal(t, "format:done", snap.Phase)
	assert.Equal(t, "skipped", snap.Stages[1].Status)
}

func TestJob_FinishWithoutDeckFails(t *testing.T) {
	job := &Job{ID: "finish-test", UpdatedAt: time.Now()}
	st := state.New("finish-test")
	st.Phase = state.PhaseCompleted
	st.Record(state.StageRecord{Stage: StageContent, Status: "empty", Reason: "no chapters from 3 chunk(s)"})
	st.Record(state.StageRecord{Stage: StageRender, Status: "failed", Reason: "slide plan is empty"})

	job.Finish(st, nil)
	snap := job.Snapshot()
	assert.Equal(t, JobFailed, snap.Status)
	assert.Contains(t, snap.Error, "content empty")
	assert.False(t, snap.HasPPTX)
	assert.Empty(t, job.Deliverable("pptx"))
}

func TestJob_FinishCompleted(t *testing.T) {
	job := &Job{ID: "ok-test", UpdatedAt: time.Now()}
	st := state.New("ok-test")
	st.DocumentTitle = "Biology"
	st.Slides = make([]deck.Slide, 7)
	st.OutputPath = "/tmp/x/final_presentation.pptx"

	job.Finish(st, nil)
	snap := job.Snapshot()
	assert.Equal(t, JobCompleted, snap.Status)
	assert.Equal(t, 7, snap.Slides)
	assert.Equal(t, "Biology", snap.Title)
	assert.Equal(t, st.OutputPath, job.Deliverable("pptx"))
	assert.Empty(t, job.Deliverable("pdf"))
	assert.Empty(t, job.Deliverable("odp"))
}

func TestJob_SnapshotStagesNotNil(t *testing.T) {
	// Snapshot should always return a non-nil stages slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	assert.NotNil(t, job.Snapshot().Stages)
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "store-1", UpdatedAt: time.Now()})

	got := store.Get("store-1")
	require.NotNil(t, got)
	assert.Equal(t, "store-1", got.ID)
	assert.Nil(t, store.Get("nonexistent"))
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired, err := NewJob(t.TempDir(), JobRequest{Filename: "old.txt"})
	require.NoError(t, err)
	expired.SetStatus(JobCompleted, "completed")
	store.Put(expired)
	store.Put(&Job{ID: "running", Status: JobRunning, UpdatedAt: time.Now()})

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})
	store.Cleanup()

	assert.Nil(t, store.Get(expired.ID))
	assert.NoDirExists(t, expired.WorkDir())
	assert.NotNil(t, store.Get("running"), "running jobs survive cleanup")
	assert.NotNil(t, store.Get("new"))
}

func TestWorker_Process(t *testing.T) {
	job, err := NewJob(t.TempDir(), JobRequest{Filename: "biology.txt", Theme: "minimal"})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(job.InputPath()), 0o755))
	writeLongText(t, job.InputPath(), 25000)

	svc := &partService{replies: map[int]string{2: twoChaptersReply}}
	w := NewWorker(func(workDir string) *Runner {
		return NewStandardRunner(standardDeps(svc), testDirs(workDir), discardLogger())
	}, discardLogger())
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, JobCompleted, snap.Status, snap.Error)
	assert.Equal(t, string(state.PhaseCompleted), snap.Phase)
	assert.Len(t, snap.Stages, len(StageOrder))
	rel, err := filepath.Rel(job.WorkDir(), job.Deliverable("pptx"))
	require.NoError(t, err)
	assert.NotContains(t, rel, "..")
	assert.FileExists(t, job.Deliverable("pdf"))
}

func TestJobStore_ListAndRemove(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "0001"})
	store.Put(&Job{ID: "0003"})
	store.Put(&Job{ID: "0002"})

	jobs := store.List()
	require.Len(t, jobs, 3)
	assert.Equal(t, "0003", jobs[0].ID)
	assert.Equal(t, "0001", jobs[2].ID)

	assert.NotNil(t, store.Remove("0002"))
	assert.Nil(t, store.Get("0002"))
	assert.Nil(t, store.Remove("missing"))
}
