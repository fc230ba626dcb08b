package pipeline

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
)

// JobStatus represents the state of a deck build job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobRequest is what a client asks for.
type JobRequest struct {
	Filename   string    `json:"filename"`
	Tone       deck.Tone `json:"tone"`
	SlideCount int       `json:"slide_count"`
	Theme      string    `json:"theme"`
}

// Job tracks one deck build. Its files live under its own work directory.
type Job struct {
	mu sync.Mutex

	ID      string     `json:"job_id"`
	Request JobRequest `json:"request"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Title    string              `json:"title"`
	Chapters int                 `json:"chapters"`
	Slides   int                 `json:"slides"`
	Stages   []state.StageRecord `json:"stages"`
	Error    string              `json:"error,omitempty"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	workDir  string
	deckPath string
	pdfPath  string
}

// NewJob creates a queued job with a time-ordered id and its work directory
// under dataDir. The uploaded file is written by the caller to InputPath.
func NewJob(dataDir string, req JobRequest) (*Job, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("job id: %w", err)
	}
	dir := filepath.Join(dataDir, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	now := time.Now()
	return &Job{
		ID:        id.String(),
		Request:   req,
		Status:    JobQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		workDir:   dir,
	}, nil
}

// WorkDir is the job's private directory.
func (j *Job) WorkDir() string { return j.workDir }

// InputPath is where the uploaded document is stored.
func (j *Job) InputPath() string {
	return filepath.Join(j.workDir, "input", filepath.Base(j.Request.Filename))
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// List returns every job, newest first.
func (s *JobStore) List() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Remove deletes a job from the store and returns it.
func (s *JobStore) Remove(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[id]
	delete(s.jobs, id)
	return job
}

// Cleanup removes expired jobs and their files. Running jobs are kept.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl && job.Status != JobRunning
		dir := job.workDir
		job.mu.Unlock()
		if !expired {
			continue
		}
		delete(s.jobs, id)
		if dir != "" {
			os.RemoveAll(dir)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// RecordStage notes a finished stage while the run is in progress. Finish
// replaces these records with the run's own.
func (j *Job) RecordStage(stage string, out Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = string(state.Finished(stage))
	j.Stages = append(j.Stages, state.StageRecord{
		Stage:  stage,
		Status: string(out.Status),
		Reason: out.Reason,
	})
	j.UpdatedAt = time.Now()
}

// Finish copies the run's results into the job. A run without a deck is a
// failed job even when no stage returned an error.
func (j *Job) Finish(st *state.State, runErr error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = st.DocumentTitle
	j.Chapters = len(st.Chapters)
	j.Slides = len(st.Slides)
	j.Stages = append([]state.StageRecord(nil), st.Stages...)
	j.Phase = string(st.Phase)
	j.deckPath = st.OutputPath
	j.pdfPath = st.PDFPath
	j.UpdatedAt = time.Now()

	switch {
	case runErr != nil:
		j.Status = JobFailed
		j.Error = runErr.Error()
	case st.OutputPath == "":
		j.Status = JobFailed
		j.Error = "no presentation produced"
		for _, rec := range st.Stages {
			if rec.Status != string(OutcomeDone) && rec.Reason != "" {
				j.Error = fmt.Sprintf("no presentation produced: %s %s (%s)", rec.Stage, rec.Status, rec.Reason)
				break
			}
		}
	default:
		j.Status = JobCompleted
	}
}

// Fail marks the job failed before or outside a run.
func (j *Job) Fail(phase, reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobFailed
	j.Phase = phase
	j.Error = reason
	j.UpdatedAt = time.Now()
}

// Deliverable returns the path of the job's output in the given format
// ("pptx" or "pdf"), or "" when it was not produced.
func (j *Job) Deliverable(format string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch format {
	case "pdf":
		return j.pdfPath
	case "pptx", "":
		return j.deckPath
	}
	return ""
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string              `json:"job_id"`
	Request   JobRequest          `json:"request"`
	Status    JobStatus           `json:"status"`
	Phase     string              `json:"phase"`
	Title     string              `json:"title,omitempty"`
	Chapters  int                 `json:"chapters"`
	Slides    int                 `json:"slides"`
	Stages    []state.StageRecord `json:"stages"`
	Error     string              `json:"error,omitempty"`
	Hash      string              `json:"content_hash,omitempty"`
	HasPPTX   bool                `json:"has_pptx"`
	HasPDF    bool                `json:"has_pdf"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	stages := append([]state.StageRecord{}, j.Stages...)
	return JobSnapshot{
		ID:        j.ID,
		Request:   j.Request,
		Status:    j.Status,
		Phase:     j.Phase,
		Title:     j.Title,
		Chapters:  j.Chapters,
		Slides:    j.Slides,
		Stages:    stages,
		Error:     j.Error,
		Hash:      j.ContentHash,
		HasPPTX:   j.deckPath != "",
		HasPDF:    j.pdfPath != "",
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
