// Package state is the run state threaded through every pipeline stage.
//
// Fields are optional: a zero value means "not produced yet", never an error.
// Each stage declares the keys it reads and writes, and checks its own inputs
// with Has or Missing before doing any work.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/deckgen/internal/deck"
)

// Key names one field of the state.
type Key string

const (
	KeyInputPath     Key = "input_path"
	KeyTone          Key = "tone"
	KeySlideCount    Key = "slide_count"
	KeyThemeFile     Key = "theme_file"
	KeyDocumentTitle Key = "document_title"
	KeyChapters      Key = "chapters"
	KeySlides        Key = "slides"
	KeyDesign        Key = "design"
	KeyOutputPath    Key = "output_path"
	KeyPDFPath       Key = "pdf_path"
)

// Phase is the run's position in the stage sequence.
type Phase string

const (
	PhaseCreated   Phase = "created"
	PhaseCompleted Phase = "completed"
)

// Running is the phase while stage name executes.
func Running(stage string) Phase { return Phase(stage + ":running") }

// Finished is the phase after stage name returns.
func Finished(stage string) Phase { return Phase(stage + ":done") }

// StageRecord is the persisted outcome of one stage.
type StageRecord struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// State is one run's shared record. It has a single writer at a time (the
// running stage) and needs no locking.
type State struct {
	RunID string `json:"run_id"`
	Phase Phase  `json:"phase"`

	InputPath  string    `json:"input_path,omitempty"`
	Tone       deck.Tone `json:"tone,omitempty"`
	SlideCount int       `json:"slide_count,omitempty"`
	ThemeFile  string    `json:"theme_file,omitempty"`

	DocumentTitle string         `json:"document_title,omitempty"`
	Chapters      []deck.Chapter `json:"chapters,omitempty"`
	Slides        []deck.Slide   `json:"slides,omitempty"`
	Design        *deck.Design   `json:"design,omitempty"`
	OutputPath    string         `json:"output_path,omitempty"`
	PDFPath       string         `json:"pdf_path,omitempty"`

	Stages []StageRecord `json:"stages,omitempty"`
	Log    []string      `json:"log,omitempty"`

	now func() time.Time
}

// New returns a state in the created phase.
func New(runID string) *State {
	return &State{RunID: runID, Phase: PhaseCreated}
}

// SetClock replaces the time source used for log lines.
func (s *State) SetClock(now func() time.Time) { s.now = now }

// Has reports whether the field named by k has been produced.
func (s *State) Has(k Key) bool {
	switch k {
	case KeyInputPath:
		return s.InputPath != ""
	case KeyTone:
		return s.Tone != ""
	case KeySlideCount:
		return s.SlideCount > 0
	case KeyThemeFile:
		return s.ThemeFile != ""
	case KeyDocumentTitle:
		return s.DocumentTitle != ""
	case KeyChapters:
		return len(s.Chapters) > 0
	case KeySlides:
		return len(s.Slides) > 0
	case KeyDesign:
		return s.Design != nil
	case KeyOutputPath:
		return s.OutputPath != ""
	case KeyPDFPath:
		return s.PDFPath != ""
	}
	return false
}

// Missing returns the keys in keys that have not been produced.
func (s *State) Missing(keys ...Key) []Key {
	var out []Key
	for _, k := range keys {
		if !s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ToneOrDefault returns the tone, or the default tone when unset.
func (s *State) ToneOrDefault() deck.Tone {
	if s.Tone == "" {
		return deck.DefaultTone
	}
	return s.Tone
}

// SlideCountOrDefault returns the slide count hint, or the default when unset.
func (s *State) SlideCountOrDefault() int {
	if s.SlideCount <= 0 {
		return deck.DefaultSlideCount
	}
	return s.SlideCount
}

// AppendLog adds a timestamped line attributed to source.
func (s *State) AppendLog(source, msg string) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	s.Log = append(s.Log, fmt.Sprintf("[%s] [%s] %s", now().Format("2006-01-02 15:04:05"), source, msg))
}

// Logf is AppendLog with formatting.
func (s *State) Logf(source, format string, args ...any) {
	s.AppendLog(source, fmt.Sprintf(format, args...))
}

// Record stores a stage outcome, replacing an earlier record for the same
// stage so a resumed run keeps one entry per stage.
func (s *State) Record(rec StageRecord) {
	for i := range s.Stages {
		if s.Stages[i].Stage == rec.Stage {
			s.Stages[i] = rec
			return
		}
	}
	s.Stages = append(s.Stages, rec)
}

// Save writes the state as indented JSON, creating parent directories.
func (s *State) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load replaces every field of s with the snapshot at path. The clock is kept.
func (s *State) Load(path string) error {
	loaded, err := Load(path)
	if err != nil {
		return err
	}
	now := s.now
	*s = *loaded
	s.now = now
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

// SnapshotName is the file name used for the snapshot taken after stage.
func SnapshotName(stage string) string {
	return fmt.Sprintf("shared_state_after_%s.json", stage)
}
