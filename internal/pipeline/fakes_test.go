package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/deckgen/internal/chunker"
	"github.com/dgallion1/deckgen/internal/state"
	"github.com/dgallion1/deckgen/internal/structure"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// partService answers the structuring prompt for part N (1-based) with
// replies[N]; other parts get an empty reply.
type partService struct {
	mu      sync.Mutex
	replies map[int]string
	errs    map[int]error
	prompts []string
}

func (s *partService) Model() string { return "fake-model" }

func (s *partService) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	part := 1
	for n := range 100 {
		if strings.Contains(prompt, fmt.Sprintf("This is part %d of ", n)) {
			part = n
			break
		}
	}
	if err := s.errs[part]; err != nil {
		return "", err
	}
	return s.replies[part], nil
}

func newStructureClient(svc structure.Service) *structure.Client {
	return structure.NewClient(svc, structure.NewCallStats(time.Hour), discardLogger())
}

const twoChaptersReply = `{"chapters": [
	{"id": 1, "title": "Cells", "description": "The unit of life", "topics": [
		{"id": "1.1", "title": "Membranes", "summary": "Boundaries", "key_points": ["Lipid bilayer", "Selective"], "image_hint": "a cell membrane"}
	]},
	{"id": 2, "title": "Energy", "topics": [
		{"id": "2.1", "title": "Respiration", "key_points": ["Glucose in", "ATP out"],
		 "quiz_questions": [{"question": "What does respiration produce?"}],
		 "diagram_dot_code": "digraph { glucose -> atp }"}
	]}
]}`

// writeLongText writes a single-line text document of n characters.
func writeLongText(t *testing.T, path string, n int) {
	t.Helper()
	text := strings.Repeat("abcdefghij", n/10+1)[:n]
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func writePNG(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := range 30 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{R: 30, G: 90, B: uint8(4 * x), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (f *fakeImages) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return "https://images.example/out.png", nil
}

type fakeDownloader struct {
	err error
}

func (f fakeDownloader) Download(_ context.Context, _, dest string) error {
	if f.err != nil {
		return f.err
	}
	return writePNG(dest)
}

type fakeDiagrams struct {
	err   error
	specs []string
}

func (f *fakeDiagrams) Render(_ context.Context, spec, dest string) error {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return f.err
	}
	return writePNG(dest)
}

// stubStage returns a canned outcome and optionally mutates the state.
type stubStage struct {
	name  string
	out   Outcome
	err   error
	apply func(*state.State)
	ran   int
}

func (s *stubStage) Name() string        { return s.name }
func (s *stubStage) Reads() []state.Key  { return nil }
func (s *stubStage) Writes() []state.Key { return nil }

func (s *stubStage) Run(_ context.Context, st *state.State) (Outcome, error) {
	s.ran++
	if s.apply != nil {
		s.apply(st)
	}
	return s.out, s.err
}

var errBoom = errors.New("boom")

var testChunks = chunker.Config{ChunkSize: 12000, Overlap: 500}
