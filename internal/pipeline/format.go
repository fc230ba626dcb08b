package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
)

// FormatStage turns the chapter outline into a linear slide plan.
type FormatStage struct {
	log *slog.Logger
}

func NewFormatStage(log *slog.Logger) *FormatStage {
	return &FormatStage{log: log.With("stage", StageFormat)}
}

func (s *FormatStage) Name() string { return StageFormat }

func (s *FormatStage) Reads() []state.Key {
	return []state.Key{state.KeyChapters, state.KeyDocumentTitle, state.KeyTone, state.KeySlideCount}
}

func (s *FormatStage) Writes() []state.Key { return []state.Key{state.KeySlides} }

func (s *FormatStage) Run(_ context.Context, st *state.State) (Outcome, error) {
	if !st.Has(state.KeyChapters) {
		st.AppendLog("Format", "No chapters to format")
		return skipped("no chapters"), nil
	}

	slides := deck.Plan(st.DocumentTitle, st.ToneOrDefault(), st.Chapters)
	if st.Has(state.KeySlideCount) && len(slides) != st.SlideCount {
		s.log.Info("slide plan differs from requested count", "requested", st.SlideCount, "planned", len(slides))
	}
	st.Slides = slides
	st.Logf("Format", "Planned %d slides from %d chapter(s)", len(slides), len(st.Chapters))
	return done("%d slides", len(slides)), nil
}
