package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/render"
	"github.com/dgallion1/deckgen/internal/state"
)

// DeckFileName is the name of the rendered presentation in the output dir.
const DeckFileName = "final_presentation.pptx"

// RenderStage writes the slide plan to a presentation file. It is the only
// stage that refuses to run on an empty input, and a picture that cannot be
// placed stops the run.
type RenderStage struct {
	renderer  *render.Renderer
	outputDir string
	log       *slog.Logger
}

func NewRenderStage(renderer *render.Renderer, outputDir string, log *slog.Logger) *RenderStage {
	return &RenderStage{renderer: renderer, outputDir: outputDir, log: log.With("stage", StageRender)}
}

func (s *RenderStage) Name() string        { return StageRender }
func (s *RenderStage) Reads() []state.Key  { return []state.Key{state.KeySlides, state.KeyDesign} }
func (s *RenderStage) Writes() []state.Key { return []state.Key{state.KeyOutputPath} }

func (s *RenderStage) Run(_ context.Context, st *state.State) (Outcome, error) {
	if !st.Has(state.KeySlides) {
		s.log.Error("slide plan is empty, nothing rendered")
		st.AppendLog("Render", "Slide plan is empty; no presentation written")
		return failed("slide plan is empty"), nil
	}

	design := designOf(st)
	if !st.Has(state.KeyDesign) {
		s.log.Warn("no design produced, using built-in template")
	}
	tmpl := s.renderer.LoadTemplate(design)

	out := filepath.Join(s.outputDir, DeckFileName)
	res, err := s.renderer.Render(st.Slides, design, tmpl, out)
	if err != nil {
		if render.IsPlacementError(err) {
			st.Logf("Render", "Aborted: %v", err)
			return Outcome{}, err
		}
		st.Logf("Render", "Presentation not written: %v", err)
		return failed("%v", err), nil
	}

	st.OutputPath = res.Path
	st.Logf("Render", "Wrote %d slides (%d with images) to %s", res.Slides, res.Images, res.Path)
	return done("%d slides, %d images, %d layout fallbacks", res.Slides, res.Images, res.Fallbacks), nil
}

func designOf(st *state.State) deck.Design {
	if st.Design == nil {
		return deck.Design{}
	}
	return *st.Design
}
