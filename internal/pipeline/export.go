package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/deckgen/internal/render"
	"github.com/dgallion1/deckgen/internal/state"
)

// ExportStage converts the rendered presentation to PDF. Conversion failures
// leave the presentation as the only deliverable.
type ExportStage struct {
	conv     render.Converter
	renderer *render.Renderer
	log      *slog.Logger
}

// NewExportStage returns an export stage; a nil conv turns export off.
func NewExportStage(conv render.Converter, renderer *render.Renderer, log *slog.Logger) *ExportStage {
	return &ExportStage{conv: conv, renderer: renderer, log: log.With("stage", StageExport)}
}

func (s *ExportStage) Name() string { return StageExport }

func (s *ExportStage) Reads() []state.Key {
	return []state.Key{state.KeyOutputPath, state.KeySlides, state.KeyDesign}
}

func (s *ExportStage) Writes() []state.Key { return []state.Key{state.KeyPDFPath} }

func (s *ExportStage) Run(ctx context.Context, st *state.State) (Outcome, error) {
	if s.conv == nil {
		return skipped("pdf export disabled"), nil
	}
	if !st.Has(state.KeyOutputPath) {
		st.AppendLog("Export", "No presentation to convert")
		return skipped("no presentation"), nil
	}

	design := designOf(st)
	req := render.ExportRequest{
		DeckPath: st.OutputPath,
		Slides:   st.Slides,
		Design:   design,
		Template: s.renderer.LoadTemplate(design),
	}
	pdf, err := s.conv.Convert(ctx, req)
	if err != nil {
		s.log.Warn("pdf conversion failed", "converter", s.conv.Name(), "error", err)
		st.Logf("Export", "PDF conversion failed (%s): %v", s.conv.Name(), err)
		return failed("%s: %v", s.conv.Name(), err), nil
	}

	st.PDFPath = pdf
	st.Logf("Export", "PDF written to %s", pdf)
	return done("%s", pdf), nil
}
