package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/media"
	"github.com/dgallion1/deckgen/internal/render"
	"github.com/dgallion1/deckgen/internal/state"
)

// MediaStage acquires a visual asset for each content slide: a rendered
// diagram when the slide has one, otherwise a generated illustration. A slide
// whose asset cannot be produced keeps no image path.
type MediaStage struct {
	images    media.ImageGenerator
	download  media.Downloader
	diagrams  media.DiagramRenderer
	assetsDir string
	log       *slog.Logger
}

// NewMediaStage returns a media stage. A nil images or diagrams disables that
// source.
func NewMediaStage(images media.ImageGenerator, download media.Downloader, diagrams media.DiagramRenderer, assetsDir string, log *slog.Logger) *MediaStage {
	return &MediaStage{
		images:    images,
		download:  download,
		diagrams:  diagrams,
		assetsDir: assetsDir,
		log:       log.With("stage", StageMedia),
	}
}

func (s *MediaStage) Name() string        { return StageMedia }
func (s *MediaStage) Reads() []state.Key  { return []state.Key{state.KeySlides} }
func (s *MediaStage) Writes() []state.Key { return []state.Key{state.KeySlides} }

var errNoSource = errors.New("no asset source")

func (s *MediaStage) Run(ctx context.Context, st *state.State) (Outcome, error) {
	if !st.Has(state.KeySlides) {
		st.AppendLog("Media", "No slides to illustrate")
		return skipped("no slides"), nil
	}
	if err := os.MkdirAll(s.assetsDir, 0o755); err != nil {
		return failed("create assets dir: %v", err), nil
	}

	var diagrams, images, failures int
	for i := range st.Slides {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		sl := &st.Slides[i]
		if sl.Type != deck.SlideContent || render.HasAsset(sl.ImagePath) {
			continue
		}
		if sl.DiagramSpec == "" && sl.ImageHint == "" {
			continue
		}

		dest := media.AssetPath(s.assetsDir, sl.ID)
		kind, err := s.acquire(ctx, *sl, dest)
		switch {
		case errors.Is(err, errNoSource):
			continue
		case err != nil:
			failures++
			sl.ImagePath = ""
			s.log.Warn("asset unavailable", "slide_id", sl.ID, "error", err)
			st.Logf("Media", "Slide %s: no asset (%v)", sl.ID, err)
			continue
		}

		sl.ImagePath = dest
		if kind == "diagram" {
			diagrams++
		} else {
			images++
		}
		st.Logf("Media", "Slide %s: %s saved to %s", sl.ID, kind, dest)
	}

	if diagrams+images+failures == 0 {
		return done("no visual assets requested"), nil
	}
	return done("%d diagrams, %d images, %d failed", diagrams, images, failures), nil
}

// acquire renders the slide's diagram, falling back to its image hint when
// the diagram fails.
func (s *MediaStage) acquire(ctx context.Context, sl deck.Slide, dest string) (string, error) {
	var diagramErr error
	if sl.DiagramSpec != "" && s.diagrams != nil {
		diagramErr = s.diagrams.Render(ctx, sl.DiagramSpec, dest)
		if diagramErr == nil {
			return "diagram", nil
		}
		s.log.Warn("diagram render failed", "slide_id", sl.ID, "error", diagramErr)
	}

	if sl.ImageHint == "" || s.images == nil {
		if diagramErr != nil {
			return "", diagramErr
		}
		return "", errNoSource
	}

	url, err := s.images.Generate(ctx, media.ImagePrompt(sl.ImageHint))
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if err := s.download.Download(ctx, url, dest); err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	return "image", nil
}
