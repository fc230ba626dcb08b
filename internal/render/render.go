package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/theme"
)

// ErrNoSlides is returned when asked to render an empty slide plan.
var ErrNoSlides = errors.New("no slides to render")

// Result summarises a rendered deck.
type Result struct {
	Path      string
	Slides    int
	Images    int
	Fallbacks int // Slides whose mapped layout was missing from the template.
}

// Renderer writes presentation files.
type Renderer struct {
	log *slog.Logger
}

func NewRenderer(log *slog.Logger) *Renderer {
	return &Renderer{log: log}
}

// LoadTemplate returns the template named by design, or the built-in default
// when the design has no template or it cannot be loaded.
func (r *Renderer) LoadTemplate(design deck.Design) *theme.Template {
	if design.TemplatePath == "" {
		return theme.Default()
	}
	tmpl, err := theme.Load(design.TemplatePath)
	if err != nil {
		r.log.Warn("template unusable, using built-in default", "template", design.TemplatePath, "error", err)
		return theme.Default()
	}
	return tmpl
}

// Render writes slides to outPath as a presentation. A *PlacementError means
// an image could not be placed and nothing was written.
func (r *Renderer) Render(slides []deck.Slide, design deck.Design, tmpl *theme.Template, outPath string) (Result, error) {
	if len(slides) == 0 {
		return Result{}, ErrNoSlides
	}
	if tmpl == nil {
		tmpl = theme.Default()
	}

	composed, err := compose(slides, tmpl)
	if err != nil {
		var pe *PlacementError
		if errors.As(err, &pe) {
			r.log.Error("image placement failed",
				"slide_index", pe.Index+1,
				"slide_id", pe.Slide.ID,
				"slide_type", pe.Slide.Type,
				"slide_title", pe.Slide.Title,
				"image_path", pe.Slide.ImagePath,
				"cause", pe.Err)
		}
		return Result{}, err
	}

	res := Result{Path: outPath, Slides: len(composed)}
	for _, cs := range composed {
		if cs.Picture != nil {
			res.Images++
		}
		if cs.Resolution.Fallback {
			res.Fallbacks++
			r.log.Warn("layout missing from template, using safe layout",
				"slide_id", cs.Slide.ID, "layout_key", cs.Resolution.Key, "layout", cs.Resolution.Index)
		}
	}

	if err := writePPTX(outPath, tmpl, styleFor(design, tmpl), composed); err != nil {
		return Result{}, fmt.Errorf("write presentation: %w", err)
	}
	r.log.Info("presentation written", "path", outPath, "slides", res.Slides, "images", res.Images)
	return res, nil
}

// styleFor takes fonts from the design when set, the rest from the template.
func styleFor(design deck.Design, tmpl *theme.Template) style {
	st := style{
		TitleFont: tmpl.Fonts.Title,
		BodyFont:  tmpl.Fonts.Body,
		Colors:    tmpl.Colors,
	}
	if design.Fonts.Title != "" {
		st.TitleFont = design.Fonts.Title
	}
	if design.Fonts.Body != "" {
		st.BodyFont = design.Fonts.Body
	}
	return st
}
