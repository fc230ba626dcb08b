package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/theme"
)

// Slide size in EMU (13.333in x 7.5in, 16:9).
const (
	slideWidthEMU  = 12192000
	slideHeightEMU = 6858000
)

// PlacementError reports a visual asset that cannot be placed into its
// layout slot. It aborts rendering: a bad asset reference means the slide
// plan is inconsistent.
type PlacementError struct {
	Index int // 0-based slide index.
	Slide deck.Slide
	Err   error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("slide %d (%s, %q): cannot place image %q: %v",
		e.Index+1, e.Slide.ID, e.Slide.Title, e.Slide.ImagePath, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// IsPlacementError reports whether err is or wraps a *PlacementError.
func IsPlacementError(err error) bool {
	var pe *PlacementError
	return errors.As(err, &pe)
}

// composedSlide is a slide with its layout resolved and its content assigned
// to placeholders. Both output formats render from it.
type composedSlide struct {
	Index      int
	Slide      deck.Slide
	Resolution Resolution
	Layout     theme.Layout
	Texts      []textBox
	Picture    *pictureBox
}

type textBox struct {
	Kind    theme.PlaceholderKind
	PhIdx   int // Position of the placeholder in the layout.
	Box     theme.Placeholder
	Lines   []string
	Bullets bool
}

type pictureBox struct {
	PhIdx  int
	Path   string
	Format string // "png" or "jpeg"
	Box    theme.Placeholder // Fitted inside the placeholder, aspect preserved.
}

// compose resolves every slide against tmpl.
func compose(slides []deck.Slide, tmpl *theme.Template) ([]composedSlide, error) {
	out := make([]composedSlide, 0, len(slides))
	for i, s := range slides {
		res := ResolveLayout(s.Type, HasAsset(s.ImagePath), tmpl)
		layout, _ := tmpl.Layout(res.Index)
		cs := composedSlide{Index: i, Slide: s, Resolution: res, Layout: layout}

		bodyUsed := false
		for j, ph := range layout.Placeholders {
			switch ph.Kind {
			case theme.KindTitle:
				if s.Title != "" {
					cs.Texts = append(cs.Texts, textBox{Kind: ph.Kind, PhIdx: j, Box: ph, Lines: []string{s.Title}})
				}
			case theme.KindSubtitle:
				if s.Subtitle != "" {
					cs.Texts = append(cs.Texts, textBox{Kind: ph.Kind, PhIdx: j, Box: ph, Lines: []string{s.Subtitle}})
				}
			case theme.KindBody:
				if bodyUsed {
					continue
				}
				bodyUsed = true
				if len(s.Bullets) > 0 {
					cs.Texts = append(cs.Texts, textBox{Kind: ph.Kind, PhIdx: j, Box: ph, Lines: s.Bullets, Bullets: true})
				} else if s.Subtitle != "" && !layout.Has(theme.KindSubtitle) {
					cs.Texts = append(cs.Texts, textBox{Kind: ph.Kind, PhIdx: j, Box: ph, Lines: []string{s.Subtitle}})
				}
			case theme.KindPicture:
				if res.Key != KeyContentWithImage || cs.Picture != nil {
					continue
				}
				pic, err := placePicture(s.ImagePath, ph)
				if err != nil {
					return nil, &PlacementError{Index: i, Slide: s, Err: err}
				}
				pic.PhIdx = j
				cs.Picture = pic
			}
		}
		out = append(out, cs)
	}
	return out, nil
}

// placePicture decodes the image at path and fits it into ph. Only complete
// PNG and JPEG files are accepted.
func placePicture(path string, ph theme.Placeholder) (*pictureBox, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	cfg := image.Config{Width: bounds.Dx(), Height: bounds.Dy()}

	boxW := ph.W * slideWidthEMU
	boxH := ph.H * slideHeightEMU
	scale := min(boxW/float64(cfg.Width), boxH/float64(cfg.Height))
	w := float64(cfg.Width) * scale / slideWidthEMU
	h := float64(cfg.Height) * scale / slideHeightEMU

	return &pictureBox{
		Path:   path,
		Format: strings.ToLower(format),
		Box: theme.Placeholder{
			Kind: theme.KindPicture,
			X:    ph.X + (ph.W-w)/2,
			Y:    ph.Y + (ph.H-h)/2,
			W:    w,
			H:    h,
		},
	}, nil
}
