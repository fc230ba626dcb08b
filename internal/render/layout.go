// Package render turns a slide plan into deliverable files: an Office Open
// XML presentation and, optionally, a PDF.
package render

import (
	"os"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/theme"
)

// LayoutKey is the rendering role of a slide after asset resolution.
type LayoutKey string

const (
	KeyMainTitle        LayoutKey = "main_title"
	KeyChapterTitle     LayoutKey = "chapter_title"
	KeyContentOnly      LayoutKey = "content_only"
	KeyContentWithImage LayoutKey = "content_with_image"
	KeyQuiz             LayoutKey = "quiz"
	KeyThankYou         LayoutKey = "thank_you"
)

var layoutIndex = map[LayoutKey]int{
	KeyMainTitle:        theme.LayoutTitleSlide,
	KeyChapterTitle:     theme.LayoutTitleSlide,
	KeyContentOnly:      theme.LayoutTitleAndContent,
	KeyContentWithImage: theme.LayoutPictureWithCaption,
	KeyQuiz:             theme.LayoutTitleAndContent,
	KeyThankYou:         theme.LayoutTitleOnly,
}

// safeLayout is the text layout used when a mapped index does not exist in
// the active template.
const safeLayout = theme.LayoutTitleAndContent

// Resolution is the layout chosen for one slide.
type Resolution struct {
	Key      LayoutKey
	Index    int
	Fallback bool // Index is the safe layout because the mapped one was out of range.
}

// ResolveLayout picks the template layout for a slide. hasAsset must be true
// only when the slide's image path points at an existing file; an image hint
// alone never selects the image layout. A content slide with an asset uses
// the picture layout only when the template has that slot with a picture
// placeholder. Unknown slide types render as text content.
func ResolveLayout(t deck.SlideType, hasAsset bool, tmpl *theme.Template) Resolution {
	key := KeyContentOnly
	switch t {
	case deck.SlideContent:
		if hasAsset && supportsImage(tmpl) {
			key = KeyContentWithImage
		}
	case deck.SlideMainTitle, deck.SlideChapterTitle, deck.SlideQuiz, deck.SlideThankYou:
		key = LayoutKey(t)
	}

	idx := layoutIndex[key]
	if _, ok := tmpl.Layout(idx); ok {
		return Resolution{Key: key, Index: idx}
	}
	return Resolution{Key: key, Index: min(safeLayout, len(tmpl.Layouts)-1), Fallback: true}
}

func supportsImage(tmpl *theme.Template) bool {
	l, ok := tmpl.Layout(layoutIndex[KeyContentWithImage])
	return ok && l.Has(theme.KindPicture)
}

// HasAsset reports whether path names an existing regular file.
func HasAsset(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
