package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/theme"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(y), B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func shortTemplate(n int) *theme.Template {
	tmpl := theme.Default()
	tmpl.Layouts = tmpl.Layouts[:n]
	return tmpl
}

func TestResolveLayout(t *testing.T) {
	full := theme.Default()
	tests := []struct {
		name     string
		typ      deck.SlideType
		hasAsset bool
		tmpl     *theme.Template
		want     Resolution
	}{
		{"main title", deck.SlideMainTitle, false, full, Resolution{Key: KeyMainTitle, Index: 0}},
		{"chapter title", deck.SlideChapterTitle, false, full, Resolution{Key: KeyChapterTitle, Index: 0}},
		{"content with asset", deck.SlideContent, true, full, Resolution{Key: KeyContentWithImage, Index: 8}},
		{"content hint only", deck.SlideContent, false, full, Resolution{Key: KeyContentOnly, Index: 1}},
		{"quiz", deck.SlideQuiz, false, full, Resolution{Key: KeyQuiz, Index: 1}},
		{"thank you", deck.SlideThankYou, false, full, Resolution{Key: KeyThankYou, Index: 5}},
		{"unknown type", deck.SlideType("agenda"), false, full, Resolution{Key: KeyContentOnly, Index: 1}},
		{"asset but no picture layout", deck.SlideContent, true, shortTemplate(6), Resolution{Key: KeyContentOnly, Index: 1}},
		{"thank you on short template", deck.SlideThankYou, false, shortTemplate(3), Resolution{Key: KeyThankYou, Index: 1, Fallback: true}},
		{"single layout template", deck.SlideThankYou, false, shortTemplate(1), Resolution{Key: KeyThankYou, Index: 0, Fallback: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLayout(tt.typ, tt.hasAsset, tt.tmpl))
		})
	}
}

func TestResolveLayout_PictureSlotWithoutPlaceholder(t *testing.T) {
	tmpl := theme.Default()
	tmpl.Layouts[theme.LayoutPictureWithCaption].Placeholders = []theme.Placeholder{
		{Kind: theme.KindTitle, X: 0.1, Y: 0.1, W: 0.8, H: 0.2},
	}
	got := ResolveLayout(deck.SlideContent, true, tmpl)
	assert.Equal(t, KeyContentOnly, got.Key)
}

func TestHasAsset(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "s001.png")
	writePNG(t, p, 4, 4)

	assert.True(t, HasAsset(p))
	assert.False(t, HasAsset(""))
	assert.False(t, HasAsset(filepath.Join(dir, "missing.png")))
	assert.False(t, HasAsset(dir))
}

func TestCompose_FitsPictureInsidePlaceholder(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "wide.png")
	writePNG(t, img, 400, 100)

	slides := []deck.Slide{{ID: "s001", Type: deck.SlideContent, Title: "Photosynthesis", Bullets: []string{"Light", "Water"}, ImagePath: img}}
	composed, err := compose(slides, theme.Default())
	require.NoError(t, err)
	require.Len(t, composed, 1)

	cs := composed[0]
	require.NotNil(t, cs.Picture)
	assert.Equal(t, "png", cs.Picture.Format)

	ph, ok := cs.Layout.Find(theme.KindPicture)
	require.True(t, ok)
	box := cs.Picture.Box
	assert.GreaterOrEqual(t, box.X, ph.X-1e-9)
	assert.GreaterOrEqual(t, box.Y, ph.Y-1e-9)
	assert.LessOrEqual(t, box.X+box.W, ph.X+ph.W+1e-9)
	assert.LessOrEqual(t, box.Y+box.H, ph.Y+ph.H+1e-9)
	assert.InDelta(t, 4.0, box.W*slideWidthEMU/(box.H*slideHeightEMU), 1e-6)

	var bullets []string
	for _, tb := range cs.Texts {
		if tb.Bullets {
			bullets = tb.Lines
		}
	}
	assert.Equal(t, []string{"Light", "Water"}, bullets)
}

func TestCompose_SubtitleFallsIntoBodyWithoutSubtitleSlot(t *testing.T) {
	slides := []deck.Slide{{ID: "s002", Type: deck.SlideQuiz, Title: "Quiz", Subtitle: "Test yourself"}}
	composed, err := compose(slides, theme.Default())
	require.NoError(t, err)

	var body []string
	for _, tb := range composed[0].Texts {
		if tb.Kind == theme.KindBody {
			body = tb.Lines
		}
	}
	assert.Equal(t, []string{"Test yourself"}, body)
}

func TestRender_WritesPackage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "s003.png")
	writePNG(t, img, 64, 48)

	slides := []deck.Slide{
		{ID: "s001", Type: deck.SlideMainTitle, Title: "Biology <101>", Subtitle: "Beginner level"},
		{ID: "s002", Type: deck.SlideChapterTitle, Title: "Cells"},
		{ID: "s003", Type: deck.SlideContent, Title: "Membranes", Bullets: []string{"Lipid bilayer"}, ImagePath: img},
		{ID: "s004", Type: deck.SlideContent, Title: "Nucleus", Bullets: []string{"DNA"}, ImageHint: "a nucleus"},
		{ID: "s005", Type: deck.SlideThankYou, Title: "Thank You"},
	}
	out := filepath.Join(dir, "out", "final_presentation.pptx")

	r := NewRenderer(discardLogger())
	res, err := r.Render(slides, deck.Design{ThemeName: "Edutor Corporate Blue"}, theme.Default(), out)
	require.NoError(t, err)
	assert.Equal(t, Result{Path: out, Slides: 5, Images: 1}, res)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout9.xml",
		"ppt/slides/slide5.xml",
		"ppt/media/image1.png",
	} {
		assert.Contains(t, files, name)
	}
	assert.NotContains(t, files, "ppt/slides/slide6.xml")

	read := func(name string) string {
		rc, err := files[name].Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	assert.Contains(t, read("ppt/slides/slide1.xml"), "Biology &lt;101&gt;")
	assert.Contains(t, read("ppt/slides/_rels/slide3.xml.rels"), "slideLayout9.xml")
	assert.Contains(t, read("ppt/slides/_rels/slide3.xml.rels"), "../media/image1.png")
	assert.Contains(t, read("ppt/slides/_rels/slide4.xml.rels"), "slideLayout2.xml")
	assert.Contains(t, read("ppt/slides/_rels/slide5.xml.rels"), "slideLayout6.xml")
	assert.NotContains(t, read("ppt/slides/_rels/slide4.xml.rels"), "media")
}

func TestRender_CorruptImageIsPlacementError(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "s002.png")
	require.NoError(t, os.WriteFile(img, []byte("not an image"), 0o644))

	slides := []deck.Slide{
		{ID: "s001", Type: deck.SlideMainTitle, Title: "Deck"},
		{ID: "s002", Type: deck.SlideContent, Title: "Broken", ImagePath: img},
	}
	out := filepath.Join(dir, "final_presentation.pptx")
	_, err := NewRenderer(discardLogger()).Render(slides, deck.Design{}, nil, out)
	require.Error(t, err)
	assert.True(t, IsPlacementError(err))

	var pe *PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Index)
	assert.Equal(t, "s002", pe.Slide.ID)
	assert.NoFileExists(t, out)
}

func TestRender_UnusableImagesArePlacementErrors(t *testing.T) {
	var pngBuf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	require.NoError(t, png.Encode(&pngBuf, img))
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	tests := []struct {
		name string
		data []byte
	}{
		{"gif header only", []byte("GIF89a-truncated")},
		{"complete gif", gifBuf.Bytes()},
		{"truncated png", pngBuf.Bytes()[:pngBuf.Len()/2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			asset := filepath.Join(dir, "s002.png")
			require.NoError(t, os.WriteFile(asset, tt.data, 0o644))

			slides := []deck.Slide{
				{ID: "s001", Type: deck.SlideMainTitle, Title: "Deck"},
				{ID: "s002", Type: deck.SlideContent, Title: "Broken", ImagePath: asset},
			}
			out := filepath.Join(dir, "final_presentation.pptx")
			_, err := NewRenderer(discardLogger()).Render(slides, deck.Design{}, nil, out)
			require.Error(t, err)
			assert.True(t, IsPlacementError(err))
			assert.NoFileExists(t, out)
		})
	}
}

func TestRender_NoSlides(t *testing.T) {
	_, err := NewRenderer(discardLogger()).Render(nil, deck.Design{}, nil, filepath.Join(t.TempDir(), "x.pptx"))
	assert.ErrorIs(t, err, ErrNoSlides)
}

func TestRender_FallbackCounted(t *testing.T) {
	slides := []deck.Slide{{ID: "s001", Type: deck.SlideThankYou, Title: "Bye"}}
	res, err := NewRenderer(discardLogger()).Render(slides, deck.Design{}, shortTemplate(2), filepath.Join(t.TempDir(), "x.pptx"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fallbacks)
}

func TestLoadTemplate(t *testing.T) {
	r := NewRenderer(discardLogger())
	assert.Equal(t, "Edutor Corporate Blue", r.LoadTemplate(deck.Design{}).Name)
	assert.Equal(t, "Edutor Corporate Blue", r.LoadTemplate(deck.Design{TemplatePath: "/nonexistent/x_theme.yaml"}).Name)

	tmpl := r.LoadTemplate(deck.Design{TemplatePath: filepath.Join("..", "..", "templates", "midnight_theme.yaml")})
	assert.NotEqual(t, "Edutor Corporate Blue", tmpl.Name)
}

func TestStyleFor_DesignFontsWin(t *testing.T) {
	st := styleFor(deck.Design{Fonts: deck.Fonts{Title: "Georgia"}}, theme.Default())
	assert.Equal(t, "Georgia", st.TitleFont)
	assert.Equal(t, "Calibri", st.BodyFont)
}

func TestSofficeConverter(t *testing.T) {
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "final_presentation.pptx")

	t.Run("falls through to second binary", func(t *testing.T) {
		var tried []string
		c := NewSofficeConverter(0, discardLogger())
		c.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			tried = append(tried, name)
			if name == "soffice" {
				return nil, exec.ErrNotFound
			}
			assert.Equal(t, []string{"--headless", "--convert-to", "pdf", deckPath, "--outdir", dir}, args)
			return nil, os.WriteFile(PDFPath(deckPath), []byte("%PDF-1.4"), 0o644)
		}
		got, err := c.Convert(context.Background(), ExportRequest{DeckPath: deckPath})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "final_presentation.pdf"), got)
		assert.Equal(t, []string{"soffice", "libreoffice"}, tried)
	})

	t.Run("all fail", func(t *testing.T) {
		c := NewSofficeConverter(0, discardLogger())
		c.Binaries = []string{"a", "b"}
		c.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("crash"), errors.New("exit status 1")
		}
		_, err := c.Convert(context.Background(), ExportRequest{DeckPath: filepath.Join(t.TempDir(), "d.pptx")})
		assert.ErrorIs(t, err, ErrNoConverter)
	})
}

func TestNativeConverter(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "s002.png")
	writePNG(t, img, 32, 32)

	req := ExportRequest{
		DeckPath: filepath.Join(dir, "final_presentation.pptx"),
		Slides: []deck.Slide{
			{ID: "s001", Type: deck.SlideMainTitle, Title: "Café science", Subtitle: "Expert level"},
			{ID: "s002", Type: deck.SlideContent, Title: "Cells", Bullets: []string{"One", "Two"}, ImagePath: img},
		},
	}
	got, err := NativeConverter{}.Convert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "final_presentation.pdf"), got)

	b, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF-"))
}

func TestCoreFont(t *testing.T) {
	assert.Equal(t, "Helvetica", coreFont("Calibri"))
	assert.Equal(t, "Helvetica", coreFont("Open Sans"))
	assert.Equal(t, "Times", coreFont("Georgia"))
	assert.Equal(t, "Times", coreFont("Noto Serif"))
	assert.Equal(t, "Courier", coreFont("JetBrains Mono"))
}

func TestRGB(t *testing.T) {
	assert.Equal(t, [3]int{0x1F, 0x38, 0x64}, rgb("1F3864"))
	assert.Equal(t, [3]int{255, 255, 255}, rgb("#FFFFFF"))
	assert.Equal(t, [3]int{0, 0, 0}, rgb("bogus"))
}
