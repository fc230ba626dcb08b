package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/dgallion1/deckgen/internal/theme"
)

// Page size in millimetres, matching the presentation's 16:9 slide.
const (
	pageWidthMM  = 338.667
	pageHeightMM = 190.5
	ptToMM       = 0.3528
)

// NativeConverter draws the slide plan straight to PDF with the same layout
// resolution as the presentation writer. Fonts map to the PDF core fonts.
type NativeConverter struct{}

func (NativeConverter) Name() string { return "native" }

func (NativeConverter) Convert(ctx context.Context, req ExportRequest) (string, error) {
	tmpl := req.Template
	if tmpl == nil {
		tmpl = theme.Default()
	}
	composed, err := compose(req.Slides, tmpl)
	if err != nil {
		return "", err
	}
	st := styleFor(req.Design, tmpl)
	out := PDFPath(req.DeckPath)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageWidthMM, Ht: pageHeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(firstTitle(req), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	bg := rgb(st.Colors.Background)
	for _, cs := range composed {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pdf.AddPage()
		pdf.SetFillColor(bg[0], bg[1], bg[2])
		pdf.Rect(0, 0, pageWidthMM, pageHeightMM, "F")

		for _, tb := range cs.Texts {
			drawText(pdf, tr, tb, st)
		}
		if pic := cs.Picture; pic != nil {
			pdf.ImageOptions(pic.Path,
				pic.Box.X*pageWidthMM, pic.Box.Y*pageHeightMM, pic.Box.W*pageWidthMM, pic.Box.H*pageHeightMM,
				false, gofpdf.ImageOptions{ImageType: strings.ToUpper(mediaExt(pic.Format)), ReadDpi: false}, 0, "")
		}
		if pdf.Err() {
			return "", fmt.Errorf("draw slide %d: %w", cs.Index+1, pdf.Error())
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return out, nil
}

func drawText(pdf *gofpdf.Fpdf, tr func(string) string, tb textBox, st style) {
	rp, algn := textStyle(tb.Kind, st)
	family, fontStyle := st.BodyFont, ""
	if tb.Kind == theme.KindTitle {
		family = st.TitleFont
	}
	if rp.bold {
		fontStyle = "B"
	}
	size := float64(rp.size) / 100
	lineHt := size * ptToMM * 1.25

	c := rgb(rp.color)
	pdf.SetFont(coreFont(family), fontStyle, size)
	pdf.SetTextColor(c[0], c[1], c[2])

	align := "L"
	if algn == "ctr" {
		align = "C"
	}
	x, y := tb.Box.X*pageWidthMM, tb.Box.Y*pageHeightMM
	w := tb.Box.W * pageWidthMM
	pdf.SetXY(x, y)
	for _, line := range tb.Lines {
		if tb.Bullets {
			line = "• " + line
		}
		pdf.SetX(x)
		pdf.MultiCell(w, lineHt, tr(line), "", align, false)
		if tb.Bullets {
			pdf.SetY(pdf.GetY() + lineHt*0.3)
		}
	}
}

// coreFont maps a typeface name onto a PDF core font family.
func coreFont(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "courier"), strings.Contains(n, "mono"):
		return "Courier"
	case strings.Contains(n, "sans"):
		return "Helvetica"
	case strings.Contains(n, "times"), strings.Contains(n, "georgia"),
		strings.Contains(n, "garamond"), strings.Contains(n, "serif"):
		return "Times"
	}
	return "Helvetica"
}

func rgb(hex string) [3]int {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return [3]int{0, 0, 0}
	}
	return [3]int{int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)}
}

func firstTitle(req ExportRequest) string {
	for _, s := range req.Slides {
		if s.Title != "" {
			return s.Title
		}
	}
	return filepath.Base(req.DeckPath)
}
