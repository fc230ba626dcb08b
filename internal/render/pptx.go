package render

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/deckgen/internal/theme"
)

const (
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDoc   = nsR + "/officeDocument"
	relSlideMaster = nsR + "/slideMaster"
	relSlideLayout = nsR + "/slideLayout"
	relSlide       = nsR + "/slide"
	relTheme       = nsR + "/theme"
	relImage       = nsR + "/image"

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// style is the resolved look of a deck.
type style struct {
	TitleFont string
	BodyFont  string
	Colors    theme.Colors
}

type mediaPart struct {
	name string // e.g. image3.png
	path string
}

// writePPTX writes the presentation package to path atomically.
func writePPTX(path string, tmpl *theme.Template, st style, slides []composedSlide) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".deck-*.pptx")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	zw := zip.NewWriter(tmp)
	if err := writeParts(zw, tmpl, st, slides); err != nil {
		zw.Close()
		tmp.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finish pptx: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close pptx: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func writeParts(zw *zip.Writer, tmpl *theme.Template, st style, slides []composedSlide) error {
	var media []mediaPart
	slideRels := make([]string, len(slides))
	for i, cs := range slides {
		rels := []relationship{{ID: "rId1", Type: relSlideLayout, Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", cs.Resolution.Index+1)}}
		if cs.Picture != nil {
			m := mediaPart{name: fmt.Sprintf("image%d.%s", len(media)+1, mediaExt(cs.Picture.Format)), path: cs.Picture.Path}
			media = append(media, m)
			rels = append(rels, relationship{ID: "rId2", Type: relImage, Target: "../media/" + m.name})
		}
		slideRels[i] = relsXML(rels)
	}

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML(len(tmpl.Layouts), len(slides))},
		{"_rels/.rels", relsXML([]relationship{{ID: "rId1", Type: relOfficeDoc, Target: "ppt/presentation.xml"}})},
		{"ppt/presentation.xml", presentationXML(len(slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(slides))},
		{"ppt/theme/theme1.xml", themeXML(tmpl.Name, st)},
		{"ppt/slideMasters/slideMaster1.xml", masterXML(len(tmpl.Layouts), st)},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", masterRelsXML(len(tmpl.Layouts))},
	}
	for i, l := range tmpl.Layouts {
		parts = append(parts,
			struct{ name, body string }{fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), layoutXML(l)},
			struct{ name, body string }{fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1),
				relsXML([]relationship{{ID: "rId1", Type: relSlideMaster, Target: "../slideMasters/slideMaster1.xml"}})},
		)
	}
	for i, cs := range slides {
		parts = append(parts,
			struct{ name, body string }{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML(cs, st)},
			struct{ name, body string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRels[i]},
		)
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("add %s: %w", p.name, err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	for _, m := range media {
		if err := copyMedia(zw, m); err != nil {
			return err
		}
	}
	return nil
}

func copyMedia(zw *zip.Writer, m mediaPart) error {
	f, err := os.Open(m.path)
	if err != nil {
		return fmt.Errorf("open media %s: %w", m.path, err)
	}
	defer f.Close()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "ppt/media/" + m.name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("add media %s: %w", m.name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write media %s: %w", m.name, err)
	}
	return nil
}

func mediaExt(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "jpeg"
	}
	return "png"
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

func relsXML(rels []relationship) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<Relationships xmlns="%s">`, nsRel)
	for _, r := range rels {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.ID, r.Type, esc(r.Target))
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func contentTypesXML(layouts, slides int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	sb.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	override := func(part, ct string) {
		fmt.Fprintf(&sb, `<Override PartName="%s" ContentType="%s"/>`, part, ct)
	}
	override("/ppt/presentation.xml", ctPresentation)
	override("/ppt/slideMasters/slideMaster1.xml", ctSlideMaster)
	override("/ppt/theme/theme1.xml", ctTheme)
	for i := 1; i <= layouts; i++ {
		override(fmt.Sprintf("/ppt/slideLayouts/slideLayout%d.xml", i), ctSlideLayout)
	}
	for i := 1; i <= slides; i++ {
		override(fmt.Sprintf("/ppt/slides/slide%d.xml", i), ctSlide)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func presentationXML(slides int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`, nsA, nsR, nsP)
	sb.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if slides > 0 {
		sb.WriteString(`<p:sldIdLst>`)
		for i := 0; i < slides; i++ {
			fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+3)
		}
		sb.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&sb, `<p:sldSz cx="%d" cy="%d"/>`, slideWidthEMU, slideHeightEMU)
	sb.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	sb.WriteString(`</p:presentation>`)
	return sb.String()
}

func presentationRelsXML(slides int) string {
	rels := []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId2", Type: relTheme, Target: "theme/theme1.xml"},
	}
	for i := 0; i < slides; i++ {
		rels = append(rels, relationship{ID: fmt.Sprintf("rId%d", i+3), Type: relSlide, Target: fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	return relsXML(rels)
}

func masterRelsXML(layouts int) string {
	rels := make([]relationship, 0, layouts+1)
	for i := 0; i < layouts; i++ {
		rels = append(rels, relationship{ID: fmt.Sprintf("rId%d", i+1), Type: relSlideLayout, Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1)})
	}
	rels = append(rels, relationship{ID: fmt.Sprintf("rId%d", layouts+1), Type: relTheme, Target: "../theme/theme1.xml"})
	return relsXML(rels)
}
