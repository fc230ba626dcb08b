package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dgallion1/deckgen/internal/theme"
)

func esc(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func emuX(f float64) int64 { return int64(f * slideWidthEMU) }
func emuY(f float64) int64 { return int64(f * slideHeightEMU) }

func xfrm(b theme.Placeholder) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emuX(b.X), emuY(b.Y), emuX(b.W), emuY(b.H))
}

// phTag is the placeholder reference shared by a layout slot and the slide
// shapes that fill it.
func phTag(kind theme.PlaceholderKind, idx int) string {
	switch kind {
	case theme.KindTitle:
		return `<p:ph type="title"/>`
	case theme.KindSubtitle:
		return fmt.Sprintf(`<p:ph type="subTitle" idx="%d"/>`, idx)
	case theme.KindPicture:
		return fmt.Sprintf(`<p:ph type="pic" idx="%d"/>`, idx)
	}
	return fmt.Sprintf(`<p:ph type="body" idx="%d"/>`, idx)
}

func phName(kind theme.PlaceholderKind, id int) string {
	switch kind {
	case theme.KindTitle:
		return fmt.Sprintf("Title %d", id)
	case theme.KindSubtitle:
		return fmt.Sprintf("Subtitle %d", id)
	case theme.KindPicture:
		return fmt.Sprintf("Picture Placeholder %d", id)
	}
	return fmt.Sprintf("Content Placeholder %d", id)
}

const spTreeOpen = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func rootOpen(tag string) string {
	return fmt.Sprintf(`<%s xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, tag, nsA, nsR, nsP)
}

// runProps are the character properties of one text run.
type runProps struct {
	size  int // hundredths of a point
	bold  bool
	color string
	font  string
}

func (r runProps) xml(tag string) string {
	b := ""
	if r.bold {
		b = ` b="1"`
	}
	return fmt.Sprintf(`<a:%s lang="en-US" sz="%d"%s dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:%s>`,
		tag, r.size, b, r.color, esc(r.font), tag)
}

func textStyle(kind theme.PlaceholderKind, st style) (runProps, string) {
	switch kind {
	case theme.KindTitle:
		return runProps{size: 3600, bold: true, color: st.Colors.Title, font: st.TitleFont}, "ctr"
	case theme.KindSubtitle:
		return runProps{size: 2400, color: st.Colors.Accent, font: st.BodyFont}, "ctr"
	}
	return runProps{size: 2000, color: st.Colors.Body, font: st.BodyFont}, "l"
}

func paragraphs(lines []string, bullets bool, rp runProps, algn string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(`<a:p>`)
		if bullets {
			fmt.Fprintf(&sb, `<a:pPr marL="342900" indent="-342900" algn="%s"><a:spcBef><a:spcPts val="600"/></a:spcBef>`+
				`<a:buFont typeface="Arial"/><a:buChar char="&#8226;"/></a:pPr>`, algn)
		} else {
			fmt.Fprintf(&sb, `<a:pPr algn="%s"><a:buNone/></a:pPr>`, algn)
		}
		fmt.Fprintf(&sb, `<a:r>%s<a:t>%s</a:t></a:r>`, rp.xml("rPr"), esc(line))
		sb.WriteString(`</a:p>`)
	}
	if len(lines) == 0 {
		sb.WriteString(`<a:p>` + rp.xml("endParaRPr") + `</a:p>`)
	}
	return sb.String()
}

func textShape(id int, kind theme.PlaceholderKind, idx int, box theme.Placeholder, body string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr>`+
		`<p:spPr>%s</p:spPr><p:txBody><a:bodyPr wrap="square" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>%s</p:txBody></p:sp>`,
		id, phName(kind, id), phTag(kind, idx), xfrm(box), anchorFor(kind), body)
}

func anchorFor(kind theme.PlaceholderKind) string {
	if kind == theme.KindBody {
		return "t"
	}
	return "ctr"
}

func slideXML(cs composedSlide, st style) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(rootOpen("p:sld"))
	sb.WriteString(`<p:cSld>`)
	sb.WriteString(spTreeOpen)

	id := 2
	for _, tb := range cs.Texts {
		rp, algn := textStyle(tb.Kind, st)
		sb.WriteString(textShape(id, tb.Kind, tb.PhIdx, tb.Box, paragraphs(tb.Lines, tb.Bullets, rp, algn)))
		id++
	}
	if pic := cs.Picture; pic != nil {
		fmt.Fprintf(&sb, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d" descr="%s"/><p:cNvPicPr><a:picLocks noGrp="1" noChangeAspect="1"/></p:cNvPicPr><p:nvPr>%s</p:nvPr></p:nvPicPr>`+
			`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
			`<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
			id, id, esc(cs.Slide.ImageHint), phTag(theme.KindPicture, pic.PhIdx), xfrm(pic.Box))
	}

	sb.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return sb.String()
}

func layoutXML(l theme.Layout) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(strings.Replace(rootOpen("p:sldLayout"), ">", ` preserve="1">`, 1))
	fmt.Fprintf(&sb, `<p:cSld name="%s">`, esc(l.Name))
	sb.WriteString(spTreeOpen)
	for j, ph := range l.Placeholders {
		id := j + 2
		if ph.Kind == theme.KindPicture {
			fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr>`+
				`<p:spPr>%s</p:spPr></p:sp>`, id, phName(ph.Kind, id), phTag(ph.Kind, j), xfrm(ph))
			continue
		}
		sb.WriteString(textShape(id, ph.Kind, j, ph, `<a:p><a:endParaRPr lang="en-US"/></a:p>`))
	}
	sb.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`)
	return sb.String()
}

func masterXML(layouts int, st style) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(rootOpen("p:sldMaster"))
	fmt.Fprintf(&sb, `<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, st.Colors.Background)
	sb.WriteString(spTreeOpen)
	sb.WriteString(`</p:spTree></p:cSld>`)
	sb.WriteString(`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
		`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`)
	sb.WriteString(`<p:sldLayoutIdLst>`)
	for i := 0; i < layouts; i++ {
		fmt.Fprintf(&sb, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
	}
	sb.WriteString(`</p:sldLayoutIdLst>`)

	title := runProps{size: 3600, bold: true, color: st.Colors.Title, font: st.TitleFont}
	body := runProps{size: 2000, color: st.Colors.Body, font: st.BodyFont}
	fmt.Fprintf(&sb, `<p:txStyles><p:titleStyle><a:lvl1pPr algn="ctr">%s</a:lvl1pPr></p:titleStyle>`, title.xml("defRPr"))
	fmt.Fprintf(&sb, `<p:bodyStyle><a:lvl1pPr marL="342900" indent="-342900"><a:buFont typeface="Arial"/><a:buChar char="&#8226;"/>%s</a:lvl1pPr></p:bodyStyle>`, body.xml("defRPr"))
	fmt.Fprintf(&sb, `<p:otherStyle><a:lvl1pPr>%s</a:lvl1pPr></p:otherStyle></p:txStyles>`, body.xml("defRPr"))
	sb.WriteString(`</p:sldMaster>`)
	return sb.String()
}

func themeXML(name string, st style) string {
	c := st.Colors
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<a:theme xmlns:a="%s" name="%s"><a:themeElements>`, nsA, esc(name))
	fmt.Fprintf(&sb, `<a:clrScheme name="%s">`, esc(name))
	for _, e := range []struct{ tag, val string }{
		{"dk1", "000000"}, {"lt1", "FFFFFF"}, {"dk2", c.Title}, {"lt2", c.Background},
		{"accent1", c.Accent}, {"accent2", "ED7D31"}, {"accent3", "A5A5A5"}, {"accent4", "FFC000"},
		{"accent5", "5B9BD5"}, {"accent6", "70AD47"}, {"hlink", c.Accent}, {"folHlink", "954F72"},
	} {
		fmt.Fprintf(&sb, `<a:%s><a:srgbClr val="%s"/></a:%s>`, e.tag, e.val, e.tag)
	}
	sb.WriteString(`</a:clrScheme>`)
	fmt.Fprintf(&sb, `<a:fontScheme name="%s">`, esc(name))
	fmt.Fprintf(&sb, `<a:majorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>`, esc(st.TitleFont))
	fmt.Fprintf(&sb, `<a:minorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>`, esc(st.BodyFont))
	sb.WriteString(`</a:fontScheme>`)
	sb.WriteString(fmtScheme)
	sb.WriteString(`</a:themeElements><a:objectDefaults/><a:extraClrSchemeLst/></a:theme>`)
	return sb.String()
}

const fmtScheme = `<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"><a:tint val="50000"/></a:schemeClr></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"><a:shade val="80000"/></a:schemeClr></a:solidFill>` +
	`</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"><a:tint val="95000"/></a:schemeClr></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"><a:shade val="90000"/></a:schemeClr></a:solidFill>` +
	`</a:bgFillStyleLst>` +
	`</a:fmtScheme>`
