// Package document is the parsed form of a source document: a title and a
// tree of headed sections, flattened to plain text for structuring.
package document

import (
	"path/filepath"
	"strings"
)

// Document is the root of a parsed document.
type Document struct {
	Title    string     // From metadata, the first heading, or the file name.
	Sections []*Section // Top-level sections in reading order.
}

// Section is a recursive section of the document.
type Section struct {
	Heading  string     // Empty for untitled text such as a PDF page.
	Text     string     // Body text directly under the heading.
	Page     int        // Source page, 0 if not applicable.
	Children []*Section // Subsections.
}

// Text flattens the document depth-first: each heading on its own line
// followed by its text, sections separated by blank lines. Consecutive
// untitled page sections are joined with a single newline so page breaks
// survive as line breaks.
func (d *Document) Text() string {
	var sb strings.Builder
	prevPage := false
	var walk func([]*Section)
	walk = func(sections []*Section) {
		for _, s := range sections {
			heading := strings.TrimSpace(s.Heading)
			text := strings.TrimSpace(s.Text)
			isPage := heading == "" && s.Page > 0
			if heading != "" || text != "" {
				if sb.Len() > 0 {
					if isPage && prevPage {
						sb.WriteString("\n")
					} else {
						sb.WriteString("\n\n")
					}
				}
				if heading != "" {
					sb.WriteString(heading)
					if text != "" {
						sb.WriteString("\n")
					}
				}
				sb.WriteString(text)
				prevPage = isPage
			}
			walk(s.Children)
		}
	}
	walk(d.Sections)
	return sb.String()
}

// IsEmpty reports whether the document has no text at all.
func (d *Document) IsEmpty() bool {
	return strings.TrimSpace(d.Text()) == ""
}

// Stem returns filename without its directory and extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
