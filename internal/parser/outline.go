package parser

import (
	"strings"

	"github.com/dgallion1/deckgen/internal/document"
)

// outline builds a section tree from a flat stream of headings and
// paragraphs. A heading nests under the closest earlier heading with a lower
// level.
type outline struct {
	root         *document.Section
	stack        []outlineFrame
	pending      strings.Builder
	firstHeading string
}

type outlineFrame struct {
	section *document.Section
	level   int
}

func newOutline() *outline {
	root := &document.Section{}
	return &outline{
		root:  root,
		stack: []outlineFrame{{section: root, level: 0}},
	}
}

func (o *outline) heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	o.flush()
	if o.firstHeading == "" {
		o.firstHeading = title
	}
	s := &document.Section{Heading: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].section
	parent.Children = append(parent.Children, s)
	o.stack = append(o.stack, outlineFrame{section: s, level: level})
}

func (o *outline) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if o.pending.Len() > 0 {
		o.pending.WriteString("\n\n")
	}
	o.pending.WriteString(text)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.pending.String())
	o.pending.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].section
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// document finishes the outline. Text that appeared before the first
// heading becomes a leading untitled section. The title is title if set,
// else the first heading, else fallback.
func (o *outline) document(title, fallback string) *document.Document {
	o.flush()
	doc := &document.Document{Title: title}
	if doc.Title == "" {
		doc.Title = o.firstHeading
	}
	if doc.Title == "" {
		doc.Title = fallback
	}
	if o.root.Text != "" {
		doc.Sections = append(doc.Sections, &document.Section{Text: o.root.Text})
	}
	doc.Sections = append(doc.Sections, o.root.Children...)
	return doc
}
