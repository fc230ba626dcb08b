package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want Parser
	}{
		{"a.TXT", &TextParser{}},
		{"a.md", &MarkdownParser{}},
		{"a.markdown", &MarkdownParser{}},
		{"a.csv", &CSVParser{}},
		{"a.htm", &HTMLParser{}},
		{"a.pdf", &PDFParser{FallbackPdftotext: true}},
		{"a.docx", &DOCXParser{}},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.name)
		require.NoError(t, err, tt.name)
		assert.IsType(t, tt.want, p, tt.name)
		assert.True(t, IsSupportedExtension(tt.name), tt.name)
	}

	_, err := ForFile("slides.pptx")
	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".pptx", unsupported.Ext)
	assert.False(t, IsSupportedExtension("slides.pptx"))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.md")
	require.NoError(t, os.WriteFile(path, []byte("# Photosynthesis\n\nPlants make sugar."), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", doc.Title)
	assert.Equal(t, "Photosynthesis\nPlants make sugar.", doc.Text())

	_, err = ParseFile(filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Cell Biology</title><style>p{}</style></head>
<body>
<nav><p>menu</p></nav>
<h1>Cells</h1>
<p>All   living things
are made of cells.</p>
<h2>Parts</h2>
<ul><li>Nucleus</li><li>Membrane</li></ul>
<script>var x = 1;</script>
</body></html>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "bio.html")
	require.NoError(t, err)

	assert.Equal(t, "Cell Biology", doc.Title)
	require.Len(t, doc.Sections, 1)
	cells := doc.Sections[0]
	assert.Equal(t, "Cells", cells.Heading)
	assert.Equal(t, "All living things are made of cells.", cells.Text)
	require.Len(t, cells.Children, 1)
	assert.Equal(t, "Nucleus\n\nMembrane", cells.Children[0].Text)
	assert.NotContains(t, doc.Text(), "menu")
	assert.NotContains(t, doc.Text(), "var x")
}

func TestHTMLParser_TitleFallsBackToHeading(t *testing.T) {
	doc, err := (&HTMLParser{}).Parse(strings.NewReader("<h2>Only Heading</h2><p>x</p>"), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "Only Heading", doc.Title)
}

func TestCSVParser(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,role\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("ana,dev\n")
	}
	doc, err := (&CSVParser{}).Parse(strings.NewReader(sb.String()), "team.csv")
	require.NoError(t, err)

	assert.Equal(t, "team", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Rows 2-21", doc.Sections[0].Heading)
	assert.Equal(t, "Rows 22-26", doc.Sections[1].Heading)
	assert.True(t, strings.HasPrefix(doc.Sections[0].Text, "name: ana, role: dev\n"))
}

func TestCSVParser_RaggedRows(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader("a,b\n1,2,3\n4\n"), "r.csv")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "a: 1, b: 2, 3\na: 4", doc.Sections[0].Text)
}

func TestStyleHeadingLevel(t *testing.T) {
	for style, want := range map[string]int{
		"Heading1":  1,
		"heading 3": 3,
		"Title":     1,
		"Heading7":  0,
		"Normal":    0,
	} {
		assert.Equal(t, want, styleHeadingLevel(style), style)
	}
}
