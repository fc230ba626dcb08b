// Package theme defines the known deck themes and the template files that
// describe their fonts, colours and slide layouts.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Name selects one of the known themes.
type Name string

const (
	Edutor   Name = "edutor"
	Minimal  Name = "minimal"
	Midnight Name = "midnight"
)

// DefaultName is used when no theme is selected or the selection is unknown.
const DefaultName = Edutor

// Known lists the selectable themes.
func Known() []Name { return []Name{Edutor, Minimal, Midnight} }

// Resolve maps a selector to a known theme. It accepts a bare name
// ("minimal") or a template file name ("minimal_theme.yaml"). The second
// result is false when the selector was empty or unknown and the default
// was returned instead.
func Resolve(selector string) (Name, bool) {
	s := strings.ToLower(strings.TrimSpace(filepath.Base(selector)))
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = strings.TrimSuffix(s, "_theme")
	for _, n := range Known() {
		if s == string(n) {
			return n, true
		}
	}
	return DefaultName, false
}

// FileFor is the template file path of theme n under dir.
func FileFor(dir string, n Name) string {
	return filepath.Join(dir, string(n)+"_theme.yaml")
}

// PlaceholderKind is what a layout slot holds.
type PlaceholderKind string

const (
	KindTitle    PlaceholderKind = "title"
	KindSubtitle PlaceholderKind = "subtitle"
	KindBody     PlaceholderKind = "body"
	KindPicture  PlaceholderKind = "picture"
)

// Placeholder is a layout slot. Geometry is a fraction of the slide size.
type Placeholder struct {
	Kind PlaceholderKind `yaml:"kind"`
	X    float64         `yaml:"x"`
	Y    float64         `yaml:"y"`
	W    float64         `yaml:"w"`
	H    float64         `yaml:"h"`
}

// Layout is one template slot shape.
type Layout struct {
	Name         string        `yaml:"name"`
	Placeholders []Placeholder `yaml:"placeholders"`
}

// Find returns the first placeholder of kind k.
func (l Layout) Find(k PlaceholderKind) (Placeholder, bool) {
	for _, p := range l.Placeholders {
		if p.Kind == k {
			return p, true
		}
	}
	return Placeholder{}, false
}

// Has reports whether the layout has a placeholder of kind k.
func (l Layout) Has(k PlaceholderKind) bool {
	_, ok := l.Find(k)
	return ok
}

// Fonts names the title and body typefaces.
type Fonts struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Colors are RRGGBB hex values without a leading '#'.
type Colors struct {
	Background string `yaml:"background"`
	Title      string `yaml:"title"`
	Body       string `yaml:"body"`
	Accent     string `yaml:"accent"`
}

// Template is a parsed theme template.
type Template struct {
	Name    string   `yaml:"name"`
	Fonts   Fonts    `yaml:"fonts"`
	Colors  Colors   `yaml:"colors"`
	Layouts []Layout `yaml:"layouts"`
}

// Layout returns layout i, or false when i is out of range.
func (t *Template) Layout(i int) (Layout, bool) {
	if i < 0 || i >= len(t.Layouts) {
		return Layout{}, false
	}
	return t.Layouts[i], true
}

// Load reads and validates a YAML template. Fields left out of the file
// take the built-in default's values.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", filepath.Base(path), err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("template %s: %w", filepath.Base(path), err)
	}
	return &t, nil
}

func (t *Template) applyDefaults() {
	def := Default()
	if t.Name == "" {
		t.Name = def.Name
	}
	if t.Fonts.Title == "" {
		t.Fonts.Title = def.Fonts.Title
	}
	if t.Fonts.Body == "" {
		t.Fonts.Body = def.Fonts.Body
	}
	t.Colors.Background = orDefault(t.Colors.Background, def.Colors.Background)
	t.Colors.Title = orDefault(t.Colors.Title, def.Colors.Title)
	t.Colors.Body = orDefault(t.Colors.Body, def.Colors.Body)
	t.Colors.Accent = orDefault(t.Colors.Accent, def.Colors.Accent)
	if len(t.Layouts) == 0 {
		t.Layouts = def.Layouts
	}
}

func orDefault(hex, def string) string {
	hex = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if hex == "" {
		return def
	}
	return hex
}

// Validate checks colours and layout geometry.
func (t *Template) Validate() error {
	var errs []error
	colors := []struct{ name, value string }{
		{"background", t.Colors.Background},
		{"title", t.Colors.Title},
		{"body", t.Colors.Body},
		{"accent", t.Colors.Accent},
	}
	for _, c := range colors {
		if !isHexColor(c.value) {
			errs = append(errs, fmt.Errorf("colors.%s: %q is not an RRGGBB value", c.name, c.value))
		}
	}
	if len(t.Layouts) == 0 {
		errs = append(errs, errors.New("no layouts"))
	}
	for i, l := range t.Layouts {
		for j, p := range l.Placeholders {
			switch p.Kind {
			case KindTitle, KindSubtitle, KindBody, KindPicture:
			default:
				errs = append(errs, fmt.Errorf("layouts[%d].placeholders[%d]: unknown kind %q", i, j, p.Kind))
			}
			if p.W <= 0 || p.H <= 0 || p.X < 0 || p.Y < 0 || p.X+p.W > 1.0001 || p.Y+p.H > 1.0001 {
				errs = append(errs, fmt.Errorf("layouts[%d].placeholders[%d]: geometry outside the slide", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEFabcdef", r) {
			return false
		}
	}
	return true
}
