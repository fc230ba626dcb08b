// Package deck holds the domain model shared by every stage: the structured
// chapter outline produced from a document, the slide plan derived from it,
// and the visual design the deck is rendered with.
package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tone is the target audience level of a deck.
type Tone string

const (
	ToneBeginner     Tone = "Beginner"
	ToneIntermediate Tone = "Intermediate"
	ToneExpert       Tone = "Expert"
)

// DefaultTone is used when a run does not name one.
const DefaultTone = ToneBeginner

// DefaultSlideCount is the slide count hint used when a run does not give one.
const DefaultSlideCount = 10

// ParseTone matches s case-insensitively against the known tones.
func ParseTone(s string) (Tone, bool) {
	for _, t := range []Tone{ToneBeginner, ToneIntermediate, ToneExpert} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

// ID is an opaque identifier. Language models sometimes emit ids as bare
// numbers, so both JSON strings and numbers decode into it.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Questions decodes either a list of strings or a list of objects carrying a
// "question" field.
type Questions []string

func (q *Questions) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Question string `json:"question"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("quiz question: %w", err)
		}
		out = append(out, obj.Question)
	}
	*q = out
	return nil
}

// Topic is one teachable unit inside a chapter.
type Topic struct {
	ID            ID        `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary,omitempty"`
	KeyPoints     []string  `json:"key_points,omitempty"`
	QuizQuestions Questions `json:"quiz_questions,omitempty"`
	ImageHint     string    `json:"image_hint,omitempty"`
	DiagramSpec   string    `json:"diagram_dot_code,omitempty"`
}

// Chapter groups topics under a title.
type Chapter struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Topics      []Topic `json:"topics"`
}

// SlideType names the kind of a planned slide.
type SlideType string

const (
	SlideMainTitle    SlideType = "main_title"
	SlideChapterTitle SlideType = "chapter_title"
	SlideContent      SlideType = "content"
	SlideQuiz         SlideType = "quiz"
	SlideThankYou     SlideType = "thank_you"
)

// Slide is one entry of the slide plan. ImagePath is set by the media stage
// once an asset exists on disk for the slide.
type Slide struct {
	ID          string    `json:"id"`
	Type        SlideType `json:"type"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Bullets     []string  `json:"bullets,omitempty"`
	ImageHint   string    `json:"image_hint,omitempty"`
	DiagramSpec string    `json:"diagram_spec,omitempty"`
	ImagePath   string    `json:"image_path,omitempty"`
}

// Fonts names the typefaces used for titles and body text.
type Fonts struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Design is the visual configuration chosen by the design stage.
// TemplatePath is empty when no template file was found; renderers then use
// their built-in default layouts.
type Design struct {
	ThemeName    string `json:"theme_name"`
	TemplatePath string `json:"template_path,omitempty"`
	Fonts        Fonts  `json:"fonts"`
}
