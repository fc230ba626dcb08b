package deck

import (
	"fmt"
	"strings"
)

// Plan turns a chapter outline into an ordered slide plan: a title slide,
// then per chapter a section slide followed by a content slide for each topic
// (and a quiz slide after any topic that has questions), and a closing slide.
// Slide ids are assigned in plan order as s001, s002, ...
func Plan(title string, tone Tone, chapters []Chapter) []Slide {
	if tone == "" {
		tone = DefaultTone
	}
	if strings.TrimSpace(title) == "" {
		title = firstChapterTitle(chapters)
	}

	p := &planner{}
	p.add(Slide{
		Type:     SlideMainTitle,
		Title:    title,
		Subtitle: fmt.Sprintf("%s level", tone),
	})
	for _, ch := range chapters {
		p.add(Slide{
			Type:     SlideChapterTitle,
			Title:    ch.Title,
			Subtitle: strings.TrimSpace(ch.Description),
		})
		for _, t := range ch.Topics {
			p.add(contentSlide(t))
			if qs := nonEmpty(t.QuizQuestions); len(qs) > 0 {
				p.add(Slide{
					Type:    SlideQuiz,
					Title:   fmt.Sprintf("Quiz: %s", t.Title),
					Bullets: qs,
				})
			}
		}
	}
	p.add(Slide{Type: SlideThankYou, Title: "Thank You"})
	return p.slides
}

type planner struct {
	slides []Slide
}

func (p *planner) add(s Slide) {
	s.ID = fmt.Sprintf("s%03d", len(p.slides)+1)
	p.slides = append(p.slides, s)
}

func contentSlide(t Topic) Slide {
	bullets := nonEmpty(t.KeyPoints)
	if len(bullets) == 0 && strings.TrimSpace(t.Summary) != "" {
		bullets = []string{strings.TrimSpace(t.Summary)}
	}
	return Slide{
		Type:        SlideContent,
		Title:       t.Title,
		Bullets:     bullets,
		ImageHint:   strings.TrimSpace(t.ImageHint),
		DiagramSpec: strings.TrimSpace(t.DiagramSpec),
	}
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstChapterTitle(chapters []Chapter) string {
	for _, ch := range chapters {
		if ch.Title != "" {
			return ch.Title
		}
	}
	return "Untitled Presentation"
}
