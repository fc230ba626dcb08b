package structure

import (
	"strings"

	"github.com/dgallion1/deckgen/internal/deck"
)

// ValidateChapters drops chapters with neither a title nor topics and topics
// without a title, and trims the text fields of what remains.
func ValidateChapters(in []deck.Chapter) []deck.Chapter {
	out := make([]deck.Chapter, 0, len(in))
	for _, ch := range in {
		ch.Title = strings.TrimSpace(ch.Title)
		ch.Description = strings.TrimSpace(ch.Description)

		topics := make([]deck.Topic, 0, len(ch.Topics))
		for _, t := range ch.Topics {
			if t, ok := validateTopic(t); ok {
				topics = append(topics, t)
			}
		}
		ch.Topics = topics

		if ch.Title == "" && len(ch.Topics) == 0 {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func validateTopic(t deck.Topic) (deck.Topic, bool) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, false
	}
	t.Summary = strings.TrimSpace(t.Summary)
	t.ImageHint = strings.TrimSpace(t.ImageHint)
	t.DiagramSpec = strings.TrimSpace(t.DiagramSpec)
	t.KeyPoints = trimAll(t.KeyPoints)
	t.QuizQuestions = trimAll(t.QuizQuestions)
	return t, true
}

func trimAll(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
