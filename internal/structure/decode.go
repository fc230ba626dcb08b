package structure

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/deckgen/internal/deck"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// findFirstJSON returns the first balanced {...} object in s, skipping braces
// inside string literals, or "".
func findFirstJSON(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

type chaptersResponse struct {
	Chapters *[]deck.Chapter `json:"chapters"`
}

var errNoChapters = errors.New(`response has no "chapters" array`)

// decodeChapters parses a model response into chapters. Code fences are
// stripped first; when the text is not a JSON object on its own, the first
// balanced object inside it is tried.
func decodeChapters(raw string) ([]deck.Chapter, error) {
	text := stripCodeBlock(raw)
	chapters, err := decodeObject(text)
	if err == nil {
		return chapters, nil
	}
	if obj := findFirstJSON(text); obj != "" && obj != text {
		if chapters, err2 := decodeObject(obj); err2 == nil {
			return chapters, nil
		}
	}
	return nil, err
}

func decodeObject(text string) ([]deck.Chapter, error) {
	var resp chaptersResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("parse chapters json: %w", err)
	}
	if resp.Chapters == nil {
		return nil, errNoChapters
	}
	return *resp.Chapters, nil
}
