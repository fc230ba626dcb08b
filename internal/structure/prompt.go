package structure

import (
	"fmt"
	"strings"

	"github.com/dgallion1/deckgen/internal/deck"
)

const structuringPrompt = `You are an instructional designer. Convert the document excerpt below into a course outline for a slide presentation.

Return ONLY a JSON object of this shape:

{
  "chapters": [
    {
      "id": "1",
      "title": "Chapter title",
      "description": "One sentence describing the chapter",
      "topics": [
        {
          "id": "1.1",
          "title": "Topic title",
          "summary": "Two or three sentences",
          "key_points": ["short bullet", "short bullet"],
          "quiz_questions": ["A question that checks understanding"],
          "image_hint": "A short description of a helpful illustration",
          "diagram_dot_code": "digraph { A -> B }"
        }
      ]
    }
  ]
}

Rules:
- Use only information present in the excerpt
- Key points are short phrases of at most 15 words, 3 to 5 per topic
- quiz_questions and image_hint are optional; omit them when they do not help
- diagram_dot_code is optional Graphviz DOT; include it only for processes, flows or hierarchies
- If the excerpt starts or ends mid-sentence, ignore the incomplete sentence
- Return {"chapters": []} if the excerpt has no teachable content

Respond with ONLY the JSON object, no other text.`

// Params are the generation parameters sent with every chunk.
type Params struct {
	Tone       deck.Tone
	SlideCount int
}

// BuildChunkPrompt creates the full prompt for one chunk, including the
// audience, the slide count hint and the chunk's position in the document.
func BuildChunkPrompt(chunkText string, p Params, index, total int) string {
	tone := p.Tone
	if tone == "" {
		tone = deck.DefaultTone
	}
	var sb strings.Builder
	sb.WriteString(structuringPrompt)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "Audience level: %s\n", tone)
	if p.SlideCount > 0 {
		fmt.Fprintf(&sb, "The whole presentation should have roughly %d slides.\n", p.SlideCount)
	}
	if total > 1 {
		fmt.Fprintf(&sb, "This is part %d of %d of the document.\n", index+1, total)
	}
	sb.WriteString("---\n")
	sb.WriteString(chunkText)
	return sb.String()
}
