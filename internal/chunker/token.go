package chunker

import "strings"

// EstimateTokens gives a rough token count for a chunk, used for logging
// request sizes against the model's context window.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	// Roughly 1.33 tokens per English word.
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
