// Package chunker splits extracted document text into overlapping windows
// small enough for a bounded-context structuring service.
package chunker

import (
	"errors"
	"fmt"
	"iter"
)

// Config controls chunking. Sizes are measured in characters (Unicode code
// points), not bytes.
type Config struct {
	ChunkSize int // Maximum characters per chunk.
	Overlap   int // Characters shared by consecutive chunks.
}

// DefaultConfig returns the sizes used for the default structuring model.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 12000,
		Overlap:   500,
	}
}

// Validate checks 0 <= Overlap < ChunkSize.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return errors.New("chunk overlap must be smaller than chunk size")
	}
	return nil
}

// Stride is the distance between the starts of consecutive chunks.
func (c Config) Stride() int { return c.ChunkSize - c.Overlap }

// Chunk is one window over the source text.
type Chunk struct {
	Index  int    // Position in the chunk sequence.
	Start  int    // Offset of the first character in the source text.
	Length int    // Characters in Text.
	Text   string // The window contents.
}

// End is the offset one past the last character of the chunk.
func (c Chunk) End() int { return c.Start + c.Length }

// Windows returns a single-pass sequence of chunks over text. Chunk i starts
// at i*(ChunkSize-Overlap) and holds up to ChunkSize characters; the sequence
// ends with the first chunk that reaches the end of the text. Empty text
// yields nothing.
func Windows(text string, cfg Config) (iter.Seq[Chunk], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runes := []rune(text)
	stride := cfg.Stride()
	return func(yield func(Chunk) bool) {
		for i, start := 0, 0; start < len(runes); i, start = i+1, start+stride {
			end := min(start+cfg.ChunkSize, len(runes))
			c := Chunk{
				Index:  i,
				Start:  start,
				Length: end - start,
				Text:   string(runes[start:end]),
			}
			if !yield(c) || end == len(runes) {
				return
			}
		}
	}, nil
}

// Split collects Windows into a slice.
func Split(text string, cfg Config) ([]Chunk, error) {
	seq, err := Windows(text, cfg)
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for c := range seq {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Count is the number of chunks Windows yields for a text of n characters.
func Count(n int, cfg Config) int {
	switch {
	case n <= 0:
		return 0
	case n <= cfg.ChunkSize:
		return 1
	}
	stride := cfg.Stride()
	return 1 + (n-cfg.ChunkSize+stride-1)/stride
}
