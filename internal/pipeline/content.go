package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/deckgen/internal/chunker"
	"github.com/dgallion1/deckgen/internal/document"
	"github.com/dgallion1/deckgen/internal/parser"
	"github.com/dgallion1/deckgen/internal/state"
	"github.com/dgallion1/deckgen/internal/structure"
)

// ContentStage extracts the input document's text, structures it chunk by
// chunk and merges the chunk results into one chapter list.
type ContentStage struct {
	client *structure.Client
	chunks chunker.Config
	log    *slog.Logger
}

func NewContentStage(client *structure.Client, chunks chunker.Config, log *slog.Logger) *ContentStage {
	return &ContentStage{client: client, chunks: chunks, log: log.With("stage", StageContent)}
}

func (s *ContentStage) Name() string { return StageContent }

func (s *ContentStage) Reads() []state.Key {
	return []state.Key{state.KeyInputPath, state.KeyTone, state.KeySlideCount}
}

func (s *ContentStage) Writes() []state.Key {
	return []state.Key{state.KeyDocumentTitle, state.KeyChapters}
}

func (s *ContentStage) Run(ctx context.Context, st *state.State) (Outcome, error) {
	if !st.Has(state.KeyInputPath) {
		st.AppendLog("Content", "No input document provided")
		return skipped("no input document"), nil
	}
	path := st.InputPath
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		st.Logf("Content", "Input document not found: %s", path)
		s.log.Error("input document not found", "path", path)
		return skipped("input document not found: %s", filepath.Base(path)), nil
	}
	if !parser.IsSupportedExtension(path) {
		st.Logf("Content", "Unsupported document type: %s", filepath.Ext(path))
		return skipped("unsupported document type %q", filepath.Ext(path)), nil
	}

	doc, err := parser.ParseFile(path)
	if err != nil {
		st.Logf("Content", "Text extraction failed: %v", err)
		s.log.Error("text extraction failed", "path", path, "error", err)
		return empty("text extraction failed: %v", err), nil
	}
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		st.AppendLog("Content", "Document contains no extractable text")
		return empty("document has no text"), nil
	}

	st.DocumentTitle = doc.Title
	if st.DocumentTitle == "" {
		st.DocumentTitle = document.Stem(path)
	}

	seq, err := chunker.Windows(text, s.chunks)
	if err != nil {
		return Outcome{}, fmt.Errorf("chunk document: %w", err)
	}
	total := chunker.Count(utf8.RuneCountInString(text), s.chunks)
	params := structure.Params{Tone: st.ToneOrDefault(), SlideCount: st.SlideCountOrDefault()}
	st.Logf("Content", "Extracted %d characters from %s, %d chunk(s)", utf8.RuneCountInString(text), filepath.Base(path), total)

	results := make([]structure.Result, 0, total)
	for chunk := range seq {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		res := s.client.Structure(ctx, chunk, total, params)
		if res.Status == structure.StatusOK {
			st.Logf("Content", "Chunk %d/%d: %d chapter(s)", chunk.Index+1, total, len(res.Chapters))
		} else {
			st.Logf("Content", "Chunk %d/%d: %s (%s)", chunk.Index+1, total, res.Status, res.Reason)
		}
		results = append(results, res)
	}

	chapters := structure.Merge(results)
	ok, emptyCount, failedCount := structure.Tally(results)
	if len(chapters) == 0 {
		st.Chapters = nil
		st.AppendLog("Content", "No chapters were extracted from any chunk")
		s.log.Error("no chapters extracted", "chunks", total, "empty", emptyCount, "failed", failedCount)
		return empty("no chapters from %d chunk(s): %d empty, %d failed", total, emptyCount, failedCount), nil
	}

	st.Chapters = chapters
	st.Logf("Content", "Merged %d chapter(s) from %d of %d chunk(s)", len(chapters), ok, total)
	return done("%d chapters from %d/%d chunks", len(chapters), ok, total), nil
}
