package structure

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/deckgen/internal/chunker"
	"github.com/dgallion1/deckgen/internal/deck"
)

// Status tags a per-chunk result.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Failure says why a chunk produced no chapters.
type Failure string

const (
	FailureNone      Failure = ""
	FailureTransport Failure = "transport"
	FailureEmpty     Failure = "empty"
	FailureParse     Failure = "parse"
)

// snippetLen bounds the raw response text kept for diagnosis.
const snippetLen = 500

// Result is the outcome of structuring one chunk. Chapters is non-empty
// exactly when Status is StatusOK.
type Result struct {
	Index    int
	Status   Status
	Failure  Failure
	Reason   string
	Snippet  string
	Chapters []deck.Chapter
	Duration time.Duration
}

// Client structures chunks one service call at a time. Every failure is
// folded into the returned Result; Structure never returns an error.
type Client struct {
	svc   Service
	log   *slog.Logger
	stats *CallStats
}

func NewClient(svc Service, stats *CallStats, log *slog.Logger) *Client {
	if stats == nil {
		stats = NewCallStats(time.Hour)
	}
	return &Client{svc: svc, log: log, stats: stats}
}

// Stats returns the client's call statistics.
func (c *Client) Stats() *CallStats { return c.stats }

// Model names the backend model.
func (c *Client) Model() string { return c.svc.Model() }

// Structure sends one chunk to the service and parses the reply.
func (c *Client) Structure(ctx context.Context, chunk chunker.Chunk, total int, p Params) Result {
	log := c.log.With("chunk", chunk.Index, "chunks", total)
	res := Result{Index: chunk.Index}

	if strings.TrimSpace(chunk.Text) == "" {
		res.Status, res.Failure, res.Reason = StatusEmpty, FailureEmpty, "chunk has no text"
		c.stats.Record(0, res.Status)
		log.Warn("chunk has no text, service not called")
		return res
	}

	log.Info("structuring chunk", "start", chunk.Start, "length", chunk.Length,
		"approx_tokens", chunker.EstimateTokens(chunk.Text), "model", c.svc.Model())

	start := time.Now()
	raw, err := c.svc.Complete(ctx, BuildChunkPrompt(chunk.Text, p, chunk.Index, total))
	res.Duration = time.Since(start)
	defer func() { c.stats.Record(res.Duration, res.Status) }()

	if err != nil {
		res.Status, res.Failure, res.Reason = StatusFailed, FailureTransport, err.Error()
		log.Error("structuring call failed", "error", err, "retryable", IsRetryable(err))
		return res
	}
	if strings.TrimSpace(raw) == "" {
		res.Status, res.Failure, res.Reason = StatusEmpty, FailureEmpty, "service returned no content"
		log.Warn("structuring service returned no content")
		return res
	}

	chapters, err := decodeChapters(raw)
	if err != nil {
		res.Status, res.Failure, res.Reason = StatusFailed, FailureParse, err.Error()
		res.Snippet = truncate(raw, snippetLen)
		log.Error("could not parse structuring response", "error", err, "raw_response", res.Snippet)
		return res
	}

	chapters = ValidateChapters(chapters)
	if len(chapters) == 0 {
		res.Status, res.Failure, res.Reason = StatusEmpty, FailureEmpty, "response contained no usable chapters"
		res.Snippet = truncate(raw, snippetLen)
		log.Warn("structuring response had no usable chapters", "raw_response", res.Snippet)
		return res
	}

	res.Status = StatusOK
	res.Chapters = chapters
	log.Info("chunk structured", "chapters", len(chapters), "duration_ms", res.Duration.Milliseconds())
	return res
}
