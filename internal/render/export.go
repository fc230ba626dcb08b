package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/theme"
)

// ExportRequest is what a converter may need to produce a PDF: the rendered
// deck file and the plan it was rendered from.
type ExportRequest struct {
	DeckPath string
	Slides   []deck.Slide
	Design   deck.Design
	Template *theme.Template
}

// Converter produces a PDF next to the deck and returns its path.
type Converter interface {
	Name() string
	Convert(ctx context.Context, req ExportRequest) (string, error)
}

// PDFPath is the PDF file name for a deck path.
func PDFPath(deckPath string) string {
	return strings.TrimSuffix(deckPath, filepath.Ext(deckPath)) + ".pdf"
}

// ErrNoConverter means no office suite binary could convert the deck.
var ErrNoConverter = errors.New("no office converter succeeded")

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SofficeConverter runs an office suite headless to convert the deck. Each
// binary is tried in order; a missing binary, a timeout or a failed run moves
// on to the next.
type SofficeConverter struct {
	Binaries []string
	Timeout  time.Duration
	log      *slog.Logger
	run      runFunc
}

func NewSofficeConverter(timeout time.Duration, log *slog.Logger) *SofficeConverter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SofficeConverter{
		Binaries: []string{"soffice", "libreoffice"},
		Timeout:  timeout,
		log:      log,
		run:      execRun,
	}
}

func (c *SofficeConverter) Name() string { return "soffice" }

func (c *SofficeConverter) Convert(ctx context.Context, req ExportRequest) (string, error) {
	outDir := filepath.Dir(req.DeckPath)
	want := PDFPath(req.DeckPath)

	for _, bin := range c.Binaries {
		runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		out, err := c.run(runCtx, bin, "--headless", "--convert-to", "pdf", req.DeckPath, "--outdir", outDir)
		timedOut := runCtx.Err() == context.DeadlineExceeded
		cancel()

		switch {
		case errors.Is(err, exec.ErrNotFound):
			c.log.Debug("converter not installed", "binary", bin)
			continue
		case timedOut:
			c.log.Warn("conversion timed out", "binary", bin, "timeout", c.Timeout)
			continue
		case err != nil:
			c.log.Warn("conversion failed", "binary", bin, "error", err, "output", truncateOutput(out))
			continue
		}
		if _, err := os.Stat(want); err != nil {
			c.log.Warn("converter produced no pdf", "binary", bin, "expected", want)
			continue
		}
		return want, nil
	}
	return "", ErrNoConverter
}

func truncateOutput(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
