package pipeline

import (
	"log/slog"

	"github.com/dgallion1/deckgen/internal/chunker"
	"github.com/dgallion1/deckgen/internal/media"
	"github.com/dgallion1/deckgen/internal/render"
	"github.com/dgallion1/deckgen/internal/structure"
)

// Deps are the collaborators of the standard stages. Nil Images, Diagrams or
// Converter turn that feature off.
type Deps struct {
	Structurer   *structure.Client
	Chunks       chunker.Config
	Images       media.ImageGenerator
	Downloader   media.Downloader
	Diagrams     media.DiagramRenderer
	Converter    render.Converter
	TemplatesDir string
}

// Dirs are where a run writes its files. An empty Snapshots disables
// snapshots.
type Dirs struct {
	Output    string
	Assets    string
	Snapshots string
}

// NewStandardRunner returns a runner over content, format, design, media,
// render and export.
func NewStandardRunner(d Deps, dirs Dirs, log *slog.Logger) *Runner {
	renderer := render.NewRenderer(log)
	stages := []Stage{
		NewContentStage(d.Structurer, d.Chunks, log),
		NewFormatStage(log),
		NewDesignStage(d.TemplatesDir, log),
		NewMediaStage(d.Images, d.Downloader, d.Diagrams, dirs.Assets, log),
		NewRenderStage(renderer, dirs.Output, log),
		NewExportStage(d.Converter, renderer, log),
	}
	return NewRunner(stages, dirs.Snapshots, log)
}
