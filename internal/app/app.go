// Package app builds the pipeline's collaborators from configuration. Both
// binaries share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/deckgen/internal/chunker"
	"github.com/dgallion1/deckgen/internal/config"
	"github.com/dgallion1/deckgen/internal/media"
	"github.com/dgallion1/deckgen/internal/pipeline"
	"github.com/dgallion1/deckgen/internal/render"
	"github.com/dgallion1/deckgen/internal/structure"
)

// Services are the long-lived collaborators of every run in a process.
type Services struct {
	Deps  pipeline.Deps
	Stats *structure.CallStats

	closers []func()
}

// Build creates the structuring client, media services and PDF converter
// selected by cfg. Optional services that are not configured are left nil
// and their features switch off.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*Services, error) {
	chunks := chunker.Config{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	if err := chunks.Validate(); err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}

	s := &Services{Stats: structure.NewCallStats(time.Hour)}

	var svc structure.Service
	switch cfg.Provider {
	case config.ProviderClaude:
		c := structure.NewClaudeService(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.StructuringTimeout)
		s.closers = append(s.closers, c.Close)
		svc = c
	case config.ProviderGemini:
		g, err := structure.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		svc = g
	default:
		return nil, fmt.Errorf("unknown structuring provider %q", cfg.Provider)
	}
	retry := structure.DefaultRetryConfig()
	retry.MaxAttempts = cfg.StructuringAttempts
	svc = structure.WithRetry(svc, retry, log)
	log.Info("structuring service ready", "provider", cfg.Provider, "model", svc.Model(), "max_attempts", retry.MaxAttempts)

	deps := pipeline.Deps{
		Structurer:   structure.NewClient(svc, s.Stats, log),
		Chunks:       chunks,
		Downloader:   media.NewHTTPDownloader(cfg.DownloadTimeout),
		TemplatesDir: cfg.TemplatesDir,
	}

	if cfg.ReplicateAPIToken != "" {
		deps.Images = media.NewReplicateClient(cfg.ReplicateAPIToken, cfg.ReplicateModel)
	} else {
		log.Info("REPLICATE_API_TOKEN not set, image generation disabled")
	}

	if dot := media.NewDotRenderer(cfg.DotBinary, 0); dot.Available() {
		deps.Diagrams = dot
	} else {
		log.Warn("graphviz not found, diagrams disabled", "binary", cfg.DotBinary)
	}

	switch cfg.ExportPDF {
	case config.ExportSoffice:
		deps.Converter = render.NewSofficeConverter(cfg.ConvertTimeout, log)
	case config.ExportNative:
		deps.Converter = render.NativeConverter{}
	}

	s.Deps = deps
	return s, nil
}

// Runner returns a runner writing into dirs.
func (s *Services) Runner(dirs pipeline.Dirs, log *slog.Logger) *pipeline.Runner {
	return pipeline.NewStandardRunner(s.Deps, dirs, log)
}

// JobRunners returns the factory the server's workers use: each job writes
// its deck, assets and snapshots inside its own work directory.
func (s *Services) JobRunners(log *slog.Logger) pipeline.RunnerFactory {
	return func(workDir string) *pipeline.Runner {
		return s.Runner(JobDirs(workDir), log)
	}
}

// JobDirs lays out a job's work directory.
func JobDirs(workDir string) pipeline.Dirs {
	return pipeline.Dirs{
		Output:    filepath.Join(workDir, "output"),
		Assets:    filepath.Join(workDir, "assets"),
		Snapshots: filepath.Join(workDir, "snapshots"),
	}
}

// Close releases clients that hold connections.
func (s *Services) Close() {
	for _, c := range s.closers {
		c()
	}
}
