package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dgallion1/deckgen/internal/app"
	"github.com/dgallion1/deckgen/internal/config"
	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/pipeline"
	"github.com/dgallion1/deckgen/internal/state"
)

type buildOptions struct {
	tone      string
	slides    int
	theme     string
	out       string
	assets    string
	snapshots string
	export    string
	from      string
	statePath string
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Build a deck from a document",
		Long: `Runs the content, format, design, media, render and export stages in order.

With --from and --state the run resumes from a saved snapshot instead of
starting over; the document argument may then be omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.tone, "tone", string(deck.DefaultTone), "audience tone: Beginner, Intermediate or Expert")
	cmd.Flags().IntVar(&opts.slides, "slides", deck.DefaultSlideCount, "desired slide count (a hint)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "template name or file, e.g. midnight")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default $OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset directory (default $ASSETS_DIR)")
	cmd.Flags().StringVar(&opts.snapshots, "snapshots", "", "write a state snapshot after each stage into this directory")
	cmd.Flags().StringVar(&opts.export, "export", "", "pdf export: soffice, native or off (default $EXPORT_PDF)")
	cmd.Flags().StringVar(&opts.from, "from", "", "resume from this stage (requires --state)")
	cmd.Flags().StringVar(&opts.statePath, "state", "", "snapshot file to resume from")

	return cmd
}

func runBuild(ctx context.Context, args []string, opts buildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyBuildFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := initialState(args, opts)
	if err != nil {
		return err
	}

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	runner := services.Runner(pipeline.Dirs{
		Output:    cfg.OutputDir,
		Assets:    cfg.AssetsDir,
		Snapshots: cfg.SnapshotDir,
	}, logger)

	term := newUI(noColor)
	progress := term.stageProgress(len(runner.Stages()))
	runner.OnStage(func(index, total int, stage string, out pipeline.Outcome) {
		progress.advance(stage, out)
	})

	var report pipeline.Report
	if opts.from != "" {
		report, err = runner.RunFrom(ctx, st, opts.from)
	} else {
		report, err = runner.Run(ctx, st)
	}
	progress.finish()

	term.summary(st, report)
	if err != nil {
		return fmt.Errorf("build stopped: %w", err)
	}
	return nil
}

// applyBuildFlags lets command-line flags override the environment.
func applyBuildFlags(c *config.Config, opts buildOptions) {
	if opts.out != "" {
		c.OutputDir = opts.out
	}
	if opts.assets != "" {
		c.AssetsDir = opts.assets
	}
	if opts.snapshots != "" {
		c.SnapshotDir = opts.snapshots
	}
	if opts.export != "" {
		c.ExportPDF = opts.export
	}
}

// initialState builds a fresh state from the arguments, or loads a snapshot
// when resuming.
func initialState(args []string, opts buildOptions) (*state.State, error) {
	if opts.from != "" {
		if opts.statePath == "" {
			return nil, fmt.Errorf("--from requires --state")
		}
		st, err := state.Load(opts.statePath)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			st.InputPath = args[0]
		}
		return st, nil
	}
	if opts.statePath != "" {
		return nil, fmt.Errorf("--state requires --from")
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("a document path is required")
	}

	tone, ok := deck.ParseTone(opts.tone)
	if !ok {
		return nil, fmt.Errorf("unknown tone %q", opts.tone)
	}
	if opts.slides <= 0 {
		return nil, fmt.Errorf("--slides must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	st := state.New(id.String())
	st.InputPath = filepath.Clean(args[0])
	st.Tone = tone
	st.SlideCount = opts.slides
	st.ThemeFile = opts.theme
	return st, nil
}
