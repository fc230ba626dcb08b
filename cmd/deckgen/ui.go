package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/dgallion1/deckgen/internal/pipeline"
	"github.com/dgallion1/deckgen/internal/state"
)

type ui struct {
	out io.Writer
}

func newUI(disableColor bool) *ui {
	if disableColor {
		color.NoColor = true
	}
	return &ui{out: os.Stdout}
}

type stageProgress struct {
	bar *progressbar.ProgressBar
}

func (u *ui) stageProgress(total int) *stageProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &stageProgress{bar: bar}
}

func (p *stageProgress) advance(stage string, out pipeline.Outcome) {
	p.bar.Describe(fmt.Sprintf("%-8s %s", stage, out.Status))
	_ = p.bar.Add(1)
}

func (p *stageProgress) finish() {
	_ = p.bar.Finish()
}

func statusColor(s pipeline.OutcomeStatus) *color.Color {
	switch s {
	case pipeline.OutcomeDone:
		return color.New(color.FgGreen)
	case pipeline.OutcomeSkipped:
		return color.New(color.FgYellow)
	case pipeline.OutcomeEmpty:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// summary prints one line per stage that ran and the produced files.
func (u *ui) summary(st *state.State, report pipeline.Report) {
	fmt.Fprintln(u.out)
	bold := color.New(color.Bold)
	bold.Fprintf(u.out, "Run %s (%s)\n", report.RunID, report.Duration.Round(time.Millisecond))

	for _, s := range report.Stages {
		c := statusColor(s.Outcome.Status)
		fmt.Fprintf(u.out, "  %-8s ", s.Stage)
		c.Fprintf(u.out, "%-8s", s.Outcome.Status)
		if s.Outcome.Reason != "" {
			fmt.Fprintf(u.out, " %s", s.Outcome.Reason)
		}
		fmt.Fprintln(u.out)
	}

	if report.Err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(u.out, "✗ %v\n", report.Err)
		return
	}
	if st.OutputPath == "" {
		color.New(color.FgRed).Fprintln(u.out, "✗ no deck was produced")
		return
	}
	color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", st.OutputPath)
	if st.PDFPath != "" {
		color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", st.PDFPath)
	}
}
