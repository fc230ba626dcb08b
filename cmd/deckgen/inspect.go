package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
)

func newInspectCmd() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Summarise a saved run snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := state.Load(args[0])
			if err != nil {
				return err
			}
			writeInspect(os.Stdout, st, tail)
			return nil
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 10, "number of log lines to show")
	return cmd
}

func writeInspect(w io.Writer, st *state.State, tail int) {
	fmt.Fprintf(w, "run:      %s\n", st.RunID)
	fmt.Fprintf(w, "phase:    %s\n", st.Phase)
	if st.InputPath != "" {
		fmt.Fprintf(w, "input:    %s\n", st.InputPath)
	}
	if st.DocumentTitle != "" {
		fmt.Fprintf(w, "title:    %s\n", st.DocumentTitle)
	}

	topics := 0
	for _, ch := range st.Chapters {
		topics += len(ch.Topics)
	}
	fmt.Fprintf(w, "chapters: %d (%d topics)\n", len(st.Chapters), topics)
	for i, ch := range st.Chapters {
		fmt.Fprintf(w, "  %d. %s\n", i+1, ch.Title)
	}

	fmt.Fprintf(w, "slides:   %d", len(st.Slides))
	if counts := slideCounts(st.Slides); counts != "" {
		fmt.Fprintf(w, " (%s)", counts)
	}
	fmt.Fprintln(w)

	if st.Design != nil {
		fmt.Fprintf(w, "design:   %s\n", st.Design.ThemeName)
	}
	if st.OutputPath != "" {
		fmt.Fprintf(w, "deck:     %s\n", st.OutputPath)
	}
	if st.PDFPath != "" {
		fmt.Fprintf(w, "pdf:      %s\n", st.PDFPath)
	}

	if len(st.Stages) > 0 {
		fmt.Fprintln(w, "stages:")
		for _, rec := range st.Stages {
			line := fmt.Sprintf("  %-8s %-8s %dms", rec.Stage, rec.Status, rec.DurationMs)
			if rec.Reason != "" {
				line += "  " + rec.Reason
			}
			fmt.Fprintln(w, line)
		}
	}

	logs := st.Log
	if tail >= 0 && len(logs) > tail {
		logs = logs[len(logs)-tail:]
	}
	if len(logs) > 0 {
		fmt.Fprintln(w, "log:")
		for _, l := range logs {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
}

// slideCounts renders counts per slide type in plan order of first appearance.
func slideCounts(slides []deck.Slide) string {
	counts := map[deck.SlideType]int{}
	var order []deck.SlideType
	for _, s := range slides {
		if counts[s.Type] == 0 {
			order = append(order, s.Type)
		}
		counts[s.Type]++
	}
	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	return strings.Join(parts, ", ")
}
