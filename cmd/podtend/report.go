package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/podtend/podtend/internal/reconcile"
)

var (
	okMark      = color.New(color.FgGreen).SprintFunc()
	changedMark = color.New(color.FgYellow).SprintFunc()
	failedMark  = color.New(color.FgRed, color.Bold).SprintFunc()

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

type runSummary struct {
	unchanged int
	changed   int
	failed    int
}

func (s *runSummary) count(res *reconcile.Result) {
	switch {
	case res.Failed:
		s.failed++
	case res.Changed:
		s.changed++
	default:
		s.unchanged++
	}
}

func renderResult(out io.Writer, res *reconcile.Result, verbose bool) {
	name := fmt.Sprintf("%s/%s", res.Kind, res.Name)
	switch {
	case res.Failed:
		fmt.Fprintf(out, "%s %s: %s\n", failedMark("✗"), name, res.Message)
	case res.Changed:
		fmt.Fprintf(out, "%s %s: %s\n", changedMark("~"), name, res.Message)
	default:
		fmt.Fprintf(out, "%s %s: %s\n", okMark("✓"), name, res.Message)
	}

	if res.Diff != nil && res.Diff.Changed {
		if text := res.Diff.Render(); text != "" {
			fmt.Fprintln(out, text)
		}
	}
	if verbose {
		for _, action := range res.Actions {
			fmt.Fprintf(out, "    $ %s\n", action)
		}
	}
}

func renderSummary(out io.Writer, s runSummary, dryRun bool) {
	line := fmt.Sprintf("%d changed, %d unchanged, %d failed", s.changed, s.unchanged, s.failed)
	if dryRun {
		line = "dry run: " + line
	}
	fmt.Fprintln(out, summaryStyle.Render(line))
}
