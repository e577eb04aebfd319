package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/render"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [column]",
		Short: "Show catalogue statistics",
		Long: `Show a histogram of a catalogue column as a terminal bar chart.

Numeric columns are bucketed into equal-width bins; discovery dates are
bucketed by year. Without an argument the supported columns are listed.`,
		Example: `  # Redshift distribution
  tdecat stats redshift

  # Discoveries per year
  tdecat stats "Discovery date (UT)"

  # Histogram data as JSON
  tdecat stats redshift --output json`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return catalogue.HistogramColumns(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			bins, _ := cmd.Flags().GetInt("bins")
			column := ""
			if len(args) == 1 {
				column = args[0]
			}
			return runStats(cmd, column, bins)
		},
	}

	cmd.Flags().Int("bins", catalogue.DefaultHistogramBins, "Number of bins for numeric columns")

	return cmd
}

func runStats(cmd *cobra.Command, column string, bins int) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	if column == "" {
		cols := catalogue.HistogramColumns()
		if r.EffectiveMode() == render.ModeJSON {
			return r.JSON(map[string]any{"columns": cols, "sources": len(cmdCtx.Catalogue.Sources)})
		}
		r.Header(1, "Catalogue statistics")
		r.KeyValue("Sources", fmt.Sprintf("%d", len(cmdCtx.Catalogue.Sources)))
		r.KeyValue("Columns", strings.Join(cols, ", "))
		r.Println()
		r.Println("Pick a column: tdecat stats <column>")
		return nil
	}

	hist, err := cmdCtx.Catalogue.Histogram(column, bins)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(hist)
	}

	r.Header(1, fmt.Sprintf("%s (%d values)", hist.Column, hist.Total))
	labels := make([]string, 0, len(hist.Bins))
	counts := make([]int, 0, len(hist.Bins))
	for _, b := range hist.Bins {
		labels = append(labels, b.Label)
		counts = append(counts, b.Count)
	}
	r.Printf("%s", render.BarChart(labels, counts, 40))
	return nil
}
