package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PlotSeries is one named group of points to plot.
type PlotSeries struct {
	Name   string
	X      []float64
	Y      []float64
	Marker rune
}

// PlotOptions controls the ASCII plot layout.
type PlotOptions struct {
	Width   int
	Height  int
	InvertY bool // magnitude axes grow downward
	XLabel  string
	YLabel  string
	Styled  bool // colour markers with lipgloss
}

const (
	defaultPlotWidth  = 72
	defaultPlotHeight = 20
)

// seriesMarkers are cycled through when a series has no explicit marker.
var seriesMarkers = []rune{'o', 'x', '+', '*', 's', 'd', 'v', '^'}

// seriesColors are the lipgloss colours cycled per series, starting with the
// UVOT convention (violet, purple, blue, green, orange, red).
var seriesColors = []lipgloss.Color{"13", "5", "4", "2", "3", "1", "6", "7"}

// ScatterPlot renders series as a fixed-grid ASCII scatter plot with axis
// bounds in the margins. The same input always produces the same output.
func ScatterPlot(series []PlotSeries, opts PlotOptions) string {
	if opts.Width <= 0 {
		opts.Width = defaultPlotWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultPlotHeight
	}

	xMin, xMax, yMin, yMax, n := bounds(series)
	if n == 0 {
		return "(no points)\n"
	}
	if xMin == xMax {
		xMin, xMax = xMin-0.5, xMax+0.5
	}
	if yMin == yMax {
		yMin, yMax = yMin-0.5, yMax+0.5
	}

	type cellMark struct {
		marker rune
		series int
	}
	grid := make([]*cellMark, opts.Width*opts.Height)

	for si, s := range series {
		marker := s.Marker
		if marker == 0 {
			marker = seriesMarkers[si%len(seriesMarkers)]
		}
		for i := range s.X {
			col := int(math.Round((s.X[i] - xMin) / (xMax - xMin) * float64(opts.Width-1)))
			frac := (s.Y[i] - yMin) / (yMax - yMin)
			if opts.InvertY {
				frac = 1 - frac
			}
			row := int(math.Round((1 - frac) * float64(opts.Height-1)))
			if col < 0 || col >= opts.Width || row < 0 || row >= opts.Height {
				continue
			}
			grid[row*opts.Width+col] = &cellMark{marker: marker, series: si}
		}
	}

	styleFor := func(si int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(seriesColors[si%len(seriesColors)])
	}

	var b strings.Builder
	yTop, yBottom := yMax, yMin
	if opts.InvertY {
		yTop, yBottom = yMin, yMax
	}

	for row := 0; row < opts.Height; row++ {
		label := "          "
		switch row {
		case 0:
			label = fmt.Sprintf("%9.3g ", yTop)
		case opts.Height - 1:
			label = fmt.Sprintf("%9.3g ", yBottom)
		}
		b.WriteString(label)
		b.WriteRune('|')
		for col := 0; col < opts.Width; col++ {
			cell := grid[row*opts.Width+col]
			if cell == nil {
				b.WriteRune(' ')
				continue
			}
			if opts.Styled {
				b.WriteString(styleFor(cell.series).Render(string(cell.marker)))
			} else {
				b.WriteRune(cell.marker)
			}
		}
		b.WriteRune('\n')
	}

	b.WriteString(strings.Repeat(" ", 10))
	b.WriteRune('+')
	b.WriteString(strings.Repeat("-", opts.Width))
	b.WriteRune('\n')
	b.WriteString(fmt.Sprintf("%10s%-.6g%*s%.6g\n", "", xMin, opts.Width-len(fmt.Sprintf("%.6g", xMin)), "", xMax))

	if opts.XLabel != "" || opts.YLabel != "" {
		b.WriteString(fmt.Sprintf("%10s%s", "", opts.XLabel))
		if opts.YLabel != "" {
			b.WriteString(fmt.Sprintf("  (y: %s)", opts.YLabel))
		}
		b.WriteRune('\n')
	}

	// Legend.
	var legend []string
	for si, s := range series {
		if len(s.X) == 0 {
			continue
		}
		marker := s.Marker
		if marker == 0 {
			marker = seriesMarkers[si%len(seriesMarkers)]
		}
		entry := fmt.Sprintf("%c %s", marker, s.Name)
		if opts.Styled {
			entry = styleFor(si).Render(entry)
		}
		legend = append(legend, entry)
	}
	if len(legend) > 0 {
		b.WriteString(strings.Repeat(" ", 10))
		b.WriteString(strings.Join(legend, "   "))
		b.WriteRune('\n')
	}

	return b.String()
}

// BarChart renders labelled counts as horizontal bars scaled to maxWidth.
func BarChart(labels []string, counts []int, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 50
	}

	maxCount := 0
	labelWidth := 0
	for i, l := range labels {
		if counts[i] > maxCount {
			maxCount = counts[i]
		}
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}
	if maxCount == 0 {
		return "(no values)\n"
	}

	var b strings.Builder
	for i, l := range labels {
		barLen := counts[i] * maxWidth / maxCount
		if counts[i] > 0 && barLen == 0 {
			barLen = 1
		}
		b.WriteString(fmt.Sprintf("%*s | %s %d\n", labelWidth, l, strings.Repeat("#", barLen), counts[i]))
	}
	return b.String()
}

func bounds(series []PlotSeries) (xMin, xMax, yMin, yMax float64, n int) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for i := range s.X {
			xMin = math.Min(xMin, s.X[i])
			xMax = math.Max(xMax, s.X[i])
			yMin = math.Min(yMin, s.Y[i])
			yMax = math.Max(yMax, s.Y[i])
			n++
		}
	}
	return xMin, xMax, yMin, yMax, n
}
