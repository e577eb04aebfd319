package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterPlot(t *testing.T) {
	series := []PlotSeries{
		{Name: "g", X: []float64{58750, 58760, 58770}, Y: []float64{17.0, 17.5, 18.0}},
		{Name: "r", X: []float64{58750, 58770}, Y: []float64{17.2, 17.9}},
	}

	out := ScatterPlot(series, PlotOptions{Width: 40, Height: 10, InvertY: true})

	assert.Contains(t, out, "o g")
	assert.Contains(t, out, "x r")
	assert.Contains(t, out, "58750")
	assert.Contains(t, out, "58770")

	// Deterministic: same input, same output.
	assert.Equal(t, out, ScatterPlot(series, PlotOptions{Width: 40, Height: 10, InvertY: true}))
}

func TestScatterPlotInvertY(t *testing.T) {
	series := []PlotSeries{{Name: "g", X: []float64{0, 1}, Y: []float64{10, 20}}}

	normal := ScatterPlot(series, PlotOptions{Width: 20, Height: 5})
	inverted := ScatterPlot(series, PlotOptions{Width: 20, Height: 5, InvertY: true})

	// On a magnitude axis the brightest (lowest) value sits on top.
	normalLines := strings.Split(normal, "\n")
	invertedLines := strings.Split(inverted, "\n")
	assert.Contains(t, normalLines[0], "20")
	assert.Contains(t, invertedLines[0], "10")
}

func TestScatterPlotEmpty(t *testing.T) {
	out := ScatterPlot(nil, PlotOptions{})
	assert.Equal(t, "(no points)\n", out)
}

func TestScatterPlotSinglePoint(t *testing.T) {
	// A single point must not divide by a zero-width range.
	series := []PlotSeries{{Name: "g", X: []float64{58750}, Y: []float64{17.0}}}
	out := ScatterPlot(series, PlotOptions{Width: 20, Height: 5})
	assert.Contains(t, out, "o")
}

func TestBarChart(t *testing.T) {
	out := BarChart([]string{"2018", "2019", "2020"}, []int{1, 4, 2}, 20)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], strings.Repeat("#", 20))
	assert.Contains(t, lines[0], "# 1")

	// A non-zero count always draws at least one mark.
	out = BarChart([]string{"a", "b"}, []int{1, 1000}, 20)
	assert.Contains(t, out, "a | # 1")
}

func TestRendererTableJSON(t *testing.T) {
	var buf strings.Builder
	r := NewRenderer(&buf, &buf, ModeJSON)

	require.NoError(t, r.Table([]string{"Name", "z"}, [][]string{{"AT2019qiz", "0.0151"}}))
	assert.Contains(t, buf.String(), `"Name": "AT2019qiz"`)
}

func TestRendererTableMarkdown(t *testing.T) {
	var buf strings.Builder
	r := NewRenderer(&buf, &buf, ModeMarkdown)

	require.NoError(t, r.Table([]string{"Name"}, [][]string{{"AT2019qiz"}}))
	assert.Contains(t, buf.String(), "| Name |")
	assert.Contains(t, buf.String(), "| --- |")
}

func TestEffectiveModeAutoFallsBackToMarkdown(t *testing.T) {
	var buf strings.Builder
	r := NewRenderer(&buf, &buf, ModeAuto)

	// A strings.Builder is not a terminal.
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}
