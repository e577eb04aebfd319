package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders a header and rows in the renderer's effective mode. In JSON
// mode each row becomes an object keyed by the header names.
func (r *Renderer) Table(headers []string, rows [][]string) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		out := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				}
			}
			out = append(out, obj)
		}
		return r.JSON(out)

	case ModeMarkdown:
		fmt.Fprintf(r.out, "| %s |\n", strings.Join(headers, " | "))
		seps := make([]string, len(headers))
		for i := range seps {
			seps[i] = "---"
		}
		fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))
		for _, row := range rows {
			fmt.Fprintf(r.out, "| %s |\n", strings.Join(row, " | "))
		}
		return nil

	default:
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)

		headerRow := make(table.Row, len(headers))
		for i, h := range headers {
			headerRow[i] = h
		}
		t.AppendHeader(headerRow)

		for _, row := range rows {
			tr := make(table.Row, len(row))
			for i, cell := range row {
				tr[i] = cell
			}
			t.AppendRow(tr)
		}

		t.Render()
		fmt.Fprintf(r.out, "(%d rows)\n", len(rows))
		return nil
	}
}
