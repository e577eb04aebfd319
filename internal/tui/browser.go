// Package tui implements the interactive catalogue browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/photometry"
	"github.com/tdecat/tdecat/internal/render"
)

// view identifies which screen the browser shows.
type view int

const (
	viewList view = iota
	viewDetail
)

// entry is one browsable catalogue row.
type entry struct {
	source *catalogue.Source
	name   string
	avail  dataset.Availability
}

// Model is the browser state.
type Model struct {
	width  int
	height int
	view   view

	entries  []entry
	filtered []entry
	table    table.Model

	filterInput   textinput.Model
	filterFocused bool

	resolver dataset.Resolver
	selected *entry
	preview  string
	err      error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(20)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// New creates a browser over the given catalogue.
func New(cat *catalogue.Catalogue, resolver dataset.Resolver) Model {
	entries := make([]entry, 0, len(cat.Sources))
	for i := range cat.Sources {
		src := &cat.Sources[i]
		name := src.PlainName()
		if name == "" {
			continue
		}
		entries = append(entries, entry{
			source: src,
			name:   name,
			avail:  resolver.Availability(name),
		})
	}

	t := table.New(
		table.WithColumns(listColumns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	fi := textinput.New()
	fi.Placeholder = "Filter by name..."
	fi.CharLimit = 40
	fi.Width = 30

	m := Model{
		entries:     entries,
		filtered:    entries,
		table:       t,
		filterInput: fi,
		resolver:    resolver,
	}
	m.refreshRows()
	return m
}

func listColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 16},
		{Title: "ZTF", Width: 14},
		{Title: "z", Width: 8},
		{Title: "Discovery", Width: 20},
		{Title: "Data", Width: 6},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 6; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewDetail:
			switch msg.String() {
			case "esc", "q", "backspace":
				m.view = viewList
				m.selected = nil
				m.preview = ""
				m.err = nil
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil

		case viewList:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "q":
				if !m.filterFocused {
					return m, tea.Quit
				}
			case "/":
				if !m.filterFocused {
					m.filterFocused = true
					m.filterInput.Focus()
					return m, nil
				}
			case "esc":
				if m.filterFocused {
					m.filterFocused = false
					m.filterInput.Blur()
					m.filterInput.SetValue("")
					m.applyFilter()
					return m, nil
				}
			case "enter":
				if m.filterFocused {
					m.filterFocused = false
					m.filterInput.Blur()
					return m, nil
				}
				if idx := m.table.Cursor(); idx >= 0 && idx < len(m.filtered) {
					m.openDetail(&m.filtered[idx])
				}
				return m, nil
			}
		}
	}

	if m.filterFocused {
		m.filterInput, cmd = m.filterInput.Update(msg)
		cmds = append(cmds, cmd)
		m.applyFilter()
	} else {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyFilter narrows the listing to rows matching the filter text.
func (m *Model) applyFilter() {
	needle := strings.ToLower(m.filterInput.Value())
	if needle == "" {
		m.filtered = m.entries
	} else {
		m.filtered = make([]entry, 0, len(m.entries))
		for _, e := range m.entries {
			if strings.Contains(strings.ToLower(e.name), needle) ||
				strings.Contains(strings.ToLower(e.source.ZTFName), needle) {
				m.filtered = append(m.filtered, e)
			}
		}
	}
	m.refreshRows()
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.filtered))
	for _, e := range m.filtered {
		z := ""
		if v, ok := e.source.Redshift(); ok {
			z = fmt.Sprintf("%g", v)
		}
		rows = append(rows, table.Row{
			e.name,
			e.source.PlainZTFName(),
			z,
			e.source.Fields[catalogue.ColDiscoveryUT],
			flags(e.avail),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func flags(a dataset.Availability) string {
	var b strings.Builder
	f := func(p bool, c byte) {
		if p {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	f(a.Optical, 'O')
	f(a.UVOT, 'U')
	f(a.XRay, 'X')
	f(a.Spectra, 'S')
	return b.String()
}

// openDetail switches to the detail view, loading a light-curve preview.
func (m *Model) openDetail(e *entry) {
	m.view = viewDetail
	m.selected = e
	m.preview = ""
	m.err = nil

	if !e.avail.Optical {
		return
	}
	series, err := photometry.LoadOptical(m.resolver.OpticalPath(e.name))
	if err != nil {
		m.err = err
		return
	}

	plot := make([]render.PlotSeries, 0, len(series))
	for _, s := range series {
		ps := render.PlotSeries{Name: s.Band}
		for _, p := range s.Points {
			ps.X = append(ps.X, p.MJD)
			ps.Y = append(ps.Y, p.Value)
		}
		plot = append(plot, ps)
	}

	width := m.width - 8
	if width < 40 {
		width = 60
	}
	m.preview = render.ScatterPlot(plot, render.PlotOptions{
		Width:   width,
		Height:  14,
		InvertY: true,
		XLabel:  "MJD",
		YLabel:  "mag",
	})
}

// View renders the browser.
func (m Model) View() string {
	switch m.view {
	case viewDetail:
		return m.detailView()
	default:
		return m.listView()
	}
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("TDE catalogue (%d sources)", len(m.filtered))))
	b.WriteString("\n")
	if m.filterFocused || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}
	b.WriteString(borderStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: detail  /: filter  q: quit"))
	return b.String()
}

func (m Model) detailView() string {
	e := m.selected
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(e.name))
	b.WriteString("\n\n")

	kv := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	kv("AT name", e.source.ATName)
	kv("ZTF name", e.source.ZTFName)
	kv("Gaia name", e.source.GaiaName)
	kv("Alternative name", e.source.AltName)
	if z, ok := e.source.Redshift(); ok {
		kv("Redshift", fmt.Sprintf("%g", z))
	}
	kv("Discovery (UT)", e.source.Fields[catalogue.ColDiscoveryUT])
	kv("Data", flags(e.avail))

	links := e.source.Links()
	kv("TNS", links.TNS)
	kv("ALeRCE", links.ZTF)
	kv("Gaia Alerts", links.Gaia)

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("light curve unavailable: %v", m.err)))
		b.WriteString("\n")
	} else if m.preview != "" {
		b.WriteString("\n")
		b.WriteString(m.preview)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc: back  ctrl+c: quit"))
	return b.String()
}

// Run starts the browser in the alternate screen.
func Run(cat *catalogue.Catalogue, resolver dataset.Resolver) error {
	p := tea.NewProgram(New(cat, resolver), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
