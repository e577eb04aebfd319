package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
)

const testCatalogue = `AT name,ZTF name,Gaia alert name,Alternative name,Redshift,Discovery date (UT),Discovery mag/flux
AT 2019qiz,ZTF19abzrhgq,Gaia19eks,,0.0151,2019-09-19 13:15:00,17.5 (vega)
AT 2018hyz,ZTF18acpdvos,,,0.0457,2018-11-06 00:00:00,17.2
,,,iPTF16fnl,0.0163,2016-08-26 00:00:00,17.0
`

func newTestModel(t *testing.T) Model {
	t.Helper()
	cat, err := catalogue.Parse(strings.NewReader(testCatalogue))
	require.NoError(t, err)
	return New(cat, dataset.NewResolver(t.TempDir()))
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestListView(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "TDE catalogue (3 sources)")
	assert.Contains(t, view, "AT2019qiz")
	assert.Contains(t, view, "iPTF16fnl")
}

func TestFilter(t *testing.T) {
	m := newTestModel(t)

	// Focus the filter and type a ZTF name fragment.
	next, _ := m.Update(key("/"))
	m = next.(Model)
	require.True(t, m.filterFocused)

	for _, r := range "ztf18" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "AT2018hyz", m.filtered[0].name)

	// Escape clears the filter.
	next, _ = m.Update(key("esc"))
	m = next.(Model)
	assert.False(t, m.filterFocused)
	assert.Len(t, m.filtered, 3)
}

func TestOpenAndCloseDetail(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(key("enter"))
	m = next.(Model)
	require.Equal(t, viewDetail, m.view)
	require.NotNil(t, m.selected)

	view := m.View()
	assert.Contains(t, view, m.selected.name)
	assert.Contains(t, view, "wis-tns.org")

	next, _ = m.Update(key("esc"))
	m = next.(Model)
	assert.Equal(t, viewList, m.view)
	assert.Nil(t, m.selected)
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "....", flags(dataset.Availability{}))
	assert.Equal(t, "O.XS", flags(dataset.Availability{Optical: true, XRay: true, Spectra: true}))
}
