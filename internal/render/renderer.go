// Package render provides terminal output for catalogue tables, light
// curves, and spectra. Output adapts to the environment: styled text on a
// TTY, markdown when piped, JSON on request.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes formatted output to a pair of streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
}

// NewRenderer creates a renderer for the given streams and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode}
}

// Out returns the renderer's primary output stream.
func (r *Renderer) Out() io.Writer { return r.out }

// EffectiveMode resolves ModeAuto: styled text on a terminal, markdown when
// piped into another program.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Header prints a section heading at the given level.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		fmt.Fprintf(r.out, "%s %s\n\n", strings.Repeat("#", level), text)
	case ModeJSON:
		// JSON output has no headings.
	default:
		fmt.Fprintln(r.out, headerStyle.Render(text))
	}
}

// KeyValue prints an aligned label/value line.
func (r *Renderer) KeyValue(key, value string) {
	if value == "" {
		value = "-"
	}
	switch r.EffectiveMode() {
	case ModeMarkdown:
		fmt.Fprintf(r.out, "- **%s**: %s\n", key, value)
	default:
		fmt.Fprintf(r.out, "  %-20s %s\n", dimStyle.Render(key), value)
	}
}

// Warn prints a warning line to the error stream.
func (r *Renderer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.EffectiveMode() == ModeText {
		msg = warnStyle.Render(msg)
	}
	fmt.Fprintln(r.errOut, msg)
}

// Error prints an error line to the error stream.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.EffectiveMode() == ModeText {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(r.errOut, msg)
}

// Println prints a plain line to the output stream.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf prints formatted text to the output stream.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
