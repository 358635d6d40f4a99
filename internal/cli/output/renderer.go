package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Renderer writes command output in the effective mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode

	header  lipgloss.Style
	sub     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a renderer writing results to out and diagnostics to
// errOut. ModeAuto is resolved against out once, here.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	effective := resolve(mode, out)

	lg := lipgloss.NewRenderer(out)
	if effective != ModeText {
		lg.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    effective,
		header:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		sub:     lg.NewStyle().Bold(true),
		success: lg.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lg.NewStyle().Foreground(lipgloss.Color("11")),
		failure: lg.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   lg.NewStyle().Faint(true),
	}
}

// EffectiveMode returns the resolved mode (never ModeAuto).
func (r *Renderer) EffectiveMode() Mode {
	return r.mode
}

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// Println writes a line.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a heading. Level 1 is the page title.
func (r *Renderer) Header(level int, text string) {
	if r.mode != ModeText {
		r.Println(FormatHeader(level, text))
		r.Println()
		return
	}
	style := r.sub
	if level <= 1 {
		style = r.header
	}
	r.Println(style.Render(text))
	r.Println()
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.Println(r.success.Render("✓ " + msg))
}

// Warning writes a warning to the diagnostics stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.warning.Render("⚠ "+msg))
}

// Error writes an error to the diagnostics stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.failure.Render("✗ "+msg))
}

// Muted writes de-emphasised text.
func (r *Renderer) Muted(msg string) {
	r.Println(r.muted.Render(msg))
}

// StatusLine writes one "name  status  detail" line.
func (r *Renderer) StatusLine(name, status, detail string) {
	var mark string
	switch status {
	case "success":
		mark = r.success.Render("✓")
	case "warning", "skipped":
		mark = r.warning.Render("-")
	default:
		mark = r.failure.Render("✗")
	}
	if detail != "" {
		r.Printf("  %s %s %s\n", mark, name, r.muted.Render(detail))
		return
	}
	r.Printf("  %s %s\n", mark, name)
}

// KeyValue writes a labelled value.
func (r *Renderer) KeyValue(key, value string) {
	if r.mode == ModeText {
		r.Printf("%s %s\n", r.sub.Render(key+":"), value)
		return
	}
	r.Println(FormatKeyValue(key, value))
}

// Table writes rows under header: a box table in text mode, a pipe table
// otherwise.
func (r *Renderer) Table(header []string, rows [][]string) {
	if r.mode != ModeText {
		r.Println(FormatTable(header, rows))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	head := make(table.Row, len(header))
	for i, h := range header {
		head[i] = h
	}
	t.AppendHeader(head)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	t.Render()
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
