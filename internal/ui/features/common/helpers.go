package common

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// HTML writes markup and remembers the first write error so components can
// render without checking every call.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped.
func (h *HTML) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Rawf writes formatted markup. Arguments are not escaped.
func (h *HTML) Rawf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// Text writes s escaped.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Element writes <tag class="class">text</tag> with text escaped.
func (h *HTML) Element(tag, class, text string) {
	tag = Ident(tag)
	if class != "" {
		h.Rawf("<%s %s>", tag, Attr("class", class))
	} else {
		h.Rawf("<%s>", tag)
	}
	h.Text(text)
	h.Rawf("</%s>", tag)
}

// Component renders c in place.
func (h *HTML) Component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}

// Attr formats name="value" with value escaped.
func Attr(name, value string) string {
	return name + `="` + templ.EscapeString(value) + `"`
}

// Ident keeps the letters, digits, underscores and hyphens of s, for
// values that end up in tag or attribute names.
func Ident(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, s)
}

// BindAttr formats a datastar two-way binding for signal.
func BindAttr(signal string) string {
	return "data-bind:" + Ident(signal)
}

var actionPathEscaper = strings.NewReplacer(`'`, "%27", `\`, "%5C")

// Action formats a datastar backend action such as @get('/path'). Quotes
// and backslashes in path are percent-encoded so it stays one string.
func Action(method, path string) string {
	return "@" + Ident(method) + "('" + actionPathEscaper.Replace(path) + "')"
}

// SelectedIf returns the selected attribute when ok.
func SelectedIf(ok bool) string {
	if ok {
		return " selected"
	}
	return ""
}
