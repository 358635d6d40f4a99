package common

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapeda/internal/ui/resources"
)

// Page renders a complete HTML document around body.
func Page(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw("<!doctype html>\n<html lang=\"en\">\n<head>\n")
		h.Raw(`<meta charset="utf-8">` + "\n")
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		h.Rawf("<title>%s</title>\n", templ.EscapeString(meta.Title))
		h.Rawf("<link rel=\"stylesheet\" %s>\n", Attr("href", resources.StaticPath("app.css")))
		h.Rawf("<script type=\"module\" %s></script>\n", Attr("src", DatastarScript))
		h.Raw("</head>\n")

		bodyClass := "layout-centered"
		if meta.Wide {
			bodyClass = "layout-wide"
		}
		h.Rawf("<body %s>\n", Attr("class", bodyClass))

		h.Raw(`<header class="app-header">`)
		h.Element("h1", "app-title", meta.Header)
		if len(meta.Nav) > 0 {
			h.Raw(`<nav class="app-nav">`)
			for _, item := range meta.Nav {
				class := "nav-link"
				if item.Path == meta.CurrentPath {
					class += " active"
				}
				h.Rawf("<a %s %s>", Attr("href", item.Path), Attr("class", class))
				h.Text(item.Label)
				h.Raw("</a>")
			}
			h.Raw("</nav>")
		}
		h.Raw("</header>\n")

		h.Component(ctx, body)
		if meta.LiveReload {
			h.Rawf("<div %s></div>\n", Attr("data-init", "@get('"+LiveReloadPath+"')"))
		}

		h.Raw(`<footer class="app-footer"><hr>`)
		h.Element("p", "", meta.Footer)
		h.Raw("</footer>\n</body>\n</html>\n")
		return h.Err()
	})
}

// Alert renders a callout box.
func Alert(kind AlertKind, msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Rawf(`<div %s role="alert">`, Attr("class", "alert alert-"+string(kind)))
		switch kind {
		case AlertWarning:
			h.Raw("⚠️ ")
		case AlertError:
			h.Raw("❌ ")
		}
		h.Text(msg)
		h.Raw("</div>")
		return h.Err()
	})
}
