package sqlconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

// QueryPage renders the console document.
func QueryPage(meta common.PageMeta, tables []string, starter string) templ.Component {
	return common.Page(meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)

		signals, err := json.Marshal(QuerySignals{SQL: starter})
		if err != nil {
			return err
		}
		h.Rawf("<div class=\"app-shell\" %s>\n", common.Attr("data-signals", string(signals)))

		h.Raw(`<aside class="sidebar">`)
		h.Element("h2", "", "Tables")
		h.Raw(`<ul class="table-list">`)
		for _, t := range tables {
			action := common.Action("get", "/api/query/schema/"+url.PathEscape(t))
			h.Rawf("<li><a href=\"#\" %s>", common.Attr("data-on:click__prevent", action))
			h.Text(t)
			h.Raw("</a></li>")
		}
		h.Raw("</ul>\n")
		h.Rawf("<div %s></div>\n", common.Attr("id", SchemaID))
		h.Raw("</aside>\n")

		h.Raw(`<main class="analysis">`)
		h.Element("h2", "", PageTitle)
		h.Raw(`<div class="query-editor"><textarea rows="8" spellcheck="false" data-bind:sql></textarea></div>`)
		h.Rawf(`<button class="run" %s>Run</button>`, common.Attr("data-on:click", common.Action("post", "/api/query/execute")))
		h.Rawf("\n<div %s></div>\n", common.Attr("id", ResultsID))
		h.Raw("</main>\n</div>\n")
		return h.Err()
	}))
}

// QueryResults renders a result table with its row count and timing.
func QueryResults(res *warehouse.Result) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf("<div %s>", common.Attr("id", ResultsID))

		meta := fmt.Sprintf("%d rows in %d ms", len(res.Rows), res.Elapsed.Milliseconds())
		if res.Truncated {
			meta = fmt.Sprintf("first %d rows in %d ms (truncated)", len(res.Rows), res.Elapsed.Milliseconds())
		}
		h.Element("p", "query-meta", meta)

		h.Raw(`<div class="table-wrap"><table class="data"><thead><tr>`)
		for _, c := range res.Columns {
			h.Element("th", "", c)
		}
		h.Raw("</tr></thead><tbody>")
		for _, row := range res.Rows {
			h.Raw("<tr>")
			for _, v := range row {
				h.Element("td", "", v)
			}
			h.Raw("</tr>")
		}
		h.Raw("</tbody></table></div></div>\n")
		return h.Err()
	})
}

// QueryError replaces the results with an error message.
func QueryError(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf("<div %s>", common.Attr("id", ResultsID))
		h.Component(ctx, common.Alert(common.AlertError, msg))
		h.Raw("</div>\n")
		return h.Err()
	})
}

// SchemaPanel lists the columns of a table.
func SchemaPanel(schema SchemaData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf("<div %s>", common.Attr("id", SchemaID))
		h.Element("h3", "", schema.Name)
		h.Raw(`<table class="data"><thead><tr><th>column</th><th>type</th><th>nullable</th></tr></thead><tbody>`)
		for _, c := range schema.Columns {
			h.Raw("<tr>")
			h.Element("td", "", c.Name)
			h.Element("td", "", c.Type)
			nullable := "no"
			if c.Nullable {
				nullable = "yes"
			}
			h.Element("td", "", nullable)
			h.Raw("</tr>")
		}
		h.Raw("</tbody></table></div>\n")
		return h.Err()
	})
}
