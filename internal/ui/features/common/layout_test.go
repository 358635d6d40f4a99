package common

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	meta := PageMeta{
		Title:       "IRIS Dataset EDA",
		Header:      "Header <b>",
		Footer:      "Footer",
		CurrentPath: "/",
		Wide:        true,
		Nav:         []NavItem{{Label: "Dashboard", Path: "/"}, {Label: "SQL", Path: "/query"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Page(meta, Alert(AlertInfo, "body")).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<title>IRIS Dataset EDA</title>")
	assert.Contains(t, html, `class="layout-wide"`)
	assert.Contains(t, html, "Header &lt;b&gt;")
	assert.Contains(t, html, `href="/" class="nav-link active"`)
	assert.Contains(t, html, `href="/query" class="nav-link"`)
	assert.Contains(t, html, "/static/app.css")
	assert.Contains(t, html, "datastar.js")
	assert.Contains(t, html, "<p>Footer</p>")
	assert.Contains(t, html, `<div class="alert alert-info" role="alert">body</div>`)
	assert.NotContains(t, html, LiveReloadPath)
}

func TestPage_LiveReload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page(PageMeta{LiveReload: true}, nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<div data-init="@get(&#39;/reload&#39;)"></div>`)
}

func TestAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Alert(AlertWarning, "Please select different columns").Render(context.Background(), &buf))
	assert.Equal(t, `<div class="alert alert-warning" role="alert">⚠️ Please select different columns</div>`, buf.String())
}

func TestHTML_Escapes(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(&buf)
	h.Element("td", "num", `<script>"x"</script>`)
	require.NoError(t, h.Err())
	assert.Equal(t, `<td class="num">&lt;script&gt;&#34;x&#34;&lt;/script&gt;</td>`, buf.String())

	assert.Equal(t, `value="a&amp;b"`, Attr("value", "a&b"))
	assert.Equal(t, " selected", SelectedIf(true))
	assert.Empty(t, SelectedIf(false))
}

func TestHTML_ElementSanitizesTag(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(&buf)
	h.Element(`td onclick="x"`, `a" b`, "v")
	require.NoError(t, h.Err())
	assert.Equal(t, `<tdonclickx class="a&#34; b">v</tdonclickx>`, buf.String())
}

func TestIdent(t *testing.T) {
	assert.Equal(t, "petal_width", Ident("petal_width"))
	assert.Equal(t, "data-on", Ident("data-on"))
	assert.Equal(t, "xonloadalert1", Ident(`x onload="alert(1)"`))
	assert.Equal(t, "data-bind:column", BindAttr("column"))
	assert.Equal(t, "data-bind:columnonclickx", BindAttr(`column onclick=x`))
}

func TestAction(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{method: "post", path: "/analysis", want: "@post('/analysis')"},
		{method: "get", path: "/api/query/schema/iris", want: "@get('/api/query/schema/iris')"},
		{method: "get", path: `/api/query/schema/x');alert(1);('`, want: "@get('/api/query/schema/x%27);alert(1);(%27')"},
		{method: "get", path: `/a\b`, want: "@get('/a%5Cb')"},
		{method: "get('x')", path: "/", want: "@getx('/')"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Action(tt.method, tt.path))
		})
	}
}
