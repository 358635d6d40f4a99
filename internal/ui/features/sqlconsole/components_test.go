package sqlconsole

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

func TestQueryPage_EscapesTableNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, QueryPage(common.PageMeta{}, []string{`x');alert(1);('<b>`}, "SELECT 1").Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "@get(&#39;/api/query/schema/x%27%29%3Balert%281%29%3B%28%27%3Cb%3E&#39;)")
	assert.Contains(t, html, "x&#39;);alert(1);(&#39;&lt;b&gt;</a>")
	assert.NotContains(t, html, "<b>")
}

func TestQueryResults_EscapesCells(t *testing.T) {
	var buf bytes.Buffer
	res := &warehouse.Result{Columns: []string{`<th>`}, Rows: [][]string{{`<script>`}}}
	require.NoError(t, QueryResults(res).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "<th>&lt;th&gt;</th>")
	assert.Contains(t, html, "<td>&lt;script&gt;</td>")
	assert.NotContains(t, html, "<script>")
}
