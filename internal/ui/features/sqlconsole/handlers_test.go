package sqlconsole

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/testutil"
	"github.com/leapstack-labs/leapeda/internal/ui/features"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

type brokenQuerier struct{}

func (brokenQuerier) Run(context.Context, string, int) (*warehouse.Result, error) {
	return nil, errors.New("connection closed")
}

func (brokenQuerier) Tables(context.Context) ([]string, error) {
	return nil, errors.New("connection closed")
}

func (brokenQuerier) Columns(context.Context, string) ([]warehouse.Column, error) {
	return nil, errors.New("connection closed")
}

func setupRouter(t *testing.T, q Querier) http.Handler {
	t.Helper()
	if q == nil {
		q = features.SetupTestWarehouse(t)
	}
	r := chi.NewRouter()
	meta := common.PageMeta{Header: "IRIS", Nav: []common.NavItem{{Label: "Dashboard", Path: "/"}, {Label: "SQL", Path: "/query"}}}
	require.NoError(t, SetupRoutes(r, q, meta, testutil.NewTestLogger(t)))
	return r
}

func execute(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query/execute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	return rec.Body.String()
}

func TestQueryPage(t *testing.T) {
	h := setupRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>SQL Console</title>")
	assert.Contains(t, body, `<a href="/query" class="nav-link active">SQL</a>`)
	assert.Contains(t, body, `<a href="/" class="nav-link">Dashboard</a>`)
	assert.Contains(t, body, "@get(&#39;/api/query/schema/iris&#39;)")
	assert.Contains(t, body, "SELECT * FROM iris LIMIT 10")
	assert.Contains(t, body, `id="query-results"`)
}

func TestQueryPage_Error(t *testing.T) {
	h := setupRouter(t, brokenQuerier{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection closed")
}

func TestExecuteQuerySSE(t *testing.T) {
	h := setupRouter(t, nil)

	body := execute(t, h, `{"sql":"SELECT species, count(*) AS n FROM iris GROUP BY species ORDER BY species"}`)

	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="query-results"`)
	assert.Contains(t, body, "<th>species</th><th>n</th>")
	assert.Contains(t, body, "<td>setosa</td><td>50</td>")
	assert.Contains(t, body, "3 rows in")
}

func TestExecuteQuerySSE_Truncated(t *testing.T) {
	h := setupRouter(t, nil)

	body := execute(t, h, `{"sql":"SELECT * FROM range(5000)"}`)

	assert.Contains(t, body, "first 1000 rows")
	assert.Contains(t, body, "(truncated)")
}

func TestExecuteQuerySSE_Errors(t *testing.T) {
	tests := []struct {
		name    string
		querier Querier
		body    string
		want    string
	}{
		{name: "malformed signals", body: `{"sql":`, want: "Failed to read signals"},
		{name: "empty query", body: `{"sql":"   "}`, want: "Query cannot be empty"},
		{name: "bad sql", body: `{"sql":"SELECT * FROM nowhere"}`, want: "failed to execute query"},
		{name: "querier failure", querier: brokenQuerier{}, body: `{"sql":"SELECT 1"}`, want: "connection closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupRouter(t, tt.querier)
			body := execute(t, h, tt.body)
			assert.Contains(t, body, "alert-error")
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestSchemaSSE(t *testing.T) {
	h := setupRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/query/schema/iris", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `id="schema-panel"`)
	assert.Contains(t, body, "<td>sepal_length</td><td>DOUBLE</td><td>yes</td>")
	assert.Contains(t, body, "<td>species</td><td>VARCHAR</td>")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/query/schema/nope", nil))
	assert.Contains(t, rec.Body.String(), "failed to get schema")
	assert.NotContains(t, rec.Body.String(), `id="schema-panel"`)
}
