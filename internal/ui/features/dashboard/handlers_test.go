package dashboard

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

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/testutil"
	"github.com/leapstack-labs/leapeda/internal/ui/features"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

type sourceFunc func(ctx context.Context) (*dataset.Dataset, error)

func (f sourceFunc) Get(ctx context.Context) (*dataset.Dataset, error) { return f(ctx) }

func setupRouter(t *testing.T, source DatasetSource) (http.Handler, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	if source == nil {
		source = fixture.Cache
	}

	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, source, fixture.Controller, fixture.SessionStore, testutil.NewTestLogger(t), common.PageMeta{}))
	return r, fixture
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// DashboardPage Tests - Full HTML page responses
// =============================================================================

func TestDashboardPage_Default(t *testing.T) {
	h, _ := setupRouter(t, nil)
	rec := get(t, h, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>IRIS Dataset EDA</title>",
		PageHeader,
		PageFooter,
		SidebarHeader,
		ModeLabel,
		`class="layout-wide"`,
		`id="controls"`,
		`id="analysis"`,
		"Dataset Preview",
		"Column Info",
		"Missing Values",
		`<span class="metric-value">150</span>`,
		"data-signals=",
	} {
		assert.Contains(t, body, want)
	}
	for _, m := range eda.Modes {
		assert.Contains(t, body, `<option value="`+string(m)+`"`)
	}
	assert.Contains(t, body, `<option value="Dataset Overview" selected>`)
	assert.NotEmpty(t, rec.Result().Cookies(), "selection is stored in the session")
}

func TestDashboardPage_ModeControls(t *testing.T) {
	tests := []struct {
		query   string
		want    []string
		notWant []string
	}{
		{
			query:   "mode=summary",
			want:    []string{"Descriptive Statistics", "<td>5.843333</td>"},
			notWant: []string{ColumnLabel, FeatureLabel, XLabel},
		},
		{
			query: "mode=distribution&column=petal_width",
			want:  []string{ColumnLabel, `<option value="petal_width" selected>`, "Distribution of petal_width", "<svg"},
		},
		{
			query:   "mode=boxen&column=sepal_width",
			want:    []string{FeatureLabel, "Boxen Plot: sepal_width by Species", "<svg"},
			notWant: []string{ColumnLabel},
		},
		{
			query: "mode=strip",
			want:  []string{FeatureLabel, "Strip Plot: sepal_length by Species"},
		},
		{
			query: "mode=swarm&column=petal_length",
			want:  []string{FeatureLabel, "Swarm Plot: petal_length by Species"},
		},
		{
			query: "mode=pair",
			want:  []string{"Pair Plot (Feature Relationships)", "Color coded by species", "<svg"},
		},
		{
			query: "mode=joint&x=sepal_length&y=petal_width&kind=hex",
			want:  []string{XLabel, YLabel, KindLabel, `<option value="hex" selected>`, "<svg"},
		},
		{
			query:   "mode=joint&x=petal_length&y=petal_length&kind=kde",
			want:    []string{XLabel, YLabel, "⚠️ " + eda.JointWarning},
			notWant: []string{KindLabel, "<svg"},
		},
	}

	h, _ := setupRouter(t, nil)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, h, "/?"+tt.query)
			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, body, notWant)
			}
		})
	}
}

func TestDashboardPage_InvalidSelection(t *testing.T) {
	h, _ := setupRouter(t, nil)

	for _, query := range []string{"mode=violin", "mode=boxen&column=species", "mode=joint&kind=bar"} {
		rec := get(t, h, "/?"+query)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Contains(t, rec.Body.String(), `class="alert alert-error"`, query)
		assert.Contains(t, rec.Body.String(), "invalid selection", query)
		assert.Contains(t, rec.Body.String(), SidebarHeader, "the page still renders around the error")
	}
}

func TestDashboardPage_SessionFallback(t *testing.T) {
	h, _ := setupRouter(t, nil)

	first := get(t, h, "/?mode=joint&x=petal_length&y=sepal_width&kind=reg")
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	second := get(t, h, "/", cookies...)
	assert.Equal(t, http.StatusOK, second.Code)
	body := second.Body.String()
	assert.Contains(t, body, `<option value="Joint Plot" selected>`)
	assert.Contains(t, body, `<option value="reg" selected>`)
	assert.Contains(t, body, "sepal_width vs petal_length (reg)")
}

func TestDashboardPage_DatasetUnavailable(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	fixture := features.SetupTestFixture(t)
	failing := sourceFunc(func(context.Context) (*dataset.Dataset, error) {
		return nil, errors.New("disk on fire")
	})

	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, failing, fixture.Controller, fixture.SessionStore, logger, common.PageMeta{}))

	rec := get(t, r, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk on fire")
	assert.Contains(t, logs.String(), "dataset unavailable")
}

func TestDashboardPage_LoadsDatasetOnce(t *testing.T) {
	h, fixture := setupRouter(t, nil)

	for i := 0; i < 3; i++ {
		for _, m := range eda.Modes {
			rec := get(t, h, "/?mode="+m.Slug())
			require.Equal(t, http.StatusOK, rec.Code, m)
		}
	}
	assert.Equal(t, 1, fixture.Cache.Loads())
	assert.Zero(t, fixture.Controller.Surfaces().Outstanding())
}

// =============================================================================
// AnalysisSSE Tests - datastar event stream responses
// =============================================================================

func TestAnalysisSSE(t *testing.T) {
	h, _ := setupRouter(t, nil)

	rec := post(t, h, `{"mode":"Joint Plot","column":"sepal_length","x":"petal_length","y":"petal_width","kind":"kde"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	assert.NotEmpty(t, rec.Result().Cookies(), "selection is stored before the stream starts")

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="controls"`)
	assert.Contains(t, body, `id="analysis"`)
	assert.Contains(t, body, KindLabel)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "datastar-patch-signals")
}

func TestAnalysisSSE_SameColumnWarning(t *testing.T) {
	h, fixture := setupRouter(t, nil)

	rec := post(t, h, `{"mode":"Joint Plot","x":"sepal_width","y":"sepal_width","kind":"scatter"}`)

	body := rec.Body.String()
	assert.Contains(t, body, eda.JointWarning)
	assert.NotContains(t, body, KindLabel)
	assert.NotContains(t, body, "<svg")
	assert.Zero(t, fixture.Controller.Surfaces().Acquired())
}

func TestAnalysisSSE_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed signals", body: `{"mode":`, want: "Failed to read signals"},
		{name: "unknown mode", body: `{"mode":"Heatmap"}`, want: "invalid selection"},
		{name: "unknown column", body: `{"mode":"Strip Plot","column":"stem"}`, want: "invalid selection"},
	}

	h, _ := setupRouter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			body := rec.Body.String()
			assert.Contains(t, body, "datastar-patch-elements")
			assert.Contains(t, body, "alert-error")
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, "datastar-patch-signals")
			assert.Empty(t, rec.Result().Cookies(), "rejected selections are not stored")
		})
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestSignalsFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?mode=joint&x=petal_length", nil)
	sig, ok := signalsFromQuery(req.URL.Query())
	assert.True(t, ok)
	assert.Equal(t, eda.Signals{Mode: "joint", X: "petal_length"}, sig)

	req = httptest.NewRequest(http.MethodGet, "/?utm_source=mail", nil)
	_, ok = signalsFromQuery(req.URL.Query())
	assert.False(t, ok)
}
