// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/plot"
	"github.com/leapstack-labs/leapeda/internal/testutil"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

// TestChartSize keeps rendered charts small in handler tests.
var TestChartSize = plot.Size{Width: 400, Height: 300}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Cache        *dataset.Cache
	Controller   *eda.Controller
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a warmed dataset cache, a controller and a
// cookie session store.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	cache := dataset.NewCache(dataset.NamedLoader(dataset.DefaultName), logger)
	_, err := cache.Init(context.Background())
	require.NoError(t, err)

	return &TestFixture{
		Cache:        cache,
		Controller:   eda.NewController(plot.NewPool(), eda.Options{ChartSize: TestChartSize, Logger: logger}),
		SessionStore: NewTestSessionStore(),
	}
}

// SetupTestWarehouse loads the default dataset into an in-memory warehouse.
func SetupTestWarehouse(t *testing.T) *warehouse.Warehouse {
	t.Helper()

	ds, err := dataset.Open(dataset.DefaultName)
	require.NoError(t, err)

	w, err := warehouse.Open(context.Background(), warehouse.MemoryPath, ds, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// WithCookies copies the cookies a response set onto a follow-up request.
func WithCookies(r *http.Request, res *http.Response) *http.Request {
	for _, c := range res.Cookies() {
		r.AddCookie(c)
	}
	return r
}
