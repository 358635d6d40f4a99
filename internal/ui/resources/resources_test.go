package resources

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(FS(), "app.css")
	require.NoError(t, err)
	assert.Contains(t, string(data), ".layout-wide")
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.NotEmpty(t, rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticPath(t *testing.T) {
	assert.Equal(t, "/static/app.css", StaticPath("app.css"))
}

func TestDir(t *testing.T) {
	if IsDev {
		assert.DirExists(t, Dir())
		return
	}
	assert.Empty(t, Dir())
}
