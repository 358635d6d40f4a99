//go:build dev

package resources

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir resolves the static directory next to this source file so edits
// show up without rebuilding.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// IsDev reports whether assets are served from disk.
const IsDev = true

// Dir returns the on-disk asset directory.
func Dir() string {
	return staticDir()
}

// FS returns the on-disk asset tree.
func FS() fs.FS {
	return os.DirFS(staticDir())
}

// Handler returns an HTTP handler serving assets straight from disk.
func Handler() http.Handler {
	slog.Info("static assets served from filesystem", "path", staticDir())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.StripPrefix(StaticPrefix, http.FileServer(http.FS(FS()))).ServeHTTP(w, r)
	})
}
