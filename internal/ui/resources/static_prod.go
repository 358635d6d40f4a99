//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// IsDev reports whether assets are served from disk.
const IsDev = false

// Dir returns the on-disk asset directory, which embedded builds lack.
func Dir() string {
	return ""
}

// FS returns the embedded asset tree.
func FS() fs.FS {
	fsys, _ := fs.Sub(staticFS, "static")
	return fsys
}

// Handler returns an HTTP handler for serving static files.
// Assets are embedded in the binary and cached by browsers for a day.
func Handler() http.Handler {
	fileServer := http.FileServer(http.FS(FS()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.StripPrefix(StaticPrefix, fileServer).ServeHTTP(w, r)
	})
}
