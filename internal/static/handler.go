package static

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
)

// Handler serves the web bundle: index.html, the compiled board.wasm and the
// wasm_exec.js glue that ships with the Go toolchain.
type Handler struct {
	dir string
}

// NewHandler creates a handler serving files from dir.
func NewHandler(dir string) *Handler {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Warn("static dir not found, only API routes will work", "dir", dir)
	}
	return &Handler{dir: dir}
}

// Serve returns an http.Handler for the bundle.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch ext := path.Ext(r.URL.Path); {
		case ext == ".wasm":
			// Required for WebAssembly.instantiateStreaming.
			w.Header().Set("Content-Type", "application/wasm")
			w.Header().Set("Cache-Control", "no-cache")
		case ext == ".html", strings.HasSuffix(r.URL.Path, "/"):
			w.Header().Set("Cache-Control", "no-cache")
		default:
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fs.ServeHTTP(w, r)
	})
}
