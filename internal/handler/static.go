package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// spa serves the client build. Real files are served directly; any other path
// falls back to index.html so client-side routing works on deep links. When
// no build is present the API stays usable and the root says so.
func (h *Handler) spa() http.Handler {
	dist := h.cfg.ClientDist
	index := filepath.Join(dist, "index.html")
	files := http.FileServer(http.Dir(dist))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(index); err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Client build not found. API is OK: /api/health"))
			return
		}

		// Reject path traversal before touching the filesystem.
		rel := strings.TrimPrefix(r.URL.Path, "/")
		if strings.Contains(rel, "..") {
			http.NotFound(w, r)
			return
		}

		if rel != "" {
			if st, err := os.Stat(filepath.Join(dist, rel)); err == nil && !st.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		http.ServeFile(w, r, index)
	})
}
