package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mind-engage/quizretry/internal/storage"
)

// MountExports serves archived exports read-only.
func MountExports(r chi.Router, bs storage.BlobStore) {
	// GET /exports/{session}/{file}.csv
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if key == "" || path.Ext(key) != ".csv" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rc, err := bs.Get("exports/" + key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
		_, _ = io.Copy(w, rc)
	})
}
