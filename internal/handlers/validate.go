package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// pathID reads the {id} route parameter. chi's value wins over the
// standard library one so handlers can be called directly in tests.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.PathValue("id")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
