package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/cloo-solutions/sentisearch/internal/api"
)

// indexParam reads a non-negative integer URL parameter. On failure it writes
// a 400 response and returns false.
func indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		api.Error(w, http.StatusBadRequest, name+" is required")
		return 0, false
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		api.Error(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return idx, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
