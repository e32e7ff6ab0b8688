package handlers

import (
	"net/http"

	"github.com/cloo-solutions/sentisearch/internal/api"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// StateSource exposes the current view model.
type StateSource interface {
	State() ui.State
}

type ViewHandler struct {
	src StateSource
}

func NewViewHandler(src StateSource) *ViewHandler {
	return &ViewHandler{src: src}
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.src.State())
}
