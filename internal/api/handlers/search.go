package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/sentisearch/internal/api"
	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/pagination"
)

type SearchService interface {
	Search(ctx context.Context, query string, useAI *bool) (*domain.SearchResponse, error)
	Replay(ctx context.Context, index int) (*domain.SearchResponse, error)
	ShowTab(ctx context.Context, name string) error
	History(ctx context.Context) []domain.HistoryEntry
	Favorite(ctx context.Context, index int) (domain.FavoriteEntry, error)
	Feedback(ctx context.Context, index int, met bool) error
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	UseAI *bool  `json:"useAI,omitempty"`
}

type FeedbackRequest struct {
	Met *bool `json:"met"`
}

type HistoryItemResponse struct {
	Index      int    `json:"index"`
	Query      string `json:"query"`
	RecordedAt string `json:"time"`
}

type HistoryResponse struct {
	Items   []HistoryItemResponse `json:"items"`
	Cursor  string                `json:"cursor,omitempty"`
	HasMore bool                  `json:"has_more"`
}

type historyRow struct {
	index int
	entry domain.HistoryEntry
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.Search(r.Context(), req.Query, req.UseAI)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *SearchHandler) ShowTab(w http.ResponseWriter, r *http.Request) {
	tab := chi.URLParam(r, "tab")
	if err := h.svc.ShowTab(r.Context(), tab); err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"active": tab})
}

// History pages through the search history oldest first. The cursor is only
// valid while the entries it was issued against are unchanged.
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries := h.svc.History(r.Context())
	rows := make([]historyRow, len(entries))
	for i, e := range entries {
		rows[i] = historyRow{index: i, entry: e}
	}

	page, err := pagination.Page(rows, r.URL.Query().Get("cursor"), limit, func(row historyRow) time.Time {
		return row.entry.RecordedAt
	})
	if err != nil {
		if errors.Is(err, pagination.ErrStaleCursor) {
			api.Error(w, http.StatusConflict, err.Error())
			return
		}
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := HistoryResponse{
		Items:   make([]HistoryItemResponse, 0, len(page.Items)),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	}
	for _, row := range page.Items {
		resp.Items = append(resp.Items, HistoryItemResponse{
			Index:      row.index,
			Query:      row.entry.Query,
			RecordedAt: row.entry.RecordedAt.UTC().Format(time.RFC3339),
		})
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *SearchHandler) Replay(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r, "index")
	if !ok {
		return
	}

	resp, err := h.svc.Replay(r.Context(), idx)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *SearchHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r, "index")
	if !ok {
		return
	}

	var req FeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Met == nil {
		api.Error(w, http.StatusBadRequest, "met is required")
		return
	}

	if err := h.svc.Feedback(r.Context(), idx, *req.Met); err != nil {
		api.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SearchHandler) FavoriteResult(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r, "index")
	if !ok {
		return
	}

	fav, err := h.svc.Favorite(r.Context(), idx)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, fav)
}
