package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/sentisearch/internal/api"
	"github.com/cloo-solutions/sentisearch/internal/domain"
)

type CollectionService interface {
	Favorites(ctx context.Context) []domain.FavoriteEntry
	AddFavorite(ctx context.Context, fav domain.FavoriteEntry) error
	Unfavorite(ctx context.Context, url string) (int, error)
	Photos(ctx context.Context) []domain.UploadedPhoto
	AddPhotoData(ctx context.Context, photo domain.UploadedPhoto) error
	RemovePhoto(ctx context.Context, imageData string) (int, error)
	RemovePhotoAt(ctx context.Context, index int) (int, error)
}

type CollectionHandler struct {
	svc CollectionService
}

func NewCollectionHandler(svc CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

type AddPhotoRequest struct {
	ImageData string `json:"url"`
}

type PhotoCountResponse struct {
	Count int `json:"count"`
}

type RemovedResponse struct {
	Removed int `json:"removed"`
}

func (h *CollectionHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs := h.svc.Favorites(r.Context())
	if favs == nil {
		favs = []domain.FavoriteEntry{}
	}
	api.Success(w, http.StatusOK, favs)
}

func (h *CollectionHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var fav domain.FavoriteEntry
	if !decodeBody(w, r, &fav) {
		return
	}

	if err := h.svc.AddFavorite(r.Context(), fav); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, fav)
}

// RemoveFavorite drops the most recent favorite whose URL matches the url
// query parameter.
func (h *CollectionHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	removed, err := h.svc.Unfavorite(r.Context(), url)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, RemovedResponse{Removed: removed})
}

func (h *CollectionHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos := h.svc.Photos(r.Context())
	if photos == nil {
		photos = []domain.UploadedPhoto{}
	}
	api.Success(w, http.StatusOK, photos)
}

func (h *CollectionHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var req AddPhotoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	photo := domain.UploadedPhoto{ImageData: req.ImageData}
	if err := h.svc.AddPhotoData(r.Context(), photo); err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, PhotoCountResponse{Count: len(h.svc.Photos(r.Context()))})
}

// RemovePhoto removes by position when index is given, otherwise the most
// recent photo whose data URL equals url.
func (h *CollectionHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		removed int
		err     error
	)
	switch {
	case q.Get("index") != "":
		idx, convErr := strconv.Atoi(q.Get("index"))
		if convErr != nil || idx < 0 {
			api.Error(w, http.StatusBadRequest, "invalid index")
			return
		}
		removed, err = h.svc.RemovePhotoAt(r.Context(), idx)
	case q.Get("url") != "":
		removed, err = h.svc.RemovePhoto(r.Context(), q.Get("url"))
	default:
		api.Error(w, http.StatusBadRequest, "index or url is required")
		return
	}
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, RemovedResponse{Removed: removed})
}
