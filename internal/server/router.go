package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/api"
	"github.com/cloo-solutions/sentisearch/internal/api/handlers"
	"github.com/cloo-solutions/sentisearch/internal/api/middleware"
)

// Session is the set of session operations exposed over HTTP.
type Session interface {
	handlers.SearchService
	handlers.CollectionService
	handlers.DeviceService
}

type RouterConfig struct {
	Session Session
	View    handlers.StateSource
	Logger  zerolog.Logger

	// AllowRemote disables the loopback-only guard.
	AllowRemote bool
}

// Photos travel as base64 data URLs, so the body limit is the 10MB photo cap
// plus encoding overhead.
const maxBodyBytes int64 = 14 * 1024 * 1024

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	searchHandler := handlers.NewSearchHandler(cfg.Session)
	collectionHandler := handlers.NewCollectionHandler(cfg.Session)
	deviceHandler := handlers.NewDeviceHandler(cfg.Session)
	viewHandler := handlers.NewViewHandler(cfg.View)

	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	if !cfg.AllowRemote {
		r.Use(middleware.LoopbackOnly)
	}
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	r.Use(middleware.DetachCancel)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/view", viewHandler.Get)
	r.Post("/search", searchHandler.Search)
	r.Post("/tabs/{tab}", searchHandler.ShowTab)

	r.Route("/history", func(r chi.Router) {
		r.Get("/", searchHandler.History)
		r.Post("/{index}/replay", searchHandler.Replay)
	})

	r.Route("/results/{index}", func(r chi.Router) {
		r.Post("/feedback", searchHandler.Feedback)
		r.Post("/favorite", searchHandler.FavoriteResult)
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", collectionHandler.ListFavorites)
		r.Post("/", collectionHandler.AddFavorite)
		r.Delete("/", collectionHandler.RemoveFavorite)
	})

	r.Route("/photos", func(r chi.Router) {
		r.Get("/", collectionHandler.ListPhotos)
		r.Post("/", collectionHandler.AddPhoto)
		r.Delete("/", collectionHandler.RemovePhoto)
	})

	r.Route("/camera", func(r chi.Router) {
		r.Post("/open", deviceHandler.OpenCamera)
		r.Post("/capture", deviceHandler.Capture)
		r.Post("/close", deviceHandler.CloseCamera)
	})

	r.Post("/voice/listen", deviceHandler.Listen)
	r.Post("/intro/dismiss", deviceHandler.DismissIntro)

	return r
}
