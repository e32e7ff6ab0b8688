// Package ui defines the presentation boundary. Components never touch a
// screen directly; they call a Renderer after every state change.
package ui

import (
	"time"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// Level classifies a transient notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Card actions offered on every rendered result.
const (
	ActionFavorite   = "favorite"
	ActionDownload   = "download"
	ActionThumbsUp   = "thumbs_up"
	ActionThumbsDown = "thumbs_down"
)

// Labels for the search control.
const (
	SearchLabelIdle = "Search"
	SearchLabelBusy = "Searching..."
)

// Messages shown to the user.
const (
	MsgNoResults    = "No matching images found."
	MsgNoFavorites  = "No favorites yet."
	MsgNoHistory    = "No past queries."
	MsgNoPhotos     = "No Photos yet."
	MsgSearchFailed = "Something went wrong while searching."
	MsgSearchDone   = "Search completed!"

	MsgFavoriteAdded   = "Added to favorites!"
	MsgFavoriteRemoved = "Removed from favorites."
	MsgPhotoAdded      = "Photo uploaded successfully!"
	MsgPhotoRemoved    = "Photo removed."
	MsgFaceSaved       = "Face saved successfully!"
	MsgFaceFailed      = "Upload failed."
	MsgFeedbackSent    = "Thanks for your feedback!"
	MsgFeedbackFailed  = "Could not send feedback."
)

// Card is one rendered search result with its bound actions.
type Card struct {
	Index           int                 `json:"index"`
	Result          domain.SearchResult `json:"result"`
	ExpectedEmotion string              `json:"expected_emotion,omitempty"`
	Actions         []string            `json:"actions"`
}

// ResultsView is the content of the results panel.
type ResultsView struct {
	Query        string   `json:"query,omitempty"`
	Cards        []Card   `json:"cards"`
	EmptyMessage string   `json:"empty_message,omitempty"`
	Emotion      *string  `json:"emotion,omitempty"`
	TimeElapsed  *float64 `json:"time_elapsed,omitempty"`
}

// NewResultsView binds every result to the card actions. An empty response
// yields an empty-state message and no actions.
func NewResultsView(query string, resp *domain.SearchResponse) ResultsView {
	view := ResultsView{Query: query, Cards: []Card{}}
	if resp == nil || len(resp.Results) == 0 {
		view.EmptyMessage = MsgNoResults
		if resp != nil {
			view.Emotion = resp.Emotion
			view.TimeElapsed = resp.TimeElapsed
		}
		return view
	}

	view.Emotion = resp.Emotion
	view.TimeElapsed = resp.TimeElapsed
	for i, r := range resp.Results {
		view.Cards = append(view.Cards, Card{
			Index:           i,
			Result:          r,
			ExpectedEmotion: resp.ExpectedEmotionFor(r),
			Actions:         []string{ActionFavorite, ActionDownload, ActionThumbsUp, ActionThumbsDown},
		})
	}
	return view
}

// Notification is a short-lived message that dismisses itself.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Renderer receives every presentation change.
type Renderer interface {
	// ShowPanel makes tab the only visible panel.
	ShowPanel(tab domain.Tab)

	RenderLoading()
	RenderResults(view ResultsView)
	RenderFavorites(favorites []domain.FavoriteEntry)
	RenderHistory(history []domain.HistoryEntry)
	RenderPhotos(photos []domain.UploadedPhoto)

	SetSearchBusy(busy bool, label string)
	SetListening(listening bool)
	SetQuery(text string)
	SetCameraOpen(open bool)
	SetIntroVisible(visible bool)

	Notify(level Level, message string)
}
