package domain

import (
	"strings"
	"time"
)

// Durable storage keys. They match the keys the web client used so an exported
// profile stays readable.
const (
	CollectionHistory   = "history"
	CollectionFavorites = "favorites"
	CollectionUploaded  = "uploaded"

	FlagSeenIntro = "seenIntro"
)

// HistoryEntry records one submitted query. Entries are appended and never
// mutated or deduplicated.
type HistoryEntry struct {
	Query      string    `json:"query"`
	RecordedAt time.Time `json:"time"`
}

// NewHistoryEntry creates a new HistoryEntry instance
func NewHistoryEntry(query string, recordedAt time.Time) HistoryEntry {
	return HistoryEntry{Query: query, RecordedAt: recordedAt}
}

// FavoriteEntry is a saved search result. Duplicates are allowed; removal
// matches on ImageURL and takes the most recent match.
type FavoriteEntry struct {
	ImageURL        string   `json:"url"`
	DominantEmotion *string  `json:"emotion,omitempty"`
	Score           *float64 `json:"score,omitempty"`
}

// FavoriteFromResult copies the display attributes of a rendered result.
func FavoriteFromResult(r SearchResult) FavoriteEntry {
	return FavoriteEntry{
		ImageURL:        r.ImageURL,
		DominantEmotion: r.Dominant,
		Score:           r.Score,
	}
}

// ValidateFavorite validates a FavoriteEntry instance
func ValidateFavorite(f FavoriteEntry) error {
	if strings.TrimSpace(f.ImageURL) == "" {
		return ErrEmptyImageURL
	}
	return nil
}

// UploadedPhoto is a user photo held as an embedded data URL.
type UploadedPhoto struct {
	ImageData string `json:"url"`
}

// ValidatePhoto validates an UploadedPhoto instance
func ValidatePhoto(p UploadedPhoto) error {
	if p.ImageData == "" {
		return ErrEmptyImageData
	}
	if !strings.HasPrefix(p.ImageData, "data:image/") {
		return ErrUnsupportedFile
	}
	return nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
