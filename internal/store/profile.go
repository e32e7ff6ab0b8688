package store

import (
	"context"
	"time"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// Profile groups the typed collections of one user profile.
type Profile struct {
	History   *Collection[domain.HistoryEntry]
	Favorites *Collection[domain.FavoriteEntry]
	Photos    *Collection[domain.UploadedPhoto]

	store *Store
}

// Profile returns the typed collections backed by s.
func (s *Store) Profile() *Profile {
	return &Profile{
		History:   NewCollection[domain.HistoryEntry](s, domain.CollectionHistory),
		Favorites: NewCollection[domain.FavoriteEntry](s, domain.CollectionFavorites),
		Photos:    NewCollection[domain.UploadedPhoto](s, domain.CollectionUploaded),
		store:     s,
	}
}

// Store returns the backing store.
func (p *Profile) Store() *Store {
	return p.store
}

// RecordQuery appends a history entry stamped with at.
func (p *Profile) RecordQuery(ctx context.Context, query string, at time.Time) ([]domain.HistoryEntry, error) {
	return p.History.Append(ctx, domain.NewHistoryEntry(query, at))
}

// AddFavorite appends a favorite. Repeated favoriting of the same image keeps
// every copy.
func (p *Profile) AddFavorite(ctx context.Context, fav domain.FavoriteEntry) ([]domain.FavoriteEntry, error) {
	if err := domain.ValidateFavorite(fav); err != nil {
		return nil, err
	}
	return p.Favorites.Append(ctx, fav)
}

// RemoveFavorite drops the most recent favorite with the given image URL, so
// an add followed by a remove restores the previous list.
func (p *Profile) RemoveFavorite(ctx context.Context, imageURL string) ([]domain.FavoriteEntry, error) {
	return p.Favorites.RemoveLast(ctx, func(f domain.FavoriteEntry) bool {
		return f.ImageURL == imageURL
	})
}

// AddPhoto appends an uploaded photo.
func (p *Profile) AddPhoto(ctx context.Context, photo domain.UploadedPhoto) ([]domain.UploadedPhoto, error) {
	if err := domain.ValidatePhoto(photo); err != nil {
		return nil, err
	}
	return p.Photos.Append(ctx, photo)
}

// RemovePhoto drops the most recent photo whose data matches exactly.
func (p *Profile) RemovePhoto(ctx context.Context, imageData string) ([]domain.UploadedPhoto, error) {
	return p.Photos.RemoveLast(ctx, func(ph domain.UploadedPhoto) bool {
		return ph.ImageData == imageData
	})
}

// RemovePhotoAt drops exactly the photo at index.
func (p *Profile) RemovePhotoAt(ctx context.Context, index int) ([]domain.UploadedPhoto, bool, error) {
	return p.Photos.RemoveAt(ctx, index)
}
