package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/cloo-solutions/sentisearch/internal/camera"
	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/search"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// maxPhotoBytes bounds a photo read from disk before it is embedded.
const maxPhotoBytes = 10 << 20

// Search writes query into the query field and submits it. A nil useAI uses
// the session default.
func (s *Session) Search(ctx context.Context, query string, useAI *bool) (*domain.SearchResponse, error) {
	s.SetQuery(query)
	return s.search.Submit(ctx, query, s.resolveUseAI(useAI))
}

// Replay resubmits the history entry at index through the same guarded
// pipeline and shows the results.
func (s *Session) Replay(ctx context.Context, index int) (*domain.SearchResponse, error) {
	history := s.profile.History.Load(ctx)
	if index < 0 || index >= len(history) {
		return nil, domain.ErrHistoryNotFound
	}
	query := history[index].Query

	s.SetQuery(query)
	resp, err := s.search.Submit(ctx, query, s.useAI)
	if tabErr := s.tabs.Activate(ctx, domain.TabResults); tabErr != nil {
		s.logger.Warn().Err(tabErr).Msg("failed to activate results tab")
	}
	return resp, err
}

// Results returns the rendered result set.
func (s *Session) Results() search.Results {
	return s.search.LastResults()
}

// Searching reports whether a search is in flight.
func (s *Session) Searching() bool {
	return s.search.InFlight()
}

// ActiveTab returns the visible tab.
func (s *Session) ActiveTab() domain.Tab {
	return s.tabs.Active()
}

// ShowTab activates the tab called name.
func (s *Session) ShowTab(ctx context.Context, name string) error {
	tab, err := domain.ParseTab(name)
	if err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return err
	}
	telemetry.AddBreadcrumb(ctx, telemetry.CategoryTab, string(tab))
	return s.tabs.Activate(ctx, tab)
}

func (s *Session) History(ctx context.Context) []domain.HistoryEntry {
	return s.profile.History.Load(ctx)
}

func (s *Session) Favorites(ctx context.Context) []domain.FavoriteEntry {
	return s.profile.Favorites.Load(ctx)
}

func (s *Session) Photos(ctx context.Context) []domain.UploadedPhoto {
	return s.profile.Photos.Load(ctx)
}

// Favorite saves the rendered result at index.
func (s *Session) Favorite(ctx context.Context, index int) (domain.FavoriteEntry, error) {
	r, err := s.search.LastResults().Result(index)
	if err != nil {
		return domain.FavoriteEntry{}, err
	}
	fav := domain.FavoriteFromResult(r)
	return fav, s.AddFavorite(ctx, fav)
}

// AddFavorite saves fav. Duplicates are kept.
func (s *Session) AddFavorite(ctx context.Context, fav domain.FavoriteEntry) error {
	if _, err := s.profile.AddFavorite(ctx, fav); err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return err
	}
	s.renderer.Notify(ui.LevelSuccess, ui.MsgFavoriteAdded)
	return nil
}

// Unfavorite removes the most recent favorite with url and reports how many
// went (0 or 1).
func (s *Session) Unfavorite(ctx context.Context, url string) (int, error) {
	before := len(s.profile.Favorites.Load(ctx))
	after, err := s.profile.RemoveFavorite(ctx, url)
	if err != nil {
		return 0, err
	}
	removed := before - len(after)
	if removed > 0 {
		s.renderer.Notify(ui.LevelInfo, ui.MsgFavoriteRemoved)
	}
	return removed, nil
}

// AddPhoto reads an image file and stores it as a data URL.
func (s *Session) AddPhoto(ctx context.Context, path string) (domain.UploadedPhoto, error) {
	dataURL, err := ReadDataURL(path)
	if err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return domain.UploadedPhoto{}, err
	}
	photo := domain.UploadedPhoto{ImageData: dataURL}
	return photo, s.AddPhotoData(ctx, photo)
}

// AddPhotoData stores an already-encoded photo.
func (s *Session) AddPhotoData(ctx context.Context, photo domain.UploadedPhoto) error {
	if _, err := s.profile.AddPhoto(ctx, photo); err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return err
	}
	s.renderer.Notify(ui.LevelSuccess, ui.MsgPhotoAdded)
	return nil
}

// RemovePhoto removes the most recent photo equal to imageData and reports
// how many went (0 or 1).
func (s *Session) RemovePhoto(ctx context.Context, imageData string) (int, error) {
	before := len(s.profile.Photos.Load(ctx))
	after, err := s.profile.RemovePhoto(ctx, imageData)
	if err != nil {
		return 0, err
	}
	removed := before - len(after)
	if removed > 0 {
		s.renderer.Notify(ui.LevelInfo, ui.MsgPhotoRemoved)
	}
	return removed, nil
}

// RemovePhotoAt removes exactly the photo at index.
func (s *Session) RemovePhotoAt(ctx context.Context, index int) (int, error) {
	_, removed, err := s.profile.RemovePhotoAt(ctx, index)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, domain.ErrPhotoNotFound
	}
	s.renderer.Notify(ui.LevelInfo, ui.MsgPhotoRemoved)
	return 1, nil
}

// Feedback judges the rendered result at index against the emotion the
// search was expected to match.
func (s *Session) Feedback(ctx context.Context, index int, met bool) error {
	results := s.search.LastResults()
	r, err := results.Result(index)
	if err != nil {
		return err
	}
	expected := results.Response.ExpectedEmotionFor(r)
	if expected == "" {
		expected = domain.InferEmotion(results.Query)
	}
	return s.feedback.Submit(ctx, r.ImageURL, expected, met)
}

// FeedbackURL judges an image by URL. An empty expected emotion is inferred
// from query.
func (s *Session) FeedbackURL(ctx context.Context, url, expected, query string, met bool) error {
	if expected == "" {
		expected = domain.InferEmotion(query)
	}
	return s.feedback.Submit(ctx, url, expected, met)
}

// Download saves the rendered result at index into dir.
func (s *Session) Download(ctx context.Context, index int, dir string) (string, error) {
	r, err := s.search.LastResults().Result(index)
	if err != nil {
		return "", err
	}
	return s.DownloadURL(ctx, r.ImageURL, dir)
}

// DownloadURL saves the image at url into dir.
func (s *Session) DownloadURL(ctx context.Context, url, dir string) (string, error) {
	path, err := s.client.Download(ctx, url, dir)
	if err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return "", err
	}
	s.renderer.Notify(ui.LevelSuccess, "Saved "+path)
	return path, nil
}

// Listen captures one spoken query and searches for it.
func (s *Session) Listen(ctx context.Context) error {
	return s.voice.StartListening(ctx)
}

func (s *Session) OpenCamera(ctx context.Context) error {
	return s.camera.Open(ctx)
}

func (s *Session) Capture(ctx context.Context) error {
	return s.camera.Capture(ctx)
}

func (s *Session) CloseCamera() {
	s.camera.Close()
}

// CameraState returns the capture lifecycle state.
func (s *Session) CameraState() camera.State {
	return s.camera.State()
}

// DismissIntro hides the intro for good.
func (s *Session) DismissIntro(ctx context.Context) error {
	return s.intro.Dismiss(ctx)
}

// ReadDataURL reads an image file into a base64 data URL.
func ReadDataURL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat photo: %w", err)
	}
	if info.Size() > maxPhotoBytes {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrUnsupportedFile.Message,
			fmt.Errorf("%s is larger than %d bytes", path, maxPhotoBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", domain.ErrUnsupportedFile
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
