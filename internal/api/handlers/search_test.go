package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, useAI *bool) (*domain.SearchResponse, error) {
	args := m.Called(ctx, query, useAI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResponse), args.Error(1)
}

func (m *MockSearchService) Replay(ctx context.Context, index int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResponse), args.Error(1)
}

func (m *MockSearchService) ShowTab(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockSearchService) History(ctx context.Context) []domain.HistoryEntry {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.HistoryEntry)
}

func (m *MockSearchService) Favorite(ctx context.Context, index int) (domain.FavoriteEntry, error) {
	args := m.Called(ctx, index)
	return args.Get(0).(domain.FavoriteEntry), args.Error(1)
}

func (m *MockSearchService) Feedback(ctx context.Context, index int, met bool) error {
	return m.Called(ctx, index, met).Error(0)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	resp := &domain.SearchResponse{
		Results: []domain.SearchResult{{ImageURL: "/images/a.jpg", Dominant: domain.StringPtr("happy")}},
		Emotion: domain.StringPtr("happy"),
	}
	mockSvc.On("Search", mock.Anything, "happy dogs", (*bool)(nil)).Return(resp, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":"happy dogs"}`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.SearchResponse
	decodeData(t, w, &got)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "/images/a.jpg", got.Results[0].ImageURL)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_PassesUseAI(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, "calm sea", mock.MatchedBy(func(useAI *bool) bool {
		return useAI != nil && *useAI
	})).Return(&domain.SearchResponse{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":"calm sea","useAI":true}`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"blank query", domain.ErrEmptyQuery, http.StatusBadRequest, domain.ErrCodeValidation},
		{"in flight", domain.ErrSearchInFlight, http.StatusConflict, domain.ErrCodeSearchInFlight},
		{"backend down", domain.NewRequestError("/process_query", assert.AnError), http.StatusBadGateway, domain.ErrCodeRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockSearchService)
			handler := NewSearchHandler(mockSvc)
			mockSvc.On("Search", mock.Anything, "q", (*bool)(nil)).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":"q"}`))
			w := httptest.NewRecorder()

			handler.Search(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w)["code"])
		})
	}
}

func TestSearchHandler_Search_InvalidBody(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchHandler_ShowTab(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("ShowTab", mock.Anything, "favorites").Return(nil)
	mockSvc.On("ShowTab", mock.Anything, "settings").Return(domain.ErrUnknownTab)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/tabs/favorites", nil), "tab", "favorites")
	w := httptest.NewRecorder()
	handler.ShowTab(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/tabs/settings", nil), "tab", "settings")
	w = httptest.NewRecorder()
	handler.ShowTab(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func historyEntries(n int) []domain.HistoryEntry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domain.HistoryEntry, n)
	for i := range out {
		out[i] = domain.NewHistoryEntry("query", base.Add(time.Duration(i)*time.Minute))
	}
	return out
}

func TestSearchHandler_History_Paginates(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("History", mock.Anything).Return(historyEntries(5))

	req := httptest.NewRequest(http.MethodGet, "/history?limit=2", nil)
	w := httptest.NewRecorder()
	handler.History(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var first HistoryResponse
	decodeData(t, w, &first)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.Cursor)
	assert.Equal(t, 0, first.Items[0].Index)

	req = httptest.NewRequest(http.MethodGet, "/history?limit=10&cursor="+first.Cursor, nil)
	w = httptest.NewRecorder()
	handler.History(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var second HistoryResponse
	decodeData(t, w, &second)
	require.Len(t, second.Items, 3)
	assert.False(t, second.HasMore)
	assert.Equal(t, 2, second.Items[0].Index)
}

func TestSearchHandler_History_BadCursor(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("History", mock.Anything).Return(historyEntries(1))

	req := httptest.NewRequest(http.MethodGet, "/history?cursor=!!!", nil)
	w := httptest.NewRecorder()
	handler.History(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_History_Empty(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("History", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	handler.History(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page HistoryResponse
	decodeData(t, w, &page)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestSearchHandler_Replay(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("Replay", mock.Anything, 1).Return(&domain.SearchResponse{}, nil)
	mockSvc.On("Replay", mock.Anything, 9).Return(nil, domain.ErrHistoryNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/history/1/replay", nil), "index", "1")
	w := httptest.NewRecorder()
	handler.Replay(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/history/9/replay", nil), "index", "9")
	w = httptest.NewRecorder()
	handler.Replay(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/history/x/replay", nil), "index", "x")
	w = httptest.NewRecorder()
	handler.Replay(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNumberOfCalls(t, "Replay", 2)
}

func TestSearchHandler_Feedback(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	mockSvc.On("Feedback", mock.Anything, 0, false).Return(nil)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/results/0/feedback", bytes.NewBufferString(`{"met":false}`)), "index", "0")
	w := httptest.NewRecorder()
	handler.Feedback(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Feedback_MissingMet(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/results/0/feedback", bytes.NewBufferString(`{}`)), "index", "0")
	w := httptest.NewRecorder()
	handler.Feedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "met is required", decodeError(t, w)["error"])
}

func TestSearchHandler_FavoriteResult(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)
	fav := domain.FavoriteEntry{ImageURL: "/images/a.jpg", Score: domain.Float64Ptr(0.9)}
	mockSvc.On("Favorite", mock.Anything, 0).Return(fav, nil)
	mockSvc.On("Favorite", mock.Anything, 3).Return(domain.FavoriteEntry{}, domain.ErrResultNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/results/0/favorite", nil), "index", "0")
	w := httptest.NewRecorder()
	handler.FavoriteResult(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got domain.FavoriteEntry
	decodeData(t, w, &got)
	assert.Equal(t, fav.ImageURL, got.ImageURL)

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/results/3/favorite", nil), "index", "3")
	w = httptest.NewRecorder()
	handler.FavoriteResult(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
