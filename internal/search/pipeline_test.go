package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/store"
	"github.com/cloo-solutions/sentisearch/internal/tabs"
	"github.com/cloo-solutions/sentisearch/internal/testutil"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) ProcessQuery(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResponse), args.Error(1)
}

type fixture struct {
	pipeline *Pipeline
	searcher *MockSearcher
	profile  *store.Profile
	view     *ui.Snapshot
	tabs     *tabs.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore(t)
	profile := s.Profile()
	view := ui.NewSnapshot(time.Minute)
	ctrl := tabs.NewController(profile, view, zerolog.Nop())
	t.Cleanup(ctrl.Close)
	searcher := new(MockSearcher)
	return &fixture{
		pipeline: NewPipeline(searcher, profile, ctrl, view, zerolog.Nop()),
		searcher: searcher,
		profile:  profile,
		view:     view,
		tabs:     ctrl,
	}
}

func happyResponse() *domain.SearchResponse {
	return &domain.SearchResponse{
		Results: []domain.SearchResult{
			{ImageURL: "https://img/1.jpg", Dominant: domain.StringPtr("happy"), Score: domain.Float64Ptr(0.92)},
			{ImageURL: "https://img/2.jpg", Dominant: domain.StringPtr("happy"), Score: domain.Float64Ptr(0.81)},
		},
		Emotion: domain.StringPtr("joy"),
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tabs.Activate(ctx, domain.TabFavorites))

	f.searcher.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(req *domain.SearchRequest) bool {
		return req.Query == "happy photos" && req.UseAI == nil
	})).Return(happyResponse(), nil).Once()

	resp, err := f.pipeline.Submit(ctx, "happy photos", nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	f.searcher.AssertExpectations(t)

	history := f.profile.History.Load(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "happy photos", history[0].Query)

	st := f.view.State()
	assert.Equal(t, domain.TabResults, st.ActiveTab)
	assert.Equal(t, 1, st.VisibleCount())
	assert.False(t, st.Loading)
	assert.False(t, st.SearchBusy)
	assert.Equal(t, ui.SearchLabelIdle, st.SearchLabel)
	require.Len(t, st.Results.Cards, 2)
	assert.Equal(t, "joy", st.Results.Cards[0].ExpectedEmotion)
	last, ok := st.LastNotification()
	require.True(t, ok)
	assert.Equal(t, ui.MsgSearchDone, last.Message)

	assert.False(t, f.pipeline.InFlight())
	r, err := f.pipeline.LastResults().Result(1)
	require.NoError(t, err)
	assert.Equal(t, "https://img/2.jpg", r.ImageURL)
}

func TestSubmit_TrimsQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.searcher.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(req *domain.SearchRequest) bool {
		return req.Query == "rainy day"
	})).Return(&domain.SearchResponse{Results: []domain.SearchResult{}}, nil).Once()

	_, err := f.pipeline.Submit(ctx, "  rainy day  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "rainy day", f.profile.History.Load(ctx)[0].Query)
}

func TestSubmit_BlankQueryHasNoSideEffects(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		f := newFixture(t)
		ctx := context.Background()

		_, err := f.pipeline.Submit(ctx, q, nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)

		f.searcher.AssertNotCalled(t, "ProcessQuery", mock.Anything, mock.Anything)
		assert.Empty(t, f.profile.History.Load(ctx))
		assert.False(t, f.pipeline.InFlight())

		st := f.view.State()
		assert.False(t, st.SearchBusy)
		last, ok := st.LastNotification()
		require.True(t, ok)
		assert.Equal(t, ui.LevelError, last.Level)
		assert.Equal(t, "please enter or speak a query", last.Message)
	}
}

func TestSubmit_EmptyResults(t *testing.T) {
	f := newFixture(t)
	f.searcher.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(&domain.SearchResponse{Results: []domain.SearchResult{}}, nil).Once()

	_, err := f.pipeline.Submit(context.Background(), "purple elephants", nil)
	require.NoError(t, err)

	st := f.view.State()
	assert.Empty(t, st.Results.Cards)
	assert.Equal(t, ui.MsgNoResults, st.Results.EmptyMessage)
	_, ok := st.LastNotification()
	assert.False(t, ok)
}

func TestSubmit_BackendFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reqErr := domain.NewRequestError("/process_query", errors.New("connection refused"))
	f.searcher.On("ProcessQuery", mock.Anything, mock.Anything).Return(nil, reqErr).Once()

	_, err := f.pipeline.Submit(ctx, "stormy sea", nil)
	require.Error(t, err)
	assert.True(t, domain.IsRequest(err))

	assert.Len(t, f.profile.History.Load(ctx), 1)
	st := f.view.State()
	assert.Empty(t, st.Results.Cards)
	assert.Empty(t, st.Results.EmptyMessage)
	assert.False(t, st.SearchBusy)
	assert.False(t, f.pipeline.InFlight())
	last, ok := st.LastNotification()
	require.True(t, ok)
	assert.Equal(t, ui.LevelError, last.Level)
	assert.Equal(t, ui.MsgSearchFailed, last.Message)

	_, err = f.pipeline.LastResults().Result(0)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	f.searcher.On("ProcessQuery", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(happyResponse(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.pipeline.Submit(ctx, "first", nil)
		done <- err
	}()
	<-entered

	assert.True(t, f.pipeline.InFlight())
	assert.True(t, f.view.State().SearchBusy)
	assert.Equal(t, ui.SearchLabelBusy, f.view.State().SearchLabel)

	_, err := f.pipeline.Submit(ctx, "second", nil)
	assert.ErrorIs(t, err, domain.ErrSearchInFlight)

	close(release)
	require.NoError(t, <-done)

	f.searcher.AssertNumberOfCalls(t, "ProcessQuery", 1)
	history := f.profile.History.Load(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "first", history[0].Query)
	assert.False(t, f.view.State().SearchBusy)
}

func TestSubmit_StaleResponseNotRendered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.searcher.On("ProcessQuery", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { f.pipeline.Invalidate() }).
		Return(happyResponse(), nil).Once()

	resp, err := f.pipeline.Submit(ctx, "happy", nil)
	require.NoError(t, err)
	require.NotNil(t, resp)

	st := f.view.State()
	assert.Empty(t, st.Results.Cards)
	assert.Zero(t, st.Renders[domain.TabResults])
	assert.Nil(t, f.pipeline.LastResults().Response)
	assert.False(t, st.SearchBusy)
}

func TestSubmit_SendsUploadedPhotosAndUseAI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photo := domain.UploadedPhoto{ImageData: "data:image/png;base64,AAAA"}
	_, err := f.profile.AddPhoto(ctx, photo)
	require.NoError(t, err)

	f.searcher.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(req *domain.SearchRequest) bool {
		return len(req.Uploaded) == 1 && req.Uploaded[0] == photo && req.UseAI != nil && *req.UseAI
	})).Return(happyResponse(), nil).Once()

	_, err = f.pipeline.Submit(ctx, "me smiling", domain.BoolPtr(true))
	require.NoError(t, err)
	f.searcher.AssertExpectations(t)
}

func TestSubmit_HistoryRefreshedWhenActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tabs.Activate(ctx, domain.TabHistory))
	before := f.view.State().Renders[domain.TabHistory]

	f.searcher.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(&domain.SearchResponse{Results: []domain.SearchResult{}}, nil).Once()
	_, err := f.pipeline.Submit(ctx, "ocean", nil)
	require.NoError(t, err)

	st := f.view.State()
	assert.Greater(t, st.Renders[domain.TabHistory], before)
	require.Len(t, st.History, 1)
}

func TestResults_Result(t *testing.T) {
	var r Results
	_, err := r.Result(0)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)

	r = Results{Response: happyResponse()}
	_, err = r.Result(-1)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
	_, err = r.Result(2)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
	got, err := r.Result(0)
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.jpg", got.ImageURL)
}
