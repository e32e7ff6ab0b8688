package tabs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/testutil"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

func newController(t *testing.T) (*Controller, *ui.Snapshot, context.Context) {
	t.Helper()
	s := testutil.NewStore(t)
	view := ui.NewSnapshot(time.Second)
	c := NewController(s.Profile(), view, zerolog.Nop())
	t.Cleanup(c.Close)
	return c, view, context.Background()
}

func TestController_StartsOnResults(t *testing.T) {
	c, view, _ := newController(t)

	assert.Equal(t, domain.TabResults, c.Active())
	st := view.State()
	assert.Equal(t, 1, st.VisibleCount())
	assert.True(t, st.Visible[domain.TabResults])
}

func TestController_ActivateShowsOnePanel(t *testing.T) {
	c, view, ctx := newController(t)

	for _, tab := range domain.AllTabs {
		require.NoError(t, c.Activate(ctx, tab))
		st := view.State()
		assert.Equal(t, tab, c.Active())
		assert.Equal(t, 1, st.VisibleCount())
		assert.True(t, st.Visible[tab])
	}
}

func TestController_ActivateRendersFromStore(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	p := s.Profile()
	_, err := p.AddFavorite(ctx, domain.FavoriteEntry{ImageURL: "a.jpg"})
	require.NoError(t, err)
	_, err = p.RecordQuery(ctx, "rainy day", time.Now())
	require.NoError(t, err)

	view := ui.NewSnapshot(time.Second)
	c := NewController(p, view, zerolog.Nop())
	defer c.Close()

	require.NoError(t, c.Activate(ctx, domain.TabFavorites))
	st := view.State()
	require.Len(t, st.Favorites, 1)
	assert.Equal(t, "a.jpg", st.Favorites[0].ImageURL)

	require.NoError(t, c.Activate(ctx, domain.TabHistory))
	st = view.State()
	require.Len(t, st.History, 1)
	assert.Equal(t, "rainy day", st.History[0].Query)
}

func TestController_ReactivateRendersAgain(t *testing.T) {
	c, view, ctx := newController(t)

	require.NoError(t, c.Activate(ctx, domain.TabPhotos))
	require.NoError(t, c.Activate(ctx, domain.TabPhotos))

	assert.Equal(t, 2, view.State().Renders[domain.TabPhotos])
	assert.Equal(t, 1, view.State().VisibleCount())
}

func TestController_StoreChangeRerendersActiveTabOnly(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	p := s.Profile()
	view := ui.NewSnapshot(time.Second)
	c := NewController(p, view, zerolog.Nop())
	defer c.Close()

	require.NoError(t, c.Activate(ctx, domain.TabHistory))
	_, err := p.RecordQuery(ctx, "sunset", time.Now())
	require.NoError(t, err)

	st := view.State()
	require.Len(t, st.History, 1)
	assert.Equal(t, 2, st.Renders[domain.TabHistory])

	_, err = p.AddFavorite(ctx, domain.FavoriteEntry{ImageURL: "x.jpg"})
	require.NoError(t, err)
	assert.Zero(t, view.State().Renders[domain.TabFavorites])
}

func TestController_CloseStopsRendering(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	p := s.Profile()
	view := ui.NewSnapshot(time.Second)
	c := NewController(p, view, zerolog.Nop())

	require.NoError(t, c.Activate(ctx, domain.TabHistory))
	c.Close()
	_, err := p.RecordQuery(ctx, "ignored", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, view.State().Renders[domain.TabHistory])
}

func TestController_ActivateName(t *testing.T) {
	c, _, ctx := newController(t)

	require.NoError(t, c.ActivateName(ctx, " Favorites "))
	assert.Equal(t, domain.TabFavorites, c.Active())

	err := c.ActivateName(ctx, "settings")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.TabFavorites, c.Active())

	err = c.Activate(ctx, domain.Tab("bogus"))
	assert.ErrorIs(t, err, domain.ErrUnknownTab)
}
