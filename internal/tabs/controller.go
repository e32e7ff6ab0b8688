// Package tabs switches between the result, favorites, history and photos
// panels and keeps the visible panel in step with the store.
package tabs

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/store"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// Controller tracks the active tab. Exactly one panel is visible at a time.
type Controller struct {
	mu       sync.Mutex
	active   domain.Tab
	profile  *store.Profile
	renderer ui.Renderer
	logger   zerolog.Logger
	unsubs   []func()
}

// NewController creates a Controller on the Results tab and subscribes it to
// the profile's collections.
func NewController(profile *store.Profile, renderer ui.Renderer, logger zerolog.Logger) *Controller {
	c := &Controller{
		active:   domain.DefaultTab,
		profile:  profile,
		renderer: renderer,
		logger:   logger.With().Str("component", "tabs").Logger(),
	}
	for _, tab := range []domain.Tab{domain.TabFavorites, domain.TabHistory, domain.TabPhotos} {
		tab := tab
		name, _ := tab.Collection()
		c.unsubs = append(c.unsubs, profile.Store().Subscribe(name, func() {
			c.onCollectionChanged(tab)
		}))
	}
	renderer.ShowPanel(c.active)
	return c
}

// Active returns the visible tab.
func (c *Controller) Active() domain.Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ActivateName parses name and activates the matching tab.
func (c *Controller) ActivateName(ctx context.Context, name string) error {
	tab, err := domain.ParseTab(name)
	if err != nil {
		return err
	}
	return c.Activate(ctx, tab)
}

// Activate hides every panel but tab and renders tab's collection from the
// store. Activating the active tab renders it again.
func (c *Controller) Activate(ctx context.Context, tab domain.Tab) error {
	if !tab.IsValid() {
		return domain.ErrUnknownTab
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = tab
	c.renderer.ShowPanel(tab)
	c.render(ctx, tab)
	c.logger.Debug().Str("tab", string(tab)).Msg("tab activated")
	return nil
}

// Close drops the store subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (c *Controller) onCollectionChanged(tab domain.Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != tab {
		return
	}
	c.render(context.Background(), tab)
}

func (c *Controller) render(ctx context.Context, tab domain.Tab) {
	switch tab {
	case domain.TabFavorites:
		c.renderer.RenderFavorites(c.profile.Favorites.Load(ctx))
	case domain.TabHistory:
		c.renderer.RenderHistory(c.profile.History.Load(ctx))
	case domain.TabPhotos:
		c.renderer.RenderPhotos(c.profile.Photos.Load(ctx))
	}
}
