// Package onboarding shows the introduction once per profile.
package onboarding

import (
	"context"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/store"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// Gate shows the intro until it has been dismissed.
type Gate struct {
	store    *store.Store
	renderer ui.Renderer
}

func NewGate(s *store.Store, renderer ui.Renderer) *Gate {
	return &Gate{store: s, renderer: renderer}
}

// ShowIfFirstRun shows the intro when it has never been dismissed and
// reports whether it did.
func (g *Gate) ShowIfFirstRun(ctx context.Context) bool {
	if g.store.Flag(ctx, domain.FlagSeenIntro) {
		return false
	}
	g.renderer.SetIntroVisible(true)
	return true
}

// Dismiss hides the intro and remembers it was seen.
func (g *Gate) Dismiss(ctx context.Context) error {
	g.renderer.SetIntroVisible(false)
	return g.store.SetFlag(ctx, domain.FlagSeenIntro, true)
}
