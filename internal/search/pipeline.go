// Package search runs the single-flight search lifecycle: validate, record the
// query, call the backend, render.
package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/backend"
	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/store"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// Searcher posts a search request to the backend.
type Searcher interface {
	ProcessQuery(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

// TabActivator switches the visible panel.
type TabActivator interface {
	Activate(ctx context.Context, tab domain.Tab) error
}

// Results is the last rendered result set.
type Results struct {
	Query    string
	Response *domain.SearchResponse
}

// Result returns the card at index.
func (r Results) Result(index int) (domain.SearchResult, error) {
	if r.Response == nil || index < 0 || index >= len(r.Response.Results) {
		return domain.SearchResult{}, domain.ErrResultNotFound
	}
	return r.Response.Results[index], nil
}

// Pipeline admits at most one search at a time. A second Submit while one is
// outstanding is rejected, not queued.
type Pipeline struct {
	client   Searcher
	profile  *store.Profile
	tabs     TabActivator
	renderer ui.Renderer
	logger   zerolog.Logger
	now      func() time.Time

	inFlight   atomic.Bool
	generation atomic.Uint64

	mu   sync.RWMutex
	last Results
}

// NewPipeline creates a Pipeline.
func NewPipeline(client Searcher, profile *store.Profile, tabs TabActivator, renderer ui.Renderer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		client:   client,
		profile:  profile,
		tabs:     tabs,
		renderer: renderer,
		logger:   logger.With().Str("component", "search").Logger(),
		now:      time.Now,
	}
}

// InFlight reports whether a search is outstanding.
func (p *Pipeline) InFlight() bool {
	return p.inFlight.Load()
}

// LastResults returns the most recently rendered result set.
func (p *Pipeline) LastResults() Results {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Invalidate makes any outstanding response stale so it is never rendered.
func (p *Pipeline) Invalidate() {
	p.generation.Add(1)
}

// Submit validates query, records it in history and renders the backend's
// results. Blank queries fail before any side effect.
func (p *Pipeline) Submit(ctx context.Context, query string, useAI *bool) (*domain.SearchResponse, error) {
	q, err := domain.NormalizeQuery(query)
	if err != nil {
		p.renderer.Notify(ui.LevelError, err.Error())
		return nil, err
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug().Str("query", q).Msg("search rejected, another is in flight")
		return nil, domain.ErrSearchInFlight
	}
	gen := p.generation.Add(1)
	p.renderer.SetSearchBusy(true, ui.SearchLabelBusy)
	defer func() {
		p.inFlight.Store(false)
		p.renderer.SetSearchBusy(false, ui.SearchLabelIdle)
	}()

	ctx, span := telemetry.StartSpan(ctx, "search.submit", telemetry.SpanAttributes{
		Endpoint:   backend.PathProcessQuery,
		Generation: gen,
		Operation:  "search",
	})
	defer span.End()
	telemetry.AddBreadcrumb(ctx, telemetry.CategorySearch, q)

	if _, err := p.profile.RecordQuery(ctx, q, p.now()); err != nil {
		p.logger.Warn().Err(err).Msg("failed to record query in history")
	}

	if err := p.tabs.Activate(ctx, domain.TabResults); err != nil {
		p.logger.Warn().Err(err).Msg("failed to activate results tab")
	}
	p.renderer.RenderLoading()

	req, err := domain.NewSearchRequest(q, p.profile.Photos.Load(ctx), useAI)
	if err != nil {
		return nil, err
	}

	start := p.now()
	resp, err := p.client.ProcessQuery(ctx, req)
	logger := p.logger.With().Str("query", q).Uint64("generation", gen).Dur("duration", p.now().Sub(start)).Logger()

	if gen != p.generation.Load() {
		logger.Debug().Msg("discarding stale search response")
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	if err != nil {
		span.SetError(err)
		logger.Warn().Err(err).Msg("search failed")
		p.setLast(Results{Query: q})
		p.renderer.RenderResults(ui.ResultsView{Query: q, Cards: []ui.Card{}})
		p.renderer.Notify(ui.LevelError, ui.MsgSearchFailed)
		return nil, err
	}

	span.SetStatus(sentry.SpanStatusOK)
	logger.Info().Int("results", len(resp.Results)).Msg("search completed")
	p.setLast(Results{Query: q, Response: resp})
	p.renderer.RenderResults(ui.NewResultsView(q, resp))
	if len(resp.Results) > 0 {
		p.renderer.Notify(ui.LevelSuccess, ui.MsgSearchDone)
	}
	return resp, nil
}

func (p *Pipeline) setLast(r Results) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = r
}
