// Package voice turns speech into a submitted search query.
package voice

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// Recognizer produces one final transcript per call.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Submitter runs a search for a query.
type Submitter interface {
	Submit(ctx context.Context, query string, useAI *bool) (*domain.SearchResponse, error)
}

// QueryField holds the text the user would edit before searching.
type QueryField interface {
	SetQuery(text string)
}

// Adapter bridges a Recognizer into the search pipeline.
type Adapter struct {
	recognizer Recognizer
	submitter  Submitter
	field      QueryField
	renderer   ui.Renderer
	logger     zerolog.Logger
	useAI      *bool

	listening atomic.Bool
}

// NewAdapter creates an Adapter. A nil recognizer means speech input is not
// available on this host.
func NewAdapter(recognizer Recognizer, submitter Submitter, field QueryField, renderer ui.Renderer, useAI *bool, logger zerolog.Logger) *Adapter {
	return &Adapter{
		recognizer: recognizer,
		submitter:  submitter,
		field:      field,
		renderer:   renderer,
		useAI:      useAI,
		logger:     logger.With().Str("component", "voice").Logger(),
	}
}

// Available reports whether a recognizer is configured.
func (a *Adapter) Available() bool {
	return a.recognizer != nil
}

// Listening reports whether a recognition is in progress.
func (a *Adapter) Listening() bool {
	return a.listening.Load()
}

// StartListening records one utterance, writes the transcript into the query
// field and submits it. A recognition error is notified and no search runs.
func (a *Adapter) StartListening(ctx context.Context) error {
	if a.recognizer == nil {
		a.renderer.Notify(ui.LevelError, domain.ErrSpeechUnavailable.Message)
		return domain.ErrSpeechUnavailable
	}
	if !a.listening.CompareAndSwap(false, true) {
		return domain.ErrAlreadyListening
	}

	telemetry.AddBreadcrumb(ctx, telemetry.CategoryVoice, "listening started")
	a.renderer.SetListening(true)
	text, err := a.recognizer.Recognize(ctx)
	a.listening.Store(false)
	a.renderer.SetListening(false)

	if err != nil {
		a.logger.Warn().Err(err).Msg("speech recognition failed")
		a.renderer.Notify(ui.LevelError, "Speech recognition error: "+err.Error())
		return fmt.Errorf("failed to recognize speech: %w", err)
	}

	text = strings.TrimSpace(text)
	a.logger.Debug().Str("transcript", text).Msg("speech recognized")
	a.field.SetQuery(text)

	_, err = a.submitter.Submit(ctx, text, a.useAI)
	return err
}
