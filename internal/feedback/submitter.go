// Package feedback sends relevance judgments on rendered results.
package feedback

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/backend"
	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// Evaluator posts a judgment to the backend.
type Evaluator interface {
	EvaluateResult(ctx context.Context, event domain.FeedbackEvent) error
}

// Submitter sends each judgment once. Judgments are neither retried nor
// stored, and never change the rendered results.
type Submitter struct {
	evaluator Evaluator
	renderer  ui.Renderer
	logger    zerolog.Logger
}

func NewSubmitter(evaluator Evaluator, renderer ui.Renderer, logger zerolog.Logger) *Submitter {
	return &Submitter{
		evaluator: evaluator,
		renderer:  renderer,
		logger:    logger.With().Str("component", "feedback").Logger(),
	}
}

// Submit reports whether the image at url met the expected emotion.
func (s *Submitter) Submit(ctx context.Context, url, expectedEmotion string, met bool) error {
	event := domain.FeedbackEvent{URL: url, ExpectedEmotion: expectedEmotion, MetExpectation: met}
	if err := domain.ValidateFeedback(event); err != nil {
		s.renderer.Notify(ui.LevelError, err.Error())
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "feedback.submit", telemetry.SpanAttributes{Endpoint: backend.PathEvaluateResult})
	defer span.End()
	telemetry.AddBreadcrumb(ctx, telemetry.CategoryFeedback, url)

	if err := s.evaluator.EvaluateResult(ctx, event); err != nil {
		span.SetError(err)
		s.logger.Warn().Err(err).Str("url", url).Msg("feedback not delivered")
		s.renderer.Notify(ui.LevelError, ui.MsgFeedbackFailed)
		return err
	}

	s.logger.Info().Str("url", url).Str("expected", expectedEmotion).Bool("met", met).Msg("feedback sent")
	s.renderer.Notify(ui.LevelSuccess, ui.MsgFeedbackSent)
	return nil
}
