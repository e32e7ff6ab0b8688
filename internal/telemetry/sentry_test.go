package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	flush, err := Init(Config{}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, flush)
	assert.NotPanics(t, flush)
}

func TestSpan_NilInnerIsSafe(t *testing.T) {
	s := &Span{}
	assert.NotPanics(t, func() {
		s.SetStatus(sentry.SpanStatusOK)
		s.SetError(errors.New("boom"))
		s.End()
	})
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "search.process_query", SpanAttributes{
		Endpoint:   "/process_query",
		Generation: 3,
	})
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	_, child := StartSpan(ctx, "child", SpanAttributes{Tab: "results"})
	assert.NotPanics(t, func() {
		child.SetError(domain.NewRequestError("/process_query", errors.New("down")))
		child.End()
		span.End()
	})
}

func TestCaptureError_SkipsUserErrors(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureError(context.Background(), nil)
		CaptureError(context.Background(), domain.ErrEmptyQuery)
		CaptureError(context.Background(), domain.ErrCameraUnavailable)
		CaptureError(context.Background(), errors.New("unexpected"))
	})
}

func TestAddBreadcrumb(t *testing.T) {
	assert.NotPanics(t, func() {
		AddBreadcrumb(context.Background(), CategoryTab, "activated favorites")
	})
}
