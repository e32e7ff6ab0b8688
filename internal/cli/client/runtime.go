package client

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/config"
	"github.com/cloo-solutions/sentisearch/internal/logging"
	"github.com/cloo-solutions/sentisearch/internal/session"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

// runtime is everything a command needs for one invocation.
type runtime struct {
	ctx        context.Context
	cfg        *config.Config
	logger     zerolog.Logger
	session    *session.Session
	renderer   ui.Renderer
	out        io.Writer
	outputJSON bool

	flushTelemetry func()
}

// rendererFunc picks the renderer for a command. The default prints to the
// terminal unless --output asks for JSON.
type rendererFunc func(cfg *config.Config, out io.Writer, outputJSON bool) ui.Renderer

func defaultRenderer(cfg *config.Config, out io.Writer, outputJSON bool) ui.Renderer {
	if outputJSON {
		return ui.NewSnapshot(cfg.NotifyTTL)
	}
	return ui.NewTerminal(out)
}

func openRuntime(cmd *cobra.Command, pick rendererFunc, opts ...session.Option) (*runtime, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	logger := logging.Setup(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat, Out: cmd.ErrOrStderr()})

	flush, err := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cmd.Root().Version,
		Debug:       cfg.Debug,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		flush = func() {}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if pick == nil {
		pick = defaultRenderer
	}
	out := cmd.OutOrStdout()
	renderer := pick(cfg, out, outputJSON)

	sess, err := session.Open(ctx, cfg, renderer, logger, opts...)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return &runtime{
		ctx:            ctx,
		cfg:            cfg,
		logger:         logger,
		session:        sess,
		renderer:       renderer,
		out:            out,
		outputJSON:     outputJSON,
		flushTelemetry: flush,
	}, nil
}

func (r *runtime) Close() {
	if err := r.session.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to close session")
	}
	r.flushTelemetry()
}

// printJSON writes v indented, matching --output.
func (r *runtime) printJSON(v any) error {
	return writeJSON(r.out, v)
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}
