package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/config"
	"github.com/cloo-solutions/sentisearch/internal/jobs"
	"github.com/cloo-solutions/sentisearch/internal/server"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

const (
	sweepInterval   = time.Second
	refreshInterval = 5 * time.Second
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over local HTTP",
		Long: `Hosts one session behind a JSON API on the loopback interface. The view
model is available at GET /view.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from SENTISEARCH_LISTEN_ADDR)")
	cmd.Flags().Bool("allow-remote", false, "Accept requests from other hosts")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	var snapshot *ui.Snapshot
	rt, err := openRuntime(cmd, func(cfg *config.Config, _ io.Writer, _ bool) ui.Renderer {
		snapshot = ui.NewSnapshot(cfg.NotifyTTL)
		return snapshot
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(rt.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := rt.cfg.ListenAddr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}
	allowRemote, _ := cmd.Flags().GetBool("allow-remote")

	sweeper := jobs.NewWorker("notification-sweeper", jobs.NewNotificationSweeper(snapshot, rt.logger), sweepInterval, rt.logger)
	refresher := jobs.NewWorker("store-refresher", jobs.NewStoreRefresher(rt.session.Store(), rt.logger), refreshInterval, rt.logger)
	go sweeper.Start(ctx)
	go refresher.Start(ctx)
	defer sweeper.Stop()
	defer refresher.Stop()

	go func() {
		if err := rt.session.Store().Watch(ctx); err != nil {
			rt.logger.Warn().Err(err).Msg("store watch stopped, relying on polling")
		}
	}()

	rt.session.Start(ctx)

	srv := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(server.RouterConfig{
			Session:     rt.session,
			View:        snapshot,
			Logger:      rt.logger,
			AllowRemote: allowRemote,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info().Str("addr", addr).Str("backend", rt.cfg.APIURL).Msg("serving session")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	rt.logger.Info().Msg("server exited")
	return nil
}
