package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/internal/browser"
	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/interp"
	"github.com/xkilldash9x/marketprobe/internal/observability"
	"github.com/xkilldash9x/marketprobe/internal/server"
)

// serveCmd starts the HTTP API. Each request runs on its own page session;
// the browser process is shared through the manager.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Get()
		logger := observability.GetLogger()

		manager := browser.NewManager(ctx, logger, &cfg.Browser)
		defer func() {
			if err := manager.Shutdown(context.Background()); err != nil {
				logger.Warn("Browser shutdown failed", zap.Error(err))
			}
		}()

		st, cleanup, err := newStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		var recorder server.Recorder
		if st != nil {
			recorder = st
		}

		srv := server.New(logger, &cfg.Server, &cfg.Task, manager, interp.New(logger), recorder)
		return srv.Run(ctx)
	},
}
