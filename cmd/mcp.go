package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/internal/browser"
	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/interp"
	"github.com/xkilldash9x/marketprobe/internal/mcpserver"
	"github.com/xkilldash9x/marketprobe/internal/observability"
)

// mcpCmd serves the agent-tool protocol over stdio. One session lives for the
// whole server lifetime and is shared, serialized, across tool calls.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the agent-tool protocol on stdio",
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

		sess, err := manager.NewSession(ctx)
		if err != nil {
			return err
		}

		st, cleanup, err := newStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		var recorder mcpserver.Recorder
		if st != nil {
			recorder = st
		}

		return mcpserver.New(logger, sess, interp.New(logger), recorder).Run(ctx)
	},
}
