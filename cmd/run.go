package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/internal/browser"
	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/interp"
	"github.com/xkilldash9x/marketprobe/internal/observability"
	"github.com/xkilldash9x/marketprobe/internal/task"
)

// runCmd executes the built-in fixed extraction task once and prints the
// report as JSON.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fixed top-gainer extraction task once",
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

		plan := task.FixedPlan(cfg.Task.TargetURL)
		report, err := interp.New(logger).Execute(ctx, sess, plan)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		if report.Final == nil {
			return fmt.Errorf("extraction failed: %s", report.FirstError())
		}
		return nil
	},
}
