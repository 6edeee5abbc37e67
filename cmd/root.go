// Package cmd defines and implements the CLI commands for the
// orgharvest executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/config"
	"github.com/athenaworks/orgharvest/internal/logging"
	"github.com/athenaworks/orgharvest/internal/metrics"
)

var cfgFile string

// runtimeKeyType is the key for storing the runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime bundles the services every subcommand needs.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRuntime is a variable so tests can inject a canned runtime.
var newRuntime = func() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgharvest",
		Short: "Harvest organization records and their careers pages",
		Long: `orgharvest collects organization records (name, website,
description) from configured sources - paginated HTML directories, CSV
and JSON feeds, and company-directory listings - then enriches each
record with a best-guess careers page URL. All network access respects
robots.txt and a shared rate limit.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			metrics.Init()
			ctx := context.WithValue(cmd.Context(), runtimeKey, rt)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*runtime); ok && rt != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON/YAML)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newEnrichCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "orgharvest: %v\n", err)
		os.Exit(1)
	}
}
