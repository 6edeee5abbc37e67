package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/fetch"
	"github.com/athenaworks/orgharvest/internal/harvest"
	"github.com/athenaworks/orgharvest/internal/metrics"
	"github.com/athenaworks/orgharvest/internal/output"
)

type harvestFlags struct {
	output      string
	csvOutput   string
	max         int
	noEnrich    bool
	metricsAddr string
}

func newHarvestCmd() *cobra.Command {
	flags := &harvestFlags{}
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest all configured sources",
		Long: `Extracts organization records from every source in the
configuration, deduplicates them by (name, website), optionally looks
up each organization's careers page, and writes the result as
newline-delimited JSON plus an optional CSV projection.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHarvest(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.output, "output", "data/orgs.jsonl", "output JSONL path")
	cmd.Flags().StringVar(&flags.csvOutput, "csv-output", "", "optional CSV output path")
	cmd.Flags().IntVar(&flags.max, "max", 0, "max records to emit (0 = no limit)")
	cmd.Flags().BoolVar(&flags.noEnrich, "no-enrich", false, "skip careers page enrichment")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runHarvest(cmd *cobra.Command, flags *harvestFlags) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := rt.logger.With(zap.String("run_id", runID))

	metricsAddr := flags.metricsAddr
	if metricsAddr == "" {
		metricsAddr = rt.cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		srv := metrics.Serve(metricsAddr, nil)
		defer srv.Close()
		logger.Info("metrics listener started", zap.String("addr", metricsAddr))
	}

	fetcher := fetch.New(fetch.Config{
		UserAgent:    rt.cfg.UserAgent,
		Timeout:      rt.cfg.Timeout(),
		RateLimit:    rt.cfg.RateLimit(),
		StrictRobots: rt.cfg.StrictRobots,
	}, logger)

	harvester := harvest.New(fetcher, logger)
	records := harvester.Run(cmd.Context(), rt.cfg.Sources, harvest.Options{
		Limit:         flags.max,
		EnrichCareers: rt.cfg.EnrichCareers && !flags.noEnrich,
	})

	if flags.max > 0 && len(records) > flags.max {
		records = records[:flags.max]
	}

	if err := output.WriteJSONL(flags.output, records); err != nil {
		return fmt.Errorf("write jsonl: %w", err)
	}
	logger.Info("harvest complete",
		zap.Int("records", len(records)),
		zap.String("output", flags.output))

	if flags.csvOutput != "" {
		if err := output.WriteCSV(flags.csvOutput, records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("csv written", zap.String("output", flags.csvOutput))
	}
	return nil
}
