package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/fetch"
	"github.com/athenaworks/orgharvest/internal/harvest"
	"github.com/athenaworks/orgharvest/internal/output"
	"github.com/athenaworks/orgharvest/internal/progress"
)

type enrichFlags struct {
	input           string
	output          string
	csvOutput       string
	max             int
	start           int
	onlyMissing     bool
	onlyWithCareers bool
	resume          bool
	progressFile    string
}

func newEnrichCmd() *cobra.Command {
	flags := &enrichFlags{}
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill careers page URLs on an existing JSONL file",
		Long: `Reads previously harvested records and looks up a careers
page for each one that has a website. With --resume, the run continues
from the progress cursor and appends to the output file instead of
rewriting it, so interrupted runs pick up where they left off.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.input, "input", "data/orgs.jsonl", "input JSONL path")
	cmd.Flags().StringVar(&flags.output, "output", "data/orgs_with_careers.jsonl", "output JSONL path")
	cmd.Flags().StringVar(&flags.csvOutput, "csv-output", "", "optional CSV output path")
	cmd.Flags().IntVar(&flags.max, "max", 0, "max records to process (0 = all)")
	cmd.Flags().IntVar(&flags.start, "start", 0, "start index into the input")
	cmd.Flags().BoolVar(&flags.onlyMissing, "only-missing", false, "only fill missing careers_url")
	cmd.Flags().BoolVar(&flags.onlyWithCareers, "only-with-careers", false, "only write records that have a careers_url")
	cmd.Flags().BoolVar(&flags.resume, "resume", false, "resume from the progress file and append to the output")
	cmd.Flags().StringVar(&flags.progressFile, "progress-file", "data/enrich_progress.json", "progress file path")
	return cmd
}

func runEnrich(cmd *cobra.Command, flags *enrichFlags) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	logger := rt.logger.With(zap.String("run_id", uuid.NewString()))

	records, err := output.ReadJSONL(flags.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	startIndex := flags.start
	if flags.resume {
		startIndex = progress.Load(flags.progressFile)
	}
	if startIndex > len(records) {
		startIndex = len(records)
	}
	records = records[startIndex:]
	if flags.max > 0 && len(records) > flags.max {
		records = records[:flags.max]
	}

	fetcher := fetch.New(fetch.Config{
		UserAgent:    rt.cfg.UserAgent,
		Timeout:      rt.cfg.Timeout(),
		RateLimit:    rt.cfg.RateLimit(),
		StrictRobots: rt.cfg.StrictRobots,
	}, logger)

	processedCount := 0
	var processed []harvest.Record
	for _, rec := range records {
		switch {
		case rec.Website == "":
			rec.CareersURL = ""
		case flags.onlyMissing && rec.CareersURL != "":
			// keep as-is
		default:
			careersURL, _ := harvest.FindCareersURL(cmd.Context(), fetcher, rec.Website)
			rec.CareersURL = careersURL
		}
		processedCount++
		if flags.onlyWithCareers && rec.CareersURL == "" {
			continue
		}
		processed = append(processed, rec)
	}

	if flags.resume {
		if err := output.AppendJSONL(flags.output, processed); err != nil {
			return fmt.Errorf("append output: %w", err)
		}
		if err := progress.Save(flags.progressFile, startIndex+processedCount); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		logger.Info("appended records",
			zap.Int("records", len(processed)),
			zap.String("output", flags.output),
			zap.Int("next_index", startIndex+processedCount))
	} else {
		if err := output.WriteJSONL(flags.output, processed); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("wrote records",
			zap.Int("records", len(processed)),
			zap.String("output", flags.output))
	}

	if flags.csvOutput != "" {
		all, err := output.ReadJSONL(flags.output)
		if err != nil {
			return fmt.Errorf("reread output: %w", err)
		}
		if err := output.WriteCSV(flags.csvOutput, all); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("csv written", zap.String("output", flags.csvOutput))
	}
	return nil
}
