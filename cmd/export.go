package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/output"
)

func newExportCmd() *cobra.Command {
	var input string
	var csvOutput string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the CSV projection from a JSONL file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			records, err := output.ReadJSONL(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if err := output.WriteCSV(csvOutput, records); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			rt.logger.Info("csv written",
				zap.Int("records", len(records)),
				zap.String("output", csvOutput))
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "data/orgs.jsonl", "input JSONL path")
	cmd.Flags().StringVar(&csvOutput, "csv-output", "data/orgs.csv", "CSV output path")
	return cmd
}
