package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"trollmod-model/simulation"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter grid several times per combination",
		Long: `Run every combination of the swept parameters 'iterations' times for
'max_steps' ticks. Each run records the final and mean value of every
model reporter in <out>/<unique_name>/results.db. Combinations the model
rejects (for example percent_trolls + percent_mods > 1) are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _ := cmd.Flags().GetString("config")
			out, _ := cmd.Flags().GetString("out")
			reporter, _ := cmd.Flags().GetString("reporter")
			noProgress, _ := cmd.Flags().GetBool("no-progress")
			jsonOut, _ := cmd.Flags().GetBool("json")

			metadata, err := simulation.LoadSweepMetadata(config)
			if err != nil {
				return fmt.Errorf("load sweep: %w", err)
			}
			if reporter != "" {
				metadata.Reporter = reporter
			}

			sweep := simulation.NewSweep(out, metadata)
			sweep.ShowProgress = !noProgress

			records, err := sweep.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run sweep: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			return printSummary(cmd.OutOrStdout(), metadata, records, sweep.Skipped)
		},
	}

	cmd.Flags().StringP("out", "o", "./run", "Output base directory, empty to skip the result db")
	cmd.Flags().String("reporter", "", "Model reporter to summarise")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")

	return cmd
}

func printSummary(w io.Writer, metadata *simulation.SweepMetadata, records []*simulation.RunRecord, skipped int) error {
	fmt.Fprintf(w, "%s: %d runs, %d skipped\n", metadata.UniqueName, len(records), skipped)
	if len(records) == 0 {
		return nil
	}

	known := sortedKeys(records[0].Final)
	reporter := metadata.Reporter
	if reporter == "" && len(known) > 0 {
		reporter = known[0]
	}
	if _, ok := records[0].Final[reporter]; !ok {
		return fmt.Errorf("unknown reporter %q (valid: %s)", reporter, strings.Join(known, ", "))
	}

	fmt.Fprintf(w, "reporter: %s\n", reporter)
	for _, s := range simulation.Summarize(records, reporter) {
		vars := make([]string, 0, len(s.Variables))
		for _, name := range sortedKeys(s.Variables) {
			vars = append(vars, fmt.Sprintf("%s=%g", name, s.Variables[name]))
		}
		fmt.Fprintf(w, "%-48s runs=%-3d final=%.4f±%.4f mean=%.4f\n",
			strings.Join(vars, " "), s.Runs, s.FinalMean, s.FinalStdDev, s.MeanMean)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
