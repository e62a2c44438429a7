package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"slices"

	"trollmod-model/model"
	"trollmod-model/simulation"

	"github.com/spf13/cobra"
)

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := simulation.LoadEnvFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scenario to its step budget",
		Long: `Build the topology, place the agents and step the model until
max_simulation_step. Metadata, the graph, the final portrayal and the
reporter summary are written under <out>/<unique_name>. A finished
scenario is not rerun unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _ := cmd.Flags().GetString("config")
			out, _ := cmd.Flags().GetString("out")
			name, _ := cmd.Flags().GetString("name")
			steps, _ := cmd.Flags().GetInt("steps")
			verbose, _ := cmd.Flags().GetBool("verbose")
			force, _ := cmd.Flags().GetBool("force")
			compress, _ := cmd.Flags().GetBool("compress")
			noProgress, _ := cmd.Flags().GetBool("no-progress")
			jsonOut, _ := cmd.Flags().GetBool("json")

			metadata, err := simulation.LoadScenarioMetadata(config)
			if err != nil {
				return fmt.Errorf("load scenario: %w", err)
			}
			if name != "" {
				metadata.UniqueName = name
			}
			if cmd.Flags().Changed("steps") {
				metadata.MaxSimulationStep = steps
			}

			scenario := simulation.NewScenario(out, metadata)
			scenario.SetCompress(compress)
			scenario.ShowProgress = !noProgress
			if verbose {
				scenario.EventHook = logEventRecord
			}

			var result *simulation.RunResult
			if !force && scenario.IsFinished() {
				log.Printf("Scenario %s already finished, loading stored result", metadata.UniqueName)
				if result, err = scenario.LoadResult(); err != nil {
					return fmt.Errorf("load result: %w", err)
				}
			}

			if result == nil {
				if err := scenario.Init(); err != nil {
					return fmt.Errorf("init scenario: %w", err)
				}
				if err := scenario.StepTillEnd(cmd.Context()); err != nil {
					return fmt.Errorf("run scenario: %w", err)
				}
				result = scenario.Result()
			}

			return printResult(cmd.OutOrStdout(), metadata.UniqueName, result, jsonOut)
		},
	}

	cmd.Flags().StringP("out", "o", "./run", "Output base directory, empty to keep everything in memory")
	cmd.Flags().String("name", "", "Override the scenario unique name")
	cmd.Flags().Int("steps", 0, "Override max_simulation_step")
	cmd.Flags().BoolP("verbose", "v", false, "Log every agent event")
	cmd.Flags().Bool("force", false, "Rerun a finished scenario")
	cmd.Flags().Bool("compress", false, "Write lz4 compressed msgpack artifacts")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")

	return cmd
}

func logEventRecord(event *model.EventRecord) {
	log.Printf("step %d agent %d %s %+v", event.Step, event.AgentID, event.Type, event.Body)
}

func printResult(w io.Writer, name string, result *simulation.RunResult, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"unique_name": name,
			"result":      result,
		})
	}

	names := make([]string, 0, len(result.Final))
	for k := range result.Final {
		names = append(names, k)
	}
	slices.Sort(names)

	fmt.Fprintf(w, "%s: %d steps\n", name, result.Steps)
	fmt.Fprintf(w, "%-22s %12s %12s\n", "reporter", "final", "mean")
	for _, k := range names {
		fmt.Fprintf(w, "%-22s %12.4f %12.4f\n", k, result.Final[k], result.Mean[k])
	}
	return nil
}
