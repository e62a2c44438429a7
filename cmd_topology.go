package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"trollmod-model/simulation"
	"trollmod-model/utils"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

func newTopologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Generate the configured network and print its degree statistics",
		Long: `Generate the network a scenario would use and optionally export it in
the networkx adjacency layout. The output format follows the file name:
.json, .msgpack or .msgpack.lz4.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _ := cmd.Flags().GetString("config")
			output, _ := cmd.Flags().GetString("output")
			jsonOut, _ := cmd.Flags().GetBool("json")

			metadata, err := simulation.LoadScenarioMetadata(config)
			if err != nil {
				return fmt.Errorf("load scenario: %w", err)
			}

			g, err := metadata.Params.BuildTopology()
			if err != nil {
				return fmt.Errorf("build topology: %w", err)
			}

			nodes := utils.SortedNodes(g)
			degrees := make([]float64, len(nodes))
			maxDegree := 0
			for i, id := range nodes {
				d := g.From(id).Len()
				degrees[i] = float64(d)
				maxDegree = max(maxDegree, d)
			}
			stats := map[string]any{
				"topology":    metadata.Topology,
				"nodes":       len(nodes),
				"edges":       len(utils.EdgeList(g)),
				"attachment":  metadata.Params.AttachmentCount(),
				"mean_degree": stat.Mean(degrees, nil),
				"max_degree":  maxDegree,
			}

			if output != "" {
				if err := exportGraph(output, utils.SerializeGraph(g)); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(w, "%s: %d nodes, %d edges, m=%d, mean degree %.3f, max degree %d\n",
				stats["topology"], stats["nodes"], stats["edges"], stats["attachment"],
				stats["mean_degree"], stats["max_degree"])
			return nil
		},
	}

	cmd.Flags().String("output", "", "Export file (.json, .msgpack, .msgpack.lz4)")

	return cmd
}

func exportGraph(output string, nx *utils.NetworkXGraph) error {
	if !strings.HasSuffix(output, ".json") {
		return utils.WriteMsgpackFile(output, nx)
	}
	data, err := json.MarshalIndent(nx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0644)
}
