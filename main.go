package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trollmod",
		Short: "Troll and moderator dynamics on scale-free networks",
		Long: `trollmod simulates adversarial agents spreading harm or misinformation
over a social network, and moderators removing harm or labeling content.

Runs are configured by a JSON or YAML file; TROLLMOD_SEED,
TROLLMOD_TOPOLOGY_SEED and TROLLMOD_MAX_STEPS override it, and are also
read from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Scenario or sweep file (.json, .yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file with overrides")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newSweepCmd(),
		newTopologyCmd(),
	)
	return rootCmd
}
