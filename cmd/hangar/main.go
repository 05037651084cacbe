package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "hangar.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hangar",
		Short:         "Hangar: virtual airline flight report engine",
		Long:          "Hangar manages pilot reports from prefile to acceptance, keeping pilot and fleet statistics in step.",
		SilenceUsage:  true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPirepCmd())
	cmd.AddCommand(newBidCmd())
	cmd.AddCommand(newFleetCmd())
	cmd.AddCommand(newPilotCmd())
	cmd.AddCommand(newSettingsCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hangar %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
