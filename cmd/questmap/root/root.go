// Package root holds the questmap commands: seeded, reproducible graph
// generation printed to the terminal.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "questmap",
	Short:         "Generate and inspect progression graphs",
	Long:          "questmap generates free-roam areas and world paths from a seed and prints them with their structural checks.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// NewRootCmd wires every subcommand onto the root command.
func NewRootCmd() *cobra.Command {
	rootCmd.ResetCommands()
	rootCmd.AddCommand(
		newAreaCmd(),
		newWorldCmd(),
		newWorldsCmd(),
	)
	return rootCmd
}
