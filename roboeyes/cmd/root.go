// Package cmd provides the command-line interface for roboeyes.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	configPath string
	envFiles   []string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "roboeyes",
	Short: "roboeyes drives a pair of round-display robot eyes.",
	Long: `roboeyes drives a pair of round-display robot eyes. It blinks them ` +
		`on a schedule, moves their gaze and switches their assets, either ` +
		`in real time (run, preview) or on a simulated timeline (simulate).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default roboeyes.yaml if present)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil,
		".env files to load (default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"also log suppressed blinks, resyncs and missing eyes")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exit handlers, such as trace flushing, run before the
// process exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
