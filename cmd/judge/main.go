package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	logLevel   string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "judge",
		Short: "Judge - retrieval quality evaluation",
		Long: `Judge scores retrieval results against a ground-truth dataset.

Exact-match mode compares retrieved chunk ids with the annotated ones
(recall and average precision). Fuzzy mode compares retrieved chunk texts
with free-text answer spans using longest-common-substring overlap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ~/.judge/config.yaml, ./.judge/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(fuzzyCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func main() {
	if err := Execute(version); err != nil {
		os.Exit(1)
	}
}
