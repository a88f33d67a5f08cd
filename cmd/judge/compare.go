package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/eval"
)

var compareGroundTruth string

var compareCmd = &cobra.Command{
	Use:   "compare NAME=FILE NAME=FILE...",
	Short: "Compare retrieval runs side by side",
	Long: `Evaluate several exact-match submissions against one ground truth and
print their metrics side by side. With two runs a delta column shows the
second minus the first.

Examples:
  judge compare baseline=without_reranker.json reranked=with_reranker.json
  judge compare --ground-truth eval.json --json a=a.json b=b.json c=c.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareGroundTruth, "ground-truth", "g", "", "ground-truth file or URL (default: dataset.source, then the hosted dataset)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	names := make([]string, len(args))
	files := make([]string, len(args))
	seen := make(map[string]bool, len(args))
	for i, arg := range args {
		name, file, err := parseRunArg(arg)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate run name %q", name)
		}
		seen[name] = true
		names[i], files[i] = name, file
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	j, err := a.groundTruth(ctx, compareGroundTruth)
	if err != nil {
		return err
	}

	submissions := make([]*eval.ResultFormat, len(files))
	for i, file := range files {
		if submissions[i], err = a.loader.Load(ctx, file); err != nil {
			return fmt.Errorf("failed to load %s: %w", names[i], err)
		}
	}

	runs, err := j.Compare(names, submissions)
	if err != nil {
		return err
	}
	return a.print(runs, func() string {
		return eval.FormatComparison(runs)
	})
}

// parseRunArg splits NAME=FILE. A bare FILE is named after itself.
func parseRunArg(arg string) (name, file string, err error) {
	name, file, ok := strings.Cut(arg, "=")
	if !ok {
		if arg == "" {
			return "", "", fmt.Errorf("empty run argument")
		}
		return arg, arg, nil
	}
	if name == "" || file == "" {
		return "", "", fmt.Errorf("invalid run %q, want NAME=FILE", arg)
	}
	return name, file, nil
}
