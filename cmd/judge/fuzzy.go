package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/eval"
)

var (
	fuzzyReferences string
	fuzzyResponses  string
	fuzzyName       string
)

var fuzzyCmd = &cobra.Command{
	Use:   "fuzzy",
	Short: "Score retrieved chunk texts against answer spans",
	Long: `Score retrieved chunk texts with longest-common-substring overlap.

--responses is a JSON array holding, per question, the retrieved chunk texts
in rank order. --references is a JSON array of records with id, text,
question, long_answers and short_answers, aligned with the responses.

Examples:
  judge fuzzy --references refs.json --responses responses.json
  judge dataset references --out refs.json && judge fuzzy --references refs.json --responses run.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.runFuzzy(cmd, fuzzyName)
	},
}

func init() {
	fuzzyCmd.Flags().StringVarP(&fuzzyReferences, "references", "r", "", "reference records file or URL")
	fuzzyCmd.Flags().StringVarP(&fuzzyResponses, "responses", "p", "", "responses file or URL")
	fuzzyCmd.Flags().StringVar(&fuzzyName, "name", "submission", "run name shown in reports")
}

func (a *app) runFuzzy(cmd *cobra.Command, name string) error {
	if fuzzyReferences == "" || fuzzyResponses == "" {
		return fmt.Errorf("--references and --responses are required in fuzzy mode")
	}

	ctx := cmd.Context()
	references, err := a.loader.LoadReferences(ctx, fuzzyReferences)
	if err != nil {
		return fmt.Errorf("failed to load references: %w", err)
	}
	responses, err := a.loader.LoadResponses(ctx, fuzzyResponses)
	if err != nil {
		return fmt.Errorf("failed to load responses: %w", err)
	}

	e := eval.FuzzyEvaluator{Workers: a.cfg.Eval.Workers, Logger: a.logger}
	result, err := e.Evaluate(ctx, responses, references)
	if err != nil {
		return err
	}

	run := eval.NewRun(name)
	run.Fuzzy = result
	return a.print(run, func() string {
		return eval.FormatComparison([]eval.Run{run})
	})
}
