package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/eval"
	"github.com/QuivrHQ/Judge/internal/config"
)

var (
	evalSubmitted   string
	evalGroundTruth string
	evalMode        string
	evalName        string
	evalDetailed    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a retrieval run against the ground truth",
	Long: `Score a retrieval run.

In exact mode (the default) the submission is a {chunks, questions} file
whose chunk_ids lists are compared with the ground truth. In fuzzy mode
--references and --responses are required, as for "judge fuzzy".

Examples:
  judge evaluate --submitted run.json
  judge evaluate --submitted run.json --ground-truth eval.yaml --detailed
  judge evaluate --mode fuzzy --references refs.json --responses responses.json`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalSubmitted, "submitted", "s", "", "submission file or URL")
	evaluateCmd.Flags().StringVarP(&evalGroundTruth, "ground-truth", "g", "", "ground-truth file or URL (default: dataset.source, then the hosted dataset)")
	evaluateCmd.Flags().StringVarP(&evalMode, "mode", "m", "", "exact or fuzzy (default: eval.mode)")
	evaluateCmd.Flags().StringVar(&evalName, "name", "submission", "run name shown in reports")
	evaluateCmd.Flags().BoolVar(&evalDetailed, "detailed", false, "include per-question scores")
	evaluateCmd.Flags().StringVar(&fuzzyReferences, "references", "", "fuzzy mode: reference records file")
	evaluateCmd.Flags().StringVar(&fuzzyResponses, "responses", "", "fuzzy mode: responses file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	mode := evalMode
	if mode == "" {
		mode = a.cfg.Eval.Mode
	}
	switch mode {
	case config.ModeExact:
	case config.ModeFuzzy:
		return a.runFuzzy(cmd, evalName)
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", mode, config.ModeExact, config.ModeFuzzy)
	}

	if evalSubmitted == "" {
		return fmt.Errorf("--submitted is required in exact mode")
	}

	ctx := cmd.Context()
	j, err := a.groundTruth(ctx, evalGroundTruth)
	if err != nil {
		return err
	}
	submitted, err := a.loader.Load(ctx, evalSubmitted)
	if err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}

	report, err := j.EvaluateDetailed(submitted)
	if err != nil {
		return err
	}
	run := eval.NewRun(evalName)
	run.Exact = &report.ExactResult

	if evalDetailed {
		return a.print(struct {
			eval.Run
			Report *eval.ExactReport `json:"report"`
		}{run, report}, func() string {
			return eval.FormatComparison([]eval.Run{run}) + "\n" + formatQuestionScores(report)
		})
	}
	return a.print(run, func() string {
		return eval.FormatComparison([]eval.Run{run})
	})
}

func formatQuestionScores(report *eval.ExactReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Per question (%d scored, %d not submitted):\n", report.Matched, report.Skipped)
	fmt.Fprintf(&b, "%-8s| %-8s| %-8s| %-8s| %-8s| %s\n",
		"Recall", "AP", fmt.Sprintf("P@%d", report.K), fmt.Sprintf("nDCG@%d", report.K), "MRR", "Question")
	for _, q := range report.Questions {
		fmt.Fprintf(&b, "%-8.3f| %-8.3f| %-8.3f| %-8.3f| %-8.3f| %s\n",
			q.Recall, q.AveragePrecision, q.PrecisionAtK, q.NDCGAtK, q.MRRScore, truncate(q.Question, 60))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
