// Package judge wires dataset loading to the evaluators.
package judge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/QuivrHQ/Judge/eval"
)

// Source loads a ground-truth dataset.
type Source interface {
	Load(ctx context.Context, source string) (*eval.ResultFormat, error)
}

// Options tunes the evaluators a Judge builds.
type Options struct {
	Workers int
	TopK    int
	Logger  *slog.Logger
}

// Judge holds one ground-truth dataset and evaluates submissions against it.
type Judge struct {
	data   *eval.ResultFormat
	opts   Options
	logger *slog.Logger
}

// New loads the dataset at source and returns a Judge for it.
func New(ctx context.Context, src Source, source string, opts Options) (*Judge, error) {
	data, err := src.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load ground truth: %w", err)
	}
	return FromData(data, opts)
}

// FromData wraps an already loaded dataset.
func FromData(data *eval.ResultFormat, opts Options) (*Judge, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ground truth: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("ground truth ready",
		slog.Int("questions", len(data.Questions)),
		slog.Int("chunks", len(data.Chunks)))
	return &Judge{data: data, opts: opts, logger: logger}, nil
}

// Data returns the ground-truth dataset.
func (j *Judge) Data() *eval.ResultFormat {
	return j.data
}

// Chunks returns the chunk corpus.
func (j *Judge) Chunks() map[string]string {
	return j.data.Chunks
}

// Chunk returns one chunk's text.
func (j *Judge) Chunk(id string) (string, bool) {
	text, ok := j.data.Chunks[id]
	return text, ok
}

// Questions returns the question texts in dataset order.
func (j *Judge) Questions() []string {
	out := make([]string, len(j.data.Questions))
	for i, q := range j.data.Questions {
		out[i] = q.Question
	}
	return out
}

// Evaluate scores an exact-match submission against the ground truth.
func (j *Judge) Evaluate(submitted *eval.ResultFormat) (eval.ExactResult, error) {
	report, err := j.EvaluateDetailed(submitted)
	if err != nil {
		return eval.ExactResult{}, err
	}
	return report.ExactResult, nil
}

// EvaluateDetailed is Evaluate with the per-question breakdown.
func (j *Judge) EvaluateDetailed(submitted *eval.ResultFormat) (*eval.ExactReport, error) {
	if err := submitted.Validate(); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}
	e := eval.ExactMatchEvaluator{K: j.opts.TopK, Logger: j.logger}
	return e.EvaluateDetailed(j.data.Questions, submitted.Questions), nil
}

// EvaluateFuzzy scores ordered chunk texts against answer spans.
func (j *Judge) EvaluateFuzzy(ctx context.Context, responses [][]string, references []eval.ReferenceRecord) (*eval.FuzzyResult, error) {
	e := eval.FuzzyEvaluator{Workers: j.opts.Workers, Logger: j.logger}
	return e.Evaluate(ctx, responses, references)
}

// Compare evaluates each named submission and returns one run per name, in order.
func (j *Judge) Compare(names []string, submissions []*eval.ResultFormat) ([]eval.Run, error) {
	if len(names) != len(submissions) {
		return nil, fmt.Errorf("%d names for %d submissions", len(names), len(submissions))
	}
	runs := make([]eval.Run, 0, len(names))
	for i, name := range names {
		result, err := j.Evaluate(submissions[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		run := eval.NewRun(name)
		run.Exact = &result
		runs = append(runs, run)
		j.logger.Info("run evaluated",
			slog.String("run", name),
			slog.String("run_id", run.ID),
			slog.Float64("mean_recall", result.MeanRecall),
			slog.Float64("mean_average_precision", result.MeanAveragePrecision))
	}
	return runs, nil
}
