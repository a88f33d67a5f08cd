package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrMisaligned is returned when responses and ground truths differ in length.
var ErrMisaligned = errors.New("responses and ground truths are not aligned")

// FuzzyEvaluator scores retrieved chunk texts against free-text answer spans
// using longest-common-substring overlap on cumulative prefixes.
type FuzzyEvaluator struct {
	// Workers bounds concurrent question scoring. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

type questionOutcome struct {
	scores   RankScores
	ap       float64
	scorable bool
}

// Evaluate scores responses[i] against groundTruths[i]. Records with no
// short or long answers are excluded from every aggregate.
func (e *FuzzyEvaluator) Evaluate(ctx context.Context, responses [][]string, groundTruths []ReferenceRecord) (*FuzzyResult, error) {
	if len(responses) != len(groundTruths) {
		return nil, fmt.Errorf("%w: %d responses, %d ground truths", ErrMisaligned, len(responses), len(groundTruths))
	}
	logger := loggerOrDiscard(e.Logger)

	outcomes := make([]questionOutcome, len(groundTruths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i := range groundTruths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores, ok := ScoreQuestion(responses[i], groundTruths[i])
			if !ok {
				logger.Debug("record has no answers", slog.String("id", groundTruths[i].ID))
				return nil
			}
			outcomes[i] = questionOutcome{scores: scores, ap: MAPMetric(scores), scorable: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fuzzy evaluation: %w", err)
	}

	result := aggregateFuzzy(outcomes)
	logger.Info("fuzzy evaluation complete",
		slog.Int("questions", len(groundTruths)),
		slog.Int("scorable", len(result.AllRecall)),
		slog.Float64("mean_map_metric", result.MeanMAPMetric))
	return result, nil
}

func (e *FuzzyEvaluator) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ScoreQuestion computes the score at each cumulative depth of chunks. It
// reports false when the record has neither short nor long answers.
func ScoreQuestion(chunks []string, record ReferenceRecord) (RankScores, bool) {
	answers, useMax := record.ShortAnswers, true
	if len(answers) == 0 {
		answers, useMax = record.LongAnswers, false
	}
	if len(answers) == 0 {
		return nil, false
	}

	scores := make(RankScores, 0, len(chunks))
	var cumulative strings.Builder
	for _, chunk := range chunks {
		cumulative.WriteString(chunk)
		text := cumulative.String()
		if useMax {
			scores = append(scores, maxRatio(text, answers))
		} else {
			scores = append(scores, meanRatio(text, answers))
		}
	}
	return scores, true
}

// MAPMetric treats scores[k-1] as recall at k and averages recall_k / k over
// all depths. It is a proxy, not the standard IR average precision.
func MAPMetric(scores RankScores) float64 {
	precisions := make([]float64, len(scores))
	for i, recall := range scores {
		precisions[i] = recall / float64(i+1)
	}
	return Mean(precisions)
}

func maxRatio(text string, answers []string) float64 {
	best := 0.0
	for _, a := range answers {
		best = max(best, LCSRatio(text, a))
	}
	return best
}

func meanRatio(text string, answers []string) float64 {
	ratios := make([]float64, len(answers))
	for i, a := range answers {
		ratios[i] = LCSRatio(text, a)
	}
	return Mean(ratios)
}

// aggregateFuzzy averages each depth over the questions that reached it.
func aggregateFuzzy(outcomes []questionOutcome) *FuzzyResult {
	result := &FuzzyResult{AllRecall: []RankScores{}, MeanRecall: RankScores{}}
	var sums []float64
	var counts []int
	var aps []float64

	for _, o := range outcomes {
		if !o.scorable {
			continue
		}
		result.AllRecall = append(result.AllRecall, o.scores)
		aps = append(aps, o.ap)
		for i, v := range o.scores {
			if i == len(sums) {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[i] += v
			counts[i]++
		}
	}

	for i := range sums {
		result.MeanRecall = append(result.MeanRecall, sums[i]/float64(counts[i]))
	}
	result.MeanMAPMetric = Mean(aps)
	return result
}
