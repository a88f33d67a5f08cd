package eval_test

import (
	"testing"

	"github.com/QuivrHQ/Judge/eval"
)

func TestExactMatch_PartialHit(t *testing.T) {
	gt := []eval.Question{{Question: "Q1", ChunkIDs: []string{"1", "2"}}}
	sub := []eval.Question{{Question: "Q1", ChunkIDs: []string{"2", "3"}}}

	var e eval.ExactMatchEvaluator
	got := e.Evaluate(gt, sub)

	if !approxEqual(got.MeanRecall, 0.5, 0.001) {
		t.Errorf("MeanRecall = %f, want 0.5", got.MeanRecall)
	}
	if !approxEqual(got.MeanAveragePrecision, 0.5, 0.001) {
		t.Errorf("MeanAveragePrecision = %f, want 0.5", got.MeanAveragePrecision)
	}
}

func TestExactMatch_EmptyGroundTruth(t *testing.T) {
	gt := []eval.Question{{Question: "Q1", ChunkIDs: []string{}}}
	sub := []eval.Question{{Question: "Q1", ChunkIDs: []string{"x"}}}

	var e eval.ExactMatchEvaluator
	got := e.Evaluate(gt, sub)

	if got.MeanRecall != 0 || got.MeanAveragePrecision != 0 {
		t.Errorf("got %+v, want zeros", got)
	}
}

func TestExactMatch_NoMatchedQuestions(t *testing.T) {
	gt := []eval.Question{{Question: "Q1", ChunkIDs: []string{"1"}}}
	sub := []eval.Question{{Question: "q1", ChunkIDs: []string{"1"}}}

	var e eval.ExactMatchEvaluator
	report := e.EvaluateDetailed(gt, sub)

	if report.Matched != 0 || report.Skipped != 1 {
		t.Errorf("matched=%d skipped=%d, want 0 and 1", report.Matched, report.Skipped)
	}
	if report.MeanRecall != 0 || report.MeanAveragePrecision != 0 {
		t.Errorf("got %+v, want zeros", report.ExactResult)
	}
}

func TestExactMatch_UnmatchedShrinksDenominator(t *testing.T) {
	gt := []eval.Question{
		{Question: "Q1", ChunkIDs: []string{"1"}},
		{Question: "Q2", ChunkIDs: []string{"2"}},
		{Question: "Q3", ChunkIDs: []string{"3"}},
	}
	sub := []eval.Question{
		{Question: "Q1", ChunkIDs: []string{"1"}},
		{Question: "Q2", ChunkIDs: []string{"x"}},
	}

	var e eval.ExactMatchEvaluator
	report := e.EvaluateDetailed(gt, sub)

	if report.Matched != 2 || report.Skipped != 1 {
		t.Fatalf("matched=%d skipped=%d, want 2 and 1", report.Matched, report.Skipped)
	}
	// (1 + 0) / 2, not (1 + 0 + 0) / 3
	if !approxEqual(report.MeanRecall, 0.5, 0.001) {
		t.Errorf("MeanRecall = %f, want 0.5", report.MeanRecall)
	}
	if !approxEqual(report.MeanAveragePrecision, 0.5, 0.001) {
		t.Errorf("MeanAveragePrecision = %f, want 0.5", report.MeanAveragePrecision)
	}
	if len(report.Questions) != 2 || report.Questions[0].Question != "Q1" {
		t.Errorf("unexpected per-question rows: %+v", report.Questions)
	}
}

func TestExactMatch_OrderIndependent(t *testing.T) {
	gt := []eval.Question{
		{Question: "A", ChunkIDs: []string{"1", "2"}},
		{Question: "B", ChunkIDs: []string{"3"}},
		{Question: "C", ChunkIDs: []string{"4", "5", "6"}},
	}
	sub := []eval.Question{
		{Question: "A", ChunkIDs: []string{"2", "9", "1"}},
		{Question: "B", ChunkIDs: []string{"8", "3"}},
		{Question: "C", ChunkIDs: []string{"6"}},
	}
	reversed := func(qs []eval.Question) []eval.Question {
		out := make([]eval.Question, len(qs))
		for i, q := range qs {
			out[len(qs)-1-i] = q
		}
		return out
	}

	var e eval.ExactMatchEvaluator
	a := e.Evaluate(gt, sub)
	b := e.Evaluate(reversed(gt), reversed(sub))
	c := e.Evaluate(reversed(gt), sub)

	for _, other := range []eval.ExactResult{b, c} {
		if !approxEqual(a.MeanRecall, other.MeanRecall, 1e-9) ||
			!approxEqual(a.MeanAveragePrecision, other.MeanAveragePrecision, 1e-9) {
			t.Errorf("permutation changed result: %+v vs %+v", a, other)
		}
	}
}

func TestExactMatch_CaseSensitiveMatching(t *testing.T) {
	gt := []eval.Question{
		{Question: "What is Go?", ChunkIDs: []string{"1"}},
		{Question: "what is go?", ChunkIDs: []string{"2"}},
	}
	sub := []eval.Question{{Question: "what is go?", ChunkIDs: []string{"2"}}}

	var e eval.ExactMatchEvaluator
	report := e.EvaluateDetailed(gt, sub)

	if report.Matched != 1 {
		t.Fatalf("Matched = %d, want 1", report.Matched)
	}
	if report.MeanRecall != 1 {
		t.Errorf("MeanRecall = %f, want 1", report.MeanRecall)
	}
}

func TestExactMatch_LaterDuplicateWins(t *testing.T) {
	gt := []eval.Question{
		{Question: "Q", ChunkIDs: []string{"old"}},
		{Question: "Q", ChunkIDs: []string{"new"}},
	}
	sub := []eval.Question{{Question: "Q", ChunkIDs: []string{"new"}}}

	var e eval.ExactMatchEvaluator
	report := e.EvaluateDetailed(gt, sub)

	if report.Matched != 1 || report.MeanRecall != 1 {
		t.Errorf("got matched=%d recall=%f, want 1 and 1", report.Matched, report.MeanRecall)
	}
}

func TestExactMatch_DetailedDiagnostics(t *testing.T) {
	gt := []eval.Question{{Question: "Q", ChunkIDs: []string{"a", "b"}}}
	sub := []eval.Question{{Question: "Q", ChunkIDs: []string{"x", "a", "b"}}}

	e := eval.ExactMatchEvaluator{K: 2}
	report := e.EvaluateDetailed(gt, sub)

	if report.K != 2 {
		t.Errorf("K = %d, want 2", report.K)
	}
	q := report.Questions[0]
	if !approxEqual(q.PrecisionAtK, 0.5, 0.001) {
		t.Errorf("PrecisionAtK = %f, want 0.5", q.PrecisionAtK)
	}
	if !approxEqual(q.MRRScore, 0.5, 0.001) {
		t.Errorf("MRR = %f, want 0.5", q.MRRScore)
	}
	// (1/2 + 2/3) / 2
	if !approxEqual(q.AveragePrecision, (0.5+2.0/3)/2, 0.001) {
		t.Errorf("AveragePrecision = %f", q.AveragePrecision)
	}
}
