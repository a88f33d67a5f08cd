package eval

import (
	"log/slog"
)

// DefaultDiagnosticK is the cutoff for the per-question @K diagnostics.
const DefaultDiagnosticK = 5

// ExactMatchEvaluator scores submissions whose ground truth is a discrete set
// of relevant chunk ids per question. The zero value is ready to use.
type ExactMatchEvaluator struct {
	// K is the cutoff for PrecisionAtK/NDCG in detailed reports. Zero means DefaultDiagnosticK.
	K      int
	Logger *slog.Logger
}

// QuestionScore holds per-question exact-match details.
type QuestionScore struct {
	Question         string   `json:"question"`
	RetrievedIDs     []string `json:"retrieved_ids"`
	RelevantIDs      []string `json:"relevant_ids"`
	Recall           float64  `json:"recall"`
	AveragePrecision float64  `json:"average_precision"`
	PrecisionAtK     float64  `json:"precision_at_k"`
	NDCGAtK          float64  `json:"ndcg_at_k"`
	MRRScore         float64  `json:"mrr"`
}

// ExactReport is ExactResult plus the per-question breakdown.
type ExactReport struct {
	ExactResult
	K         int             `json:"k"`
	Matched   int             `json:"matched"`
	Skipped   int             `json:"skipped"`
	Questions []QuestionScore `json:"questions"`
}

// Evaluate computes mean recall and mean average precision. Questions are
// matched by exact text; ground-truth questions without a submission are
// skipped rather than scored as zero.
func (e *ExactMatchEvaluator) Evaluate(groundTruth, submitted []Question) ExactResult {
	return e.EvaluateDetailed(groundTruth, submitted).ExactResult
}

// EvaluateDetailed is Evaluate with per-question scores.
func (e *ExactMatchEvaluator) EvaluateDetailed(groundTruth, submitted []Question) *ExactReport {
	logger := e.logger()
	k := e.K
	if k <= 0 {
		k = DefaultDiagnosticK
	}

	// Later entries for the same question text win; iteration keeps first-seen order.
	order := make([]string, 0, len(groundTruth))
	truth := make(map[string][]string, len(groundTruth))
	for _, q := range groundTruth {
		if _, ok := truth[q.Question]; !ok {
			order = append(order, q.Question)
		}
		truth[q.Question] = q.ChunkIDs
	}
	selected := make(map[string][]string, len(submitted))
	for _, q := range submitted {
		selected[q.Question] = q.ChunkIDs
	}

	report := &ExactReport{K: k, Questions: make([]QuestionScore, 0, len(order))}
	recalls := make([]float64, 0, len(order))
	aps := make([]float64, 0, len(order))

	for _, question := range order {
		retrieved, ok := selected[question]
		if !ok {
			report.Skipped++
			logger.Debug("question not submitted", slog.String("question", question))
			continue
		}
		relevantIDs := truth[question]
		relevant := toSet(relevantIDs)

		recall := Recall(relevant, retrieved)
		ap := AveragePrecision(relevant, retrieved)
		recalls = append(recalls, recall)
		aps = append(aps, ap)

		report.Questions = append(report.Questions, QuestionScore{
			Question:         question,
			RetrievedIDs:     retrieved,
			RelevantIDs:      relevantIDs,
			Recall:           recall,
			AveragePrecision: ap,
			PrecisionAtK:     PrecisionAtK(retrieved, relevantIDs, k),
			NDCGAtK:          NDCG(retrieved, relevantIDs, k),
			MRRScore:         MRR(retrieved, relevantIDs),
		})
		logger.Debug("question scored",
			slog.String("question", question),
			slog.Float64("recall", recall),
			slog.Float64("average_precision", ap))
	}

	report.Matched = len(recalls)
	report.MeanRecall = Mean(recalls)
	report.MeanAveragePrecision = Mean(aps)

	logger.Info("exact-match evaluation complete",
		slog.Int("matched", report.Matched),
		slog.Int("skipped", report.Skipped),
		slog.Float64("mean_recall", report.MeanRecall),
		slog.Float64("mean_average_precision", report.MeanAveragePrecision))
	return report
}

func (e *ExactMatchEvaluator) logger() *slog.Logger {
	return loggerOrDiscard(e.Logger)
}

var discardLogger = slog.New(slog.DiscardHandler)

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger
	}
	return l
}
