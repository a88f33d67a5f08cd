package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Question is a ground-truth or submitted record: a question and the chunk
// ids relevant to it (ground truth) or retrieved for it (submission, in rank order).
type Question struct {
	Question string   `json:"question" yaml:"question"`
	ChunkIDs []string `json:"chunk_ids" yaml:"chunk_ids"`
}

// ResultFormat is the dataset shape shared by ground truth and exact-match
// submissions: a chunk corpus plus the questions referencing it.
type ResultFormat struct {
	Chunks    map[string]string `json:"chunks" yaml:"chunks"`
	Questions []Question        `json:"questions" yaml:"questions"`
}

// ReferenceRecord is fuzzy ground truth: answers are free-text spans of Text.
type ReferenceRecord struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Question     string   `json:"question"`
	LongAnswers  []string `json:"long_answers"`
	ShortAnswers []string `json:"short_answers"`
}

// ExactResult holds the corpus-level exact-match metrics.
type ExactResult struct {
	MeanRecall           float64 `json:"mean_recall"`
	MeanAveragePrecision float64 `json:"mean_average_precision"`
}

// FuzzyResult holds per-question and aggregate fuzzy overlap scores.
type FuzzyResult struct {
	AllRecall     []RankScores `json:"all_recall"`
	MeanRecall    RankScores   `json:"mean_recall"`
	MeanMAPMetric float64      `json:"mean_map_metric"`
}

const rankPrefix = "top_"

// RankLabel returns the label for cumulative depth k, e.g. "top_3".
func RankLabel(k int) string {
	return rankPrefix + strconv.Itoa(k)
}

// RankScores holds one value per cumulative depth; index k-1 is top_k.
type RankScores []float64

// At returns the score for depth k and whether the depth is present.
func (r RankScores) At(k int) (float64, bool) {
	if k < 1 || k > len(r) {
		return 0, false
	}
	return r[k-1], true
}

// Map returns the scores keyed by rank label.
func (r RankScores) Map() map[string]float64 {
	m := make(map[string]float64, len(r))
	for i, v := range r {
		m[RankLabel(i+1)] = v
	}
	return m
}

// MarshalJSON writes an object whose keys stay in rank order.
func (r RankScores) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, v := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%q:%s", RankLabel(i+1), val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON. Depths must
// be contiguous from top_1.
func (r *RankScores) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(RankScores, len(m))
	for label, v := range m {
		k, err := strconv.Atoi(strings.TrimPrefix(label, rankPrefix))
		if err != nil || !strings.HasPrefix(label, rankPrefix) || k < 1 || k > len(m) {
			return fmt.Errorf("invalid rank label %q", label)
		}
		out[k-1] = v
	}
	*r = out
	return nil
}
