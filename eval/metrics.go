package eval

import "math"

// Recall computes |relevant ∩ retrieved| / |relevant|, or 0 when nothing is relevant.
func Recall(relevant map[string]bool, retrieved []string) float64 {
	if len(relevant) == 0 {
		return 0
	}
	found := 0
	for id := range toSet(retrieved) {
		if relevant[id] {
			found++
		}
	}
	return float64(found) / float64(len(relevant))
}

// AveragePrecision sums precision at every rank holding a relevant id and
// divides by |relevant|. With an empty relevant set the divisor is 1.
func AveragePrecision(relevant map[string]bool, retrieved []string) float64 {
	sum := 0.0
	hits := 0
	for i, id := range retrieved {
		if relevant[id] {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if len(relevant) == 0 {
		return sum
	}
	return sum / float64(len(relevant))
}

// Mean returns the arithmetic mean of values, or 0 for none.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// RecallAtK computes recall@K: fraction of relevant items found in the top-K results.
func RecallAtK(retrieved []string, relevant []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	return Recall(toSet(relevant), topK(retrieved, k))
}

// PrecisionAtK computes precision@K: fraction of top-K results that are relevant.
func PrecisionAtK(retrieved []string, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	top := topK(retrieved, k)
	if len(top) == 0 {
		return 0
	}
	relSet := toSet(relevant)
	found := 0
	for _, id := range top {
		if relSet[id] {
			found++
		}
	}
	return float64(found) / float64(len(top))
}

// NDCG computes binary-relevance normalized discounted cumulative gain at K.
func NDCG(retrieved []string, relevant []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	relSet := toSet(relevant)

	dcg := 0.0
	for i, id := range topK(retrieved, k) {
		if relSet[id] {
			dcg += 1 / math.Log2(float64(i+2)) // log2(1)=0
		}
	}

	idealK := min(k, len(relSet))
	idcg := 0.0
	for i := 0; i < idealK; i++ {
		idcg += 1 / math.Log2(float64(i+2))
	}
	return dcg / idcg
}

// MRR computes the reciprocal rank of the first relevant result.
func MRR(retrieved []string, relevant []string) float64 {
	relSet := toSet(relevant)
	for i, id := range retrieved {
		if relSet[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

func topK(items []string, k int) []string {
	if k < len(items) {
		return items[:k]
	}
	return items
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
