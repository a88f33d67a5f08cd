package eval

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Run is one evaluated retrieval configuration, e.g. "baseline" or "reranked".
type Run struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Exact *ExactResult `json:"exact,omitempty"`
	Fuzzy *FuzzyResult `json:"fuzzy,omitempty"`
}

// NewRun creates a named run with a fresh ID.
func NewRun(name string) Run {
	return Run{ID: uuid.NewString(), Name: name}
}

// FormatComparison renders a side-by-side table of the runs' metrics. With
// exactly two runs a delta column (second minus first) is added.
func FormatComparison(runs []Run) string {
	var b strings.Builder

	b.WriteString("Retrieval Evaluation\n")
	b.WriteString("====================\n\n")

	if len(runs) == 0 {
		b.WriteString("No runs to compare\n")
		return b.String()
	}

	withDelta := len(runs) == 2
	header := func() {
		fmt.Fprintf(&b, "%-16s", "Metric")
		for _, r := range runs {
			fmt.Fprintf(&b, "| %-12s", r.Name)
		}
		if withDelta {
			fmt.Fprintf(&b, "| %-12s", "Delta")
		}
		b.WriteString("\n")
	}
	row := func(name string, get func(r Run) (float64, bool)) {
		fmt.Fprintf(&b, "%-16s", name)
		vals := make([]float64, 0, len(runs))
		complete := true
		for _, r := range runs {
			v, ok := get(r)
			if !ok {
				fmt.Fprintf(&b, "| %-12s", "-")
				complete = false
				continue
			}
			vals = append(vals, v)
			fmt.Fprintf(&b, "| %-12.3f", v)
		}
		if withDelta {
			if complete {
				fmt.Fprintf(&b, "| %+-12.3f", vals[1]-vals[0])
			} else {
				fmt.Fprintf(&b, "| %-12s", "-")
			}
		}
		b.WriteString("\n")
	}

	var hasExact, hasFuzzy bool
	maxDepth := 0
	for _, r := range runs {
		hasExact = hasExact || r.Exact != nil
		if r.Fuzzy != nil {
			hasFuzzy = true
			maxDepth = max(maxDepth, len(r.Fuzzy.MeanRecall))
		}
	}

	if hasExact {
		b.WriteString("Exact match:\n")
		header()
		row("MAP", func(r Run) (float64, bool) {
			if r.Exact == nil {
				return 0, false
			}
			return r.Exact.MeanAveragePrecision, true
		})
		row("Recall", func(r Run) (float64, bool) {
			if r.Exact == nil {
				return 0, false
			}
			return r.Exact.MeanRecall, true
		})
	}

	if hasFuzzy {
		if hasExact {
			b.WriteString("\n")
		}
		b.WriteString("Fuzzy overlap:\n")
		header()
		row("MAP-like", func(r Run) (float64, bool) {
			if r.Fuzzy == nil {
				return 0, false
			}
			return r.Fuzzy.MeanMAPMetric, true
		})
		for k := 1; k <= maxDepth; k++ {
			row(RankLabel(k), func(r Run) (float64, bool) {
				if r.Fuzzy == nil {
					return 0, false
				}
				return r.Fuzzy.MeanRecall.At(k)
			})
		}
	}

	return b.String()
}

// FormatJSON returns v as indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
