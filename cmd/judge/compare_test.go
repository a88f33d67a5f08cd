package main

import (
	"strings"
	"testing"

	"github.com/QuivrHQ/Judge/eval"
)

func TestParseRunArg(t *testing.T) {
	tests := []struct {
		arg      string
		wantName string
		wantFile string
		wantErr  bool
	}{
		{arg: "baseline=without_reranker.json", wantName: "baseline", wantFile: "without_reranker.json"},
		{arg: "run.json", wantName: "run.json", wantFile: "run.json"},
		{arg: "hf=https://example.com/data.json?download=true", wantName: "hf", wantFile: "https://example.com/data.json?download=true"},
		{arg: "=run.json", wantErr: true},
		{arg: "baseline=", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, file, err := parseRunArg(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseRunArg(%q) expected error", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRunArg(%q) unexpected error: %v", tt.arg, err)
			}
			if name != tt.wantName || file != tt.wantFile {
				t.Errorf("parseRunArg(%q) = %q, %q, want %q, %q", tt.arg, name, file, tt.wantName, tt.wantFile)
			}
		})
	}
}

func TestFormatQuestionScores(t *testing.T) {
	report := &eval.ExactReport{
		K:       5,
		Matched: 1,
		Skipped: 2,
		Questions: []eval.QuestionScore{
			{Question: strings.Repeat("q", 80), Recall: 0.5, AveragePrecision: 0.25},
		},
	}

	got := formatQuestionScores(report)
	for _, want := range []string{"1 scored, 2 not submitted", "P@5", "nDCG@5", "0.500", "0.250", strings.Repeat("q", 57) + "..."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("truncate(unicode) = %q", got)
	}
}
