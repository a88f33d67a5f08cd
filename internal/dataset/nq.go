package dataset

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/QuivrHQ/Judge/eval"
)

// NQSampleFile is the cache file name of the Natural Questions dev sample.
const NQSampleFile = "nq-dev-sample.jsonl.gz"

// NQExample is the subset of a Natural Questions record this tool reads.
type NQExample struct {
	ExampleID            int64          `json:"example_id"`
	QuestionText         string         `json:"question_text"`
	DocumentTitle        string         `json:"document_title"`
	DocumentURL          string         `json:"document_url"`
	DocumentTokens       []NQToken      `json:"document_tokens"`
	LongAnswerCandidates []NQCandidate  `json:"long_answer_candidates"`
	Annotations          []NQAnnotation `json:"annotations"`
}

type NQToken struct {
	Token     string `json:"token"`
	HTMLToken bool   `json:"html_token"`
}

type NQCandidate struct {
	StartToken int  `json:"start_token"`
	EndToken   int  `json:"end_token"`
	TopLevel   bool `json:"top_level"`
}

type NQSpan struct {
	StartToken     int `json:"start_token"`
	EndToken       int `json:"end_token"`
	CandidateIndex int `json:"candidate_index"`
}

type NQAnnotation struct {
	LongAnswer   NQSpan   `json:"long_answer"`
	ShortAnswers []NQSpan `json:"short_answers"`
	YesNoAnswer  string   `json:"yes_no_answer"`
}

// ReadNQ decodes gzip-compressed JSON lines of NQ examples.
func ReadNQ(r io.Reader) ([]NQExample, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	var examples []NQExample
	dec := json.NewDecoder(gz)
	for {
		var ex NQExample
		err := dec.Decode(&ex)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode example %d: %w", len(examples), err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

// FetchNQ returns the NQ dev sample, downloading it into CacheDir on first use.
func (l *Loader) FetchNQ(ctx context.Context) ([]NQExample, error) {
	cacheDir := l.CacheDir
	if cacheDir == "" {
		cacheDir = "."
	}
	path := filepath.Join(cacheDir, NQSampleFile)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := l.downloadNQ(ctx, path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open NQ sample: %w", err)
	}
	defer f.Close()

	l.logger().Info("reading NQ sample", slog.String("path", path))
	examples, err := ReadNQ(f)
	if err != nil {
		return nil, fmt.Errorf("read NQ sample: %w", err)
	}
	l.logger().Info("NQ sample loaded", slog.Int("examples", len(examples)))
	return examples, nil
}

func (l *Loader) downloadNQ(ctx context.Context, path string) error {
	src := l.NQSampleURL
	if src == "" {
		src = DefaultNQSampleURL
	}
	l.logger().Info("downloading NQ sample", slog.String("url", src))

	body, err := l.open(ctx, src)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), NQSampleFile+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write NQ sample: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// ToResultFormat turns NQ examples into an exact-match dataset. Top-level
// long answer candidate j of example i becomes chunk "i.j"; each question's
// relevant ids are its annotated long answer candidates.
func ToResultFormat(examples []NQExample) *eval.ResultFormat {
	rf := &eval.ResultFormat{
		Chunks:    make(map[string]string),
		Questions: make([]eval.Question, 0, len(examples)),
	}

	for i, ex := range examples {
		for j, c := range ex.LongAnswerCandidates {
			if !c.TopLevel {
				continue
			}
			rf.Chunks[chunkID(i, j)] = spanText(ex.DocumentTokens, c.StartToken, c.EndToken) + "\n"
		}

		ids := []string{}
		seen := make(map[string]bool)
		for _, a := range ex.Annotations {
			if a.LongAnswer.CandidateIndex == -1 {
				continue
			}
			id := chunkID(i, a.LongAnswer.CandidateIndex)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		rf.Questions = append(rf.Questions, eval.Question{Question: ex.QuestionText, ChunkIDs: ids})
	}
	return rf
}

// ToReferenceRecords turns NQ examples into fuzzy ground truth: annotated
// long and short answer spans as text.
func ToReferenceRecords(examples []NQExample) []eval.ReferenceRecord {
	records := make([]eval.ReferenceRecord, 0, len(examples))
	for _, ex := range examples {
		var long, short []string
		for _, a := range ex.Annotations {
			if a.LongAnswer.CandidateIndex != -1 && a.LongAnswer.StartToken >= 0 {
				long = appendUnique(long, spanText(ex.DocumentTokens, a.LongAnswer.StartToken, a.LongAnswer.EndToken))
			}
			for _, s := range a.ShortAnswers {
				short = appendUnique(short, spanText(ex.DocumentTokens, s.StartToken, s.EndToken))
			}
		}
		records = append(records, eval.ReferenceRecord{
			ID:           strconv.FormatInt(ex.ExampleID, 10),
			Text:         PageText(ex),
			Question:     ex.QuestionText,
			LongAnswers:  nonNil(long),
			ShortAnswers: nonNil(short),
		})
	}
	return records
}

// Pages returns the full page text of every example.
func Pages(examples []NQExample) []string {
	pages := make([]string, len(examples))
	for i, ex := range examples {
		pages[i] = PageText(ex)
	}
	return pages
}

// PageText joins all document tokens with spaces; HTML tokens are followed by a newline.
func PageText(ex NQExample) string {
	parts := make([]string, len(ex.DocumentTokens))
	for i, t := range ex.DocumentTokens {
		if t.HTMLToken {
			parts[i] = t.Token + " \n"
		} else {
			parts[i] = t.Token
		}
	}
	return strings.Join(parts, " ")
}

func chunkID(example, candidate int) string {
	return strconv.Itoa(example) + "." + strconv.Itoa(candidate)
}

// spanText joins the non-HTML tokens in [start, end).
func spanText(tokens []NQToken, start, end int) string {
	start = max(start, 0)
	end = min(end, len(tokens))
	if start >= end {
		return ""
	}
	words := make([]string, 0, end-start)
	for _, t := range tokens[start:end] {
		if !t.HTMLToken {
			words = append(words, t.Token)
		}
	}
	return strings.Join(words, " ")
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
