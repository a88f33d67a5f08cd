package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/eval"
	"github.com/QuivrHQ/Judge/internal/dataset"
)

var (
	datasetSource string
	datasetOut    string
	datasetLimit  int
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect ground truth and build datasets from Natural Questions",
}

var datasetInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show dataset statistics",
	RunE:  runDatasetInfo,
}

var datasetQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the dataset's questions",
	RunE:  runDatasetQuestions,
}

var datasetChunksCmd = &cobra.Command{
	Use:   "chunks [id...]",
	Short: "Print chunks by id (all chunks when no id is given)",
	RunE:  runDatasetChunks,
}

var datasetNQCmd = &cobra.Command{
	Use:   "nq",
	Short: "Build an exact-match dataset from the Natural Questions dev sample",
	Long: `Download the Natural Questions dev sample (cached in dataset.cache_dir)
and convert it to a {chunks, questions} dataset. Each top-level long answer
candidate j of example i becomes chunk "i.j".`,
	RunE: runDatasetNQ,
}

var datasetPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print the page text of the Natural Questions dev sample",
	RunE:  runDatasetPages,
}

var datasetReferencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Build fuzzy reference records from the Natural Questions dev sample",
	RunE:  runDatasetReferences,
}

func init() {
	datasetCmd.AddCommand(datasetInfoCmd)
	datasetCmd.AddCommand(datasetQuestionsCmd)
	datasetCmd.AddCommand(datasetChunksCmd)
	datasetCmd.AddCommand(datasetNQCmd)
	datasetCmd.AddCommand(datasetPagesCmd)
	datasetCmd.AddCommand(datasetReferencesCmd)

	for _, c := range []*cobra.Command{datasetInfoCmd, datasetQuestionsCmd, datasetChunksCmd} {
		c.Flags().StringVarP(&datasetSource, "ground-truth", "g", "", "dataset file or URL (default: dataset.source, then the hosted dataset)")
	}
	for _, c := range []*cobra.Command{datasetNQCmd, datasetPagesCmd, datasetReferencesCmd} {
		c.Flags().StringVarP(&datasetOut, "out", "o", "", "write to file instead of stdout")
		c.Flags().IntVarP(&datasetLimit, "limit", "n", 0, "use only the first n examples (0 = all)")
	}
}

type datasetInfo struct {
	Source       string `json:"source"`
	Questions    int    `json:"questions"`
	Chunks       int    `json:"chunks"`
	Unanswerable int    `json:"unanswerable"`
	RelevantIDs  int    `json:"relevant_ids"`
	Dangling     int    `json:"dangling_ids"`
}

func runDatasetInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	j, err := a.groundTruth(cmd.Context(), datasetSource)
	if err != nil {
		return err
	}

	source := datasetSource
	if source == "" {
		source = a.cfg.Dataset.Source
	}
	if source == "" {
		source = dataset.DefaultDatasetURL
	}

	data := j.Data()
	info := datasetInfo{Source: source, Questions: len(data.Questions), Chunks: len(data.Chunks)}
	for _, q := range data.Questions {
		if len(q.ChunkIDs) == 0 {
			info.Unanswerable++
		}
		info.RelevantIDs += len(q.ChunkIDs)
		for _, id := range q.ChunkIDs {
			if _, ok := data.Chunks[id]; !ok {
				info.Dangling++
			}
		}
	}

	return a.print(info, func() string {
		var b strings.Builder
		b.WriteString("Dataset\n")
		b.WriteString(strings.Repeat("=", 40) + "\n")
		fmt.Fprintf(&b, "  Source:        %s\n", info.Source)
		fmt.Fprintf(&b, "  Questions:     %d\n", info.Questions)
		fmt.Fprintf(&b, "  Chunks:        %d\n", info.Chunks)
		fmt.Fprintf(&b, "  Relevant ids:  %d\n", info.RelevantIDs)
		fmt.Fprintf(&b, "  No answer:     %d\n", info.Unanswerable)
		fmt.Fprintf(&b, "  Dangling ids:  %d\n", info.Dangling)
		return b.String()
	})
}

func runDatasetQuestions(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	j, err := a.groundTruth(cmd.Context(), datasetSource)
	if err != nil {
		return err
	}

	questions := j.Questions()
	return a.print(questions, func() string {
		return strings.Join(questions, "\n") + "\n"
	})
}

func runDatasetChunks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	j, err := a.groundTruth(cmd.Context(), datasetSource)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		ids = make([]string, 0, len(j.Chunks()))
		for id := range j.Chunks() {
			ids = append(ids, id)
		}
		slices.Sort(ids)
	}

	chunks := make(map[string]string, len(ids))
	for _, id := range ids {
		text, ok := j.Chunk(id)
		if !ok {
			return fmt.Errorf("chunk %q not found", id)
		}
		chunks[id] = text
	}

	return a.print(chunks, func() string {
		var b strings.Builder
		for _, id := range ids {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", id, strings.TrimRight(chunks[id], "\n"))
		}
		return b.String()
	})
}

func runDatasetNQ(cmd *cobra.Command, args []string) error {
	a, examples, err := loadNQ(cmd)
	if err != nil {
		return err
	}
	return a.writeJSON(dataset.ToResultFormat(examples))
}

func runDatasetPages(cmd *cobra.Command, args []string) error {
	a, examples, err := loadNQ(cmd)
	if err != nil {
		return err
	}
	pages := dataset.Pages(examples)
	if datasetOut != "" || a.wantJSON() {
		return a.writeJSON(pages)
	}
	for _, p := range pages {
		fmt.Fprintln(a.out, p)
	}
	return nil
}

func runDatasetReferences(cmd *cobra.Command, args []string) error {
	a, examples, err := loadNQ(cmd)
	if err != nil {
		return err
	}
	return a.writeJSON(dataset.ToReferenceRecords(examples))
}

func loadNQ(cmd *cobra.Command) (*app, []dataset.NQExample, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	examples, err := a.loader.FetchNQ(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if datasetLimit > 0 && datasetLimit < len(examples) {
		examples = examples[:datasetLimit]
	}
	return a, examples, nil
}

// writeJSON writes v to --out, or stdout when unset.
func (a *app) writeJSON(v any) error {
	out, err := eval.FormatJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if datasetOut == "" {
		fmt.Fprintln(a.out, out)
		return nil
	}
	if err := os.WriteFile(datasetOut, []byte(out+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", datasetOut, err)
	}
	a.logger.Info("dataset written", "path", datasetOut)
	return nil
}
