package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuivrHQ/Judge/eval"
)

type stubSource struct {
	data *eval.ResultFormat
	err  error
	got  string
}

func (s *stubSource) Load(_ context.Context, source string) (*eval.ResultFormat, error) {
	s.got = source
	return s.data, s.err
}

func sampleData() *eval.ResultFormat {
	return &eval.ResultFormat{
		Chunks: map[string]string{"1": "Sample chunk 1", "2": "Sample chunk 2", "3": "Sample chunk 3"},
		Questions: []eval.Question{
			{Question: "Sample question 1", ChunkIDs: []string{"1"}},
			{Question: "Sample question 2", ChunkIDs: []string{"2", "3"}},
		},
	}
}

func TestNew(t *testing.T) {
	src := &stubSource{data: sampleData()}

	j, err := New(context.Background(), src, "data.json", Options{})
	require.NoError(t, err)

	assert.Equal(t, "data.json", src.got)
	assert.Equal(t, sampleData().Chunks, j.Chunks())
	assert.Equal(t, []string{"Sample question 1", "Sample question 2"}, j.Questions())

	text, ok := j.Chunk("2")
	assert.True(t, ok)
	assert.Equal(t, "Sample chunk 2", text)
	_, ok = j.Chunk("9")
	assert.False(t, ok)
}

func TestNewLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(context.Background(), &stubSource{err: boom}, "", Options{})
	assert.ErrorIs(t, err, boom)
}

func TestFromDataRejectsInvalid(t *testing.T) {
	_, err := FromData(&eval.ResultFormat{Chunks: map[string]string{}}, Options{})
	assert.ErrorIs(t, err, eval.ErrSchema)
}

func TestEvaluate(t *testing.T) {
	j, err := FromData(sampleData(), Options{})
	require.NoError(t, err)

	result, err := j.Evaluate(&eval.ResultFormat{
		Chunks: map[string]string{},
		Questions: []eval.Question{
			{Question: "Sample question 1", ChunkIDs: []string{"1"}},
			{Question: "Sample question 2", ChunkIDs: []string{"9", "3"}},
		},
	})
	require.NoError(t, err)

	// recalls 1 and 0.5; APs 1 and (1/2)/2
	assert.InDelta(t, 0.75, result.MeanRecall, 1e-9)
	assert.InDelta(t, 0.625, result.MeanAveragePrecision, 1e-9)
}

func TestEvaluateRejectsMalformedSubmission(t *testing.T) {
	j, err := FromData(sampleData(), Options{})
	require.NoError(t, err)

	_, err = j.Evaluate(&eval.ResultFormat{
		Chunks:    map[string]string{},
		Questions: []eval.Question{{Question: "Sample question 1", ChunkIDs: []string{"1", "1"}}},
	})
	assert.ErrorIs(t, err, eval.ErrSchema)
}

func TestEvaluateFuzzy(t *testing.T) {
	j, err := FromData(sampleData(), Options{Workers: 1})
	require.NoError(t, err)

	result, err := j.EvaluateFuzzy(context.Background(),
		[][]string{{"the", "cat sat"}},
		[]eval.ReferenceRecord{{ID: "1", ShortAnswers: []string{"cat"}, LongAnswers: []string{}}})
	require.NoError(t, err)

	v, ok := result.MeanRecall.At(2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestCompare(t *testing.T) {
	j, err := FromData(sampleData(), Options{})
	require.NoError(t, err)

	baseline := &eval.ResultFormat{Chunks: map[string]string{}, Questions: []eval.Question{
		{Question: "Sample question 1", ChunkIDs: []string{"2", "1"}},
	}}
	reranked := &eval.ResultFormat{Chunks: map[string]string{}, Questions: []eval.Question{
		{Question: "Sample question 1", ChunkIDs: []string{"1", "2"}},
	}}

	runs, err := j.Compare([]string{"baseline", "reranked"}, []*eval.ResultFormat{baseline, reranked})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "baseline", runs[0].Name)
	assert.InDelta(t, 0.5, runs[0].Exact.MeanAveragePrecision, 1e-9)
	assert.InDelta(t, 1.0, runs[1].Exact.MeanAveragePrecision, 1e-9)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)

	_, err = j.Compare([]string{"only"}, nil)
	assert.Error(t, err)
}
