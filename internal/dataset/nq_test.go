package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExample() NQExample {
	tok := func(s string) NQToken { return NQToken{Token: s} }
	html := func(s string) NQToken { return NQToken{Token: s, HTMLToken: true} }

	return NQExample{
		ExampleID:    42,
		QuestionText: "who wrote the cat sat",
		DocumentTokens: []NQToken{
			html("<P>"), tok("The"), tok("cat"), tok("sat"), html("</P>"),
			html("<P>"), tok("Written"), tok("by"), tok("Ann"), html("</P>"),
		},
		LongAnswerCandidates: []NQCandidate{
			{StartToken: 0, EndToken: 5, TopLevel: true},
			{StartToken: 1, EndToken: 3, TopLevel: false},
			{StartToken: 5, EndToken: 10, TopLevel: true},
		},
		Annotations: []NQAnnotation{
			{LongAnswer: NQSpan{StartToken: 5, EndToken: 10, CandidateIndex: 2}, ShortAnswers: []NQSpan{{StartToken: 8, EndToken: 9}}},
			{LongAnswer: NQSpan{StartToken: 5, EndToken: 10, CandidateIndex: 2}, ShortAnswers: []NQSpan{{StartToken: 8, EndToken: 9}}},
			{LongAnswer: NQSpan{StartToken: -1, EndToken: -1, CandidateIndex: -1}},
		},
	}
}

func gzipLines(t *testing.T, examples ...NQExample) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, ex := range examples {
		line, err := json.Marshal(ex)
		require.NoError(t, err)
		_, err = gz.Write(append(line, '\n'))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestReadNQ(t *testing.T) {
	data := gzipLines(t, sampleExample(), sampleExample())

	examples, err := ReadNQ(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, int64(42), examples[0].ExampleID)
	assert.Len(t, examples[1].DocumentTokens, 10)
}

func TestReadNQRejectsPlainText(t *testing.T) {
	_, err := ReadNQ(bytes.NewReader([]byte(`{"example_id": 1}`)))
	assert.Error(t, err)
}

func TestToResultFormat(t *testing.T) {
	second := sampleExample()
	second.QuestionText = "unanswered"
	second.Annotations = []NQAnnotation{{LongAnswer: NQSpan{CandidateIndex: -1}}}

	rf := ToResultFormat([]NQExample{sampleExample(), second})

	assert.Equal(t, map[string]string{
		"0.0": "The cat sat\n",
		"0.2": "Written by Ann\n",
		"1.0": "The cat sat\n",
		"1.2": "Written by Ann\n",
	}, rf.Chunks)
	require.Len(t, rf.Questions, 2)
	assert.Equal(t, []string{"0.2"}, rf.Questions[0].ChunkIDs)
	assert.Equal(t, []string{}, rf.Questions[1].ChunkIDs)
	assert.NoError(t, rf.Validate())
}

func TestToReferenceRecords(t *testing.T) {
	records := ToReferenceRecords([]NQExample{sampleExample()})
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "who wrote the cat sat", r.Question)
	assert.Equal(t, []string{"Written by Ann"}, r.LongAnswers)
	assert.Equal(t, []string{"Ann"}, r.ShortAnswers)
	assert.Contains(t, r.Text, "Written by Ann")
}

func TestPages(t *testing.T) {
	pages := Pages([]NQExample{sampleExample()})
	require.Len(t, pages, 1)
	assert.Equal(t, "<P> \n The cat sat </P> \n <P> \n Written by Ann </P> \n", pages[0])
}

func TestFetchNQCachesDownload(t *testing.T) {
	srv, paths := serve(t, http.StatusOK, string(gzipLines(t, sampleExample())))
	dir := t.TempDir()
	l := &Loader{NQSampleURL: srv.URL + "/nq.jsonl.gz", CacheDir: filepath.Join(dir, "cache")}

	examples, err := l.FetchNQ(context.Background())
	require.NoError(t, err)
	require.Len(t, examples, 1)

	_, err = os.Stat(filepath.Join(dir, "cache", NQSampleFile))
	require.NoError(t, err)

	_, err = l.FetchNQ(context.Background())
	require.NoError(t, err)
	assert.Len(t, *paths, 1, "second fetch should use the cache")
}

func TestFetchNQDownloadFailure(t *testing.T) {
	srv, _ := serve(t, http.StatusInternalServerError, "")
	l := &Loader{NQSampleURL: srv.URL, CacheDir: t.TempDir()}

	_, err := l.FetchNQ(context.Background())
	assert.ErrorIs(t, err, ErrDownload)
}
