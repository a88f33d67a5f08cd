// Package dataset loads ground truth and submissions from local files or
// URLs and converts Natural Questions examples into evaluation datasets.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/QuivrHQ/Judge/eval"
)

// Hosted datasets.
const (
	DefaultDatasetURL  = "https://huggingface.co/datasets/Quivr/Quivr_Google_NQ_dataset/resolve/main/evaluation_dataset.json?download=true"
	DefaultNQSampleURL = "https://storage.googleapis.com/natural_questions/v1.0/sample/nq-dev-sample.jsonl.gz"
)

var (
	ErrNotFound = errors.New("dataset not found")
	ErrDownload = errors.New("dataset download failed")
)

// Loader resolves a source string to file contents. The zero value uses
// http.DefaultClient and the hosted datasets.
type Loader struct {
	Client      *http.Client
	DefaultURL  string
	NQSampleURL string
	CacheDir    string
	Logger      *slog.Logger
}

// IsURL reports whether s has both a scheme and a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Load returns the {chunks, questions} dataset at source. An empty source
// loads the hosted evaluation dataset; URLs are downloaded; anything else is
// a local path. YAML files are accepted alongside JSON.
func (l *Loader) Load(ctx context.Context, source string) (*eval.ResultFormat, error) {
	if source == "" {
		source = l.defaultURL()
		l.logger().Info("no source provided, loading hosted dataset", slog.String("url", source))
	}
	data, err := l.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	if isYAML(source) {
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	rf, err := eval.DecodeResultFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	l.logger().Info("dataset loaded",
		slog.String("source", source),
		slog.Int("questions", len(rf.Questions)),
		slog.Int("chunks", len(rf.Chunks)))
	return rf, nil
}

// LoadReferences reads a JSON array of fuzzy reference records.
func (l *Loader) LoadReferences(ctx context.Context, source string) ([]eval.ReferenceRecord, error) {
	data, err := l.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	records, err := eval.DecodeReferenceRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return records, nil
}

// LoadResponses reads a JSON array of ordered chunk-text lists.
func (l *Loader) LoadResponses(ctx context.Context, source string) ([][]string, error) {
	data, err := l.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	responses, err := eval.DecodeResponses(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return responses, nil
}

// Read returns the raw bytes at source, downloading it if it is a URL.
func (l *Loader) Read(ctx context.Context, source string) ([]byte, error) {
	if IsURL(source) {
		l.logger().Debug("downloading", slog.String("url", source))
		body, err := l.open(ctx, source)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrDownload, source, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return data, nil
}

// open issues a GET and returns the body of a 200 response.
func (l *Loader) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := l.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status code %d", ErrDownload, rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

func (l *Loader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return http.DefaultClient
}

func (l *Loader) defaultURL() string {
	if l.DefaultURL != "" {
		return l.DefaultURL
	}
	return DefaultDatasetURL
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func isYAML(source string) bool {
	p := source
	if IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// yamlToJSON re-encodes a YAML document so it can pass the JSON schema
// check. Mapping keys keep their literal text, so chunk ids such as 0.10
// stay strings.
func yamlToJSON(data []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", eval.ErrSchema, err)
	}
	doc, err := nodeValue(&root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eval.ErrSchema, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eval.ErrSchema, err)
	}
	return out, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported YAML node at line %d", n.Line)
}
