package config

import (
	"os"
	"time"

	"github.com/QuivrHQ/Judge/internal/dataset"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Dataset: DatasetConfig{
			Source:      "",
			NQSampleURL: dataset.DefaultNQSampleURL,
			CacheDir:    DefaultCacheDir(),
			Timeout:     2 * time.Minute,
		},
		Eval: EvalConfig{
			Mode:    ModeExact,
			Workers: 0, // GOMAXPROCS
			TopK:    5,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:         ":8088",
			MaxBodyBytes: 32 << 20,
		},
	}
}

// WriteDefault writes the default configuration to a file
func WriteDefault(path string) error {
	content := `# Retrieval Judge Configuration
version: "1"

# Ground truth
dataset:
  # URL or local file (.json, .yaml). Empty loads the hosted NQ evaluation dataset.
  source: ""
  nq_sample_url: ` + dataset.DefaultNQSampleURL + `
  # Where the NQ dev sample is cached
  # cache_dir: ~/.judge/cache
  timeout: 2m

# Evaluators
eval:
  mode: exact   # "exact" (chunk ids) or "fuzzy" (answer spans)
  workers: 0    # 0 = one per CPU
  top_k: 5      # cutoff for per-question P@k and nDCG@k

output:
  format: text  # "text" or "json"

log:
  level: info   # debug, info, warn, error
  format: text  # text or json

server:
  addr: ":8088"
  max_body_bytes: 33554432
`
	return os.WriteFile(path, []byte(content), 0644)
}
