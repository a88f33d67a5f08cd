package config

import "time"

// Config represents the full judge configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Where ground truth comes from
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`

	// Evaluator selection and tuning
	Eval EvalConfig `yaml:"eval" mapstructure:"eval"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`

	Log LogConfig `yaml:"log" mapstructure:"log"`

	// HTTP API
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// DatasetConfig configures ground-truth loading
type DatasetConfig struct {
	// Source is a URL or local path; empty loads the hosted evaluation dataset.
	Source      string        `yaml:"source" mapstructure:"source"`
	NQSampleURL string        `yaml:"nq_sample_url" mapstructure:"nq_sample_url"`
	CacheDir    string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EvalConfig configures the evaluators
type EvalConfig struct {
	Mode    string `yaml:"mode" mapstructure:"mode"` // exact or fuzzy
	Workers int    `yaml:"workers" mapstructure:"workers"`
	TopK    int    `yaml:"top_k" mapstructure:"top_k"`
}

// OutputConfig configures result rendering
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// Evaluation modes
const (
	ModeExact = "exact"
	ModeFuzzy = "fuzzy"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)
