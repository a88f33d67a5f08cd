package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. JUDGE_EVAL_MODE.
const EnvPrefix = "JUDGE"

// Load merges defaults, the global config, the project config, an explicit
// file (if path is non-empty) and JUDGE_* environment variables, in that
// order of precedence.
func Load(path string) (*Config, error) {
	v := newViper()

	for _, p := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := mergeFile(v, p); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
	}
	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dataset.CacheDir = ExpandHome(cfg.Dataset.CacheDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env lookups only apply to known keys, so every field gets a default.
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("dataset.source", d.Dataset.Source)
	v.SetDefault("dataset.nq_sample_url", d.Dataset.NQSampleURL)
	v.SetDefault("dataset.cache_dir", d.Dataset.CacheDir)
	v.SetDefault("dataset.timeout", d.Dataset.Timeout)
	v.SetDefault("eval.mode", d.Eval.Mode)
	v.SetDefault("eval.workers", d.Eval.Workers)
	v.SetDefault("eval.top_k", d.Eval.TopK)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	return v
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	if !slices.Contains([]string{ModeExact, ModeFuzzy}, c.Eval.Mode) {
		return fmt.Errorf("invalid eval.mode %q (want %s or %s)", c.Eval.Mode, ModeExact, ModeFuzzy)
	}
	if !slices.Contains([]string{FormatText, FormatJSON}, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q (want %s or %s)", c.Output.Format, FormatText, FormatJSON)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("eval.workers must be >= 0, got %d", c.Eval.Workers)
	}
	if c.Eval.TopK < 0 {
		return fmt.Errorf("eval.top_k must be >= 0, got %d", c.Eval.TopK)
	}
	if c.Dataset.Timeout < 0 {
		return fmt.Errorf("dataset.timeout must be >= 0, got %s", c.Dataset.Timeout)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DefaultCacheDir returns ~/.judge/cache, or a relative fallback
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".judge", "cache")
	}
	return filepath.Join(home, ".judge", "cache")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".judge", "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".judge", "config.yaml")
}
