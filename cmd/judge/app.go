package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/eval"
	"github.com/QuivrHQ/Judge/internal/config"
	"github.com/QuivrHQ/Judge/internal/dataset"
	"github.com/QuivrHQ/Judge/internal/judge"
	"github.com/QuivrHQ/Judge/internal/logging"
)

// app is the per-invocation state shared by subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *dataset.Loader
	out    io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if jsonOutput {
		cfg.Output.Format = config.FormatJSON
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		loader: &dataset.Loader{
			Client:      &http.Client{Timeout: cfg.Dataset.Timeout},
			NQSampleURL: cfg.Dataset.NQSampleURL,
			CacheDir:    cfg.Dataset.CacheDir,
			Logger:      logger,
		},
		out: cmd.OutOrStdout(),
	}, nil
}

func (a *app) judgeOptions() judge.Options {
	return judge.Options{
		Workers: a.cfg.Eval.Workers,
		TopK:    a.cfg.Eval.TopK,
		Logger:  a.logger,
	}
}

// groundTruth loads source, falling back to the configured dataset source.
func (a *app) groundTruth(ctx context.Context, source string) (*judge.Judge, error) {
	if source == "" {
		source = a.cfg.Dataset.Source
	}
	return judge.New(ctx, a.loader, source, a.judgeOptions())
}

func (a *app) wantJSON() bool {
	return a.cfg.Output.Format == config.FormatJSON
}

// print writes v as JSON when requested, otherwise the text rendering.
func (a *app) print(v any, text func() string) error {
	if a.wantJSON() {
		out, err := eval.FormatJSON(v)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(a.out, out)
		return nil
	}
	fmt.Fprint(a.out, text())
	return nil
}
