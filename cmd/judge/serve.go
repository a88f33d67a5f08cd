package main

import (
	"github.com/spf13/cobra"

	"github.com/QuivrHQ/Judge/internal/web"
)

var (
	serveAddr        string
	serveGroundTruth string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the evaluation HTTP API",
	Long: `Load the ground truth once and serve evaluations over HTTP.

Endpoints:
  GET  /api/dataset          question and chunk counts
  GET  /api/questions        question texts
  GET  /api/chunks/:id       one chunk
  POST /api/evaluate         exact-match submission ({chunks, questions})
  POST /api/evaluate/fuzzy   {responses, references}

Examples:
  judge serve --addr :8088
  judge serve --ground-truth eval.json`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().StringVarP(&serveGroundTruth, "ground-truth", "g", "", "ground-truth file or URL (default: dataset.source, then the hosted dataset)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	j, err := a.groundTruth(cmd.Context(), serveGroundTruth)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	return web.NewServer(j, a.logger, a.cfg.Server.MaxBodyBytes).Run(addr)
}
