package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jgbaldwinbrown/posbed/pkg/convert"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
	"github.com/jgbaldwinbrown/posbed/pkg/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming converter over stdin/stdout",
	Long: `Run posbed as a long-lived process that reads NDJSON requests from stdin
and writes NDJSON responses to stdout.

Requests:
  {"type":"convert","payload":{"text":"chr1:1000000\n2:5-10","from":"hg19","to":"hg38","liftover":true}}
  {"type":"assemblies"}
  {"type":"close"}

The process answers with a "ready" response at startup and keeps one
liftover cache for its lifetime. It exits when stdin closes, on "close",
or on SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	conv := convert.New(cfg.Lifter())
	defaults := convert.Options{From: cfg.From, To: cfg.To, Liftover: cfg.LiftoverEnabled()}
	logging.Info("server_startup", "protocol", serve.Version, "from", cfg.From, "to", cfg.To, "service", cfg.Service.URL)

	srv := serve.NewServer(conv, defaults, cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}
