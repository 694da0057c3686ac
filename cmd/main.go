package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agent-relay/internal/config"
)

const serviceName = "agent-relay"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Relay chat messages to an n8n workflow webhook",
		Long: "agent-relay forwards browser chat requests to a workflow webhook and mirrors its reply.\n" +
			"Without a sub-command it runs as an AWS Lambda function behind API Gateway.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}

	root.AddCommand(lambdaCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(chatCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.JSON() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}
