package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"agent-relay/internal/agent"
	"agent-relay/internal/config"
	"agent-relay/internal/tui"
)

func askCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message through the relay and print the reply text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, os.Stderr)
			client, err := newAgentClient(cfg, endpoint, logger)
			if err != nil {
				return err
			}

			text, err := client.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), agent.FormatError(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "relay endpoint (default: $AGENT_ENDPOINT)")
	return cmd
}

func chatCmd() *cobra.Command {
	var (
		endpoint string
		plain    bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive chat form against the relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			logger, closeLog, err := chatLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			client, err := newAgentClient(cfg, endpoint, logger)
			if err != nil {
				return err
			}

			var opts []tui.Option
			if plain {
				opts = append(opts, tui.WithPlainText())
			}
			p := tea.NewProgram(tui.New(cmd.Context(), client, opts...), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "relay endpoint (default: $AGENT_ENDPOINT)")
	cmd.Flags().BoolVar(&plain, "plain", false, "show replies as plain text instead of rendered markdown")
	return cmd
}

func newAgentClient(cfg config.Client, endpoint string, logger *slog.Logger) (*agent.Client, error) {
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	client, err := agent.NewClient(endpoint,
		agent.WithHTTPClient(httpClientWithTimeout(cfg.Timeout)),
		agent.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create agent client: %w", err)
	}
	return client, nil
}

// chatLogger keeps log output off the terminal the chat form draws on. Debug
// logs go to a file next to the working directory.
func chatLogger(cfg config.Log) (*slog.Logger, func(), error) {
	if cfg.SlogLevel() > slog.LevelDebug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile("agent-relay-chat.log", "")
	if err != nil {
		return nil, nil, fmt.Errorf("open chat log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func httpClientWithTimeout(d time.Duration) *http.Client {
	return &http.Client{Timeout: d}
}
