package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"agent-relay/handler"
	"agent-relay/internal/config"
	"agent-relay/internal/integrations/paramstore"
	"agent-relay/internal/integrations/webhook"
	"agent-relay/internal/telemetry"
	"agent-relay/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func lambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run the relay as an AWS Lambda function (API Gateway proxy events)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the relay over HTTP on " + handler.Path,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: $LISTEN_ADDR or :8080)")
	return cmd
}

func runLambda(ctx context.Context) error {
	cfg, err := config.LoadRelay()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stdout)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.TracingEnabled())
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	h, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	lambda.StartWithOptions(h.Handle,
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Error("flush traces", "err", err)
			}
		}),
	)
	return nil
}

func runServe(ctx context.Context, addr string) error {
	cfg, err := config.LoadRelay()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	logger := newLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.TracingEnabled())
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("flush traces", "err", err)
		}
	}()

	h, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(handler.Path, h)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening", "addr", cfg.ListenAddr, "path", handler.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildHandler resolves the upstream URL once and wires the relay.
func buildHandler(ctx context.Context, cfg config.Relay, logger *slog.Logger) (*handler.Handler, error) {
	upstreamURL, err := resolveUpstreamURL(ctx, cfg.UpstreamURL)
	if err != nil {
		return nil, err
	}

	client, err := webhook.NewClient(upstreamURL, webhook.WithTimeout(cfg.UpstreamTimeout))
	if err != nil {
		return nil, fmt.Errorf("create webhook client: %w", err)
	}
	svc, err := usecase.NewRelayService(client)
	if err != nil {
		return nil, fmt.Errorf("create relay service: %w", err)
	}
	h, err := handler.NewHandler(svc, handler.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}
	logger.Info("relay configured", "upstream_host", upstreamHost(client.URL()), "upstream_timeout", cfg.UpstreamTimeout.String())
	return h, nil
}

// upstreamHost keeps webhook paths, which often act as secrets, out of logs.
func upstreamHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func resolveUpstreamURL(ctx context.Context, value string) (string, error) {
	if !paramstore.IsReference(value) {
		return value, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return "", fmt.Errorf("create SSM client: %w", err)
	}
	resolved, err := paramstore.Resolve(ctx, ps, value)
	if err != nil {
		return "", fmt.Errorf("resolve upstream url: %w", err)
	}
	return resolved, nil
}
