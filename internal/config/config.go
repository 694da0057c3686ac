// Package config loads process configuration from the environment. It is read
// once at start-up by the command entry points.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultUpstreamURL is used when N8N_WEBHOOK_URL is unset or blank.
const DefaultUpstreamURL = "https://ashwindev.app.n8n.cloud/webhook/harbourcare-chat"

// Relay configures the forwarding relay.
type Relay struct {
	// UpstreamURL is the webhook URL, or an "ssm:<name>" parameter reference.
	UpstreamURL     string        `env:"N8N_WEBHOOK_URL"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	OTelEndpoint    string        `env:"OTEL_ENDPOINT"`
	OTelEnabled     string        `env:"OTEL_ENABLED"`
	Log             Log
}

// Client configures the terminal chat client.
type Client struct {
	Endpoint string        `env:"AGENT_ENDPOINT" envDefault:"http://localhost:8080/api/agent"`
	Timeout  time.Duration `env:"AGENT_TIMEOUT" envDefault:"60s"`
	Log      Log
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadRelay reads the relay configuration.
func LoadRelay() (Relay, error) {
	var cfg Relay
	if err := parse(&cfg); err != nil {
		return Relay{}, err
	}
	if strings.TrimSpace(cfg.UpstreamURL) == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.UpstreamTimeout < 0 {
		return Relay{}, fmt.Errorf("config: UPSTREAM_TIMEOUT must not be negative, got %s", cfg.UpstreamTimeout)
	}
	return cfg, nil
}

// LoadClient reads the chat client configuration.
func LoadClient() (Client, error) {
	var cfg Client
	if err := parse(&cfg); err != nil {
		return Client{}, err
	}
	if cfg.Timeout < 0 {
		return Client{}, fmt.Errorf("config: AGENT_TIMEOUT must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

func parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// TracingEnabled reports whether spans should be exported.
func (r Relay) TracingEnabled() bool {
	if strings.EqualFold(strings.TrimSpace(r.OTelEnabled), "false") {
		return false
	}
	return strings.TrimSpace(r.OTelEndpoint) != ""
}

// SlogLevel maps the configured level name to a slog.Level, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// JSON reports whether log lines should be JSON encoded.
func (l Log) JSON() bool {
	return !strings.EqualFold(strings.TrimSpace(l.Format), "text")
}
