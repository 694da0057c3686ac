// Package agent is the chat-side client of the relay: it submits a message and
// turns whatever the workflow answers into display text.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agent-relay/internal/domain"
	"agent-relay/internal/reply"
)

// ErrorPrefix introduces transport failures shown to the user.
const ErrorPrefix = "⚠️ Error: "

const (
	defaultTimeout = 60 * time.Second
	maxReplyBytes  = 4 << 20
)

var (
	// ErrEmptyMessage is returned for blank input; nothing is sent.
	ErrEmptyMessage = errors.New("agent: message must not be empty")
	// ErrUnavailable is returned when the relay answers with a non-2xx status.
	ErrUnavailable = errors.New("Failed to connect to agent")
)

// StatusError carries the non-2xx status returned by the relay.
type StatusError struct {
	StatusCode int
}

// Error is the text shown to the user; the status code is only logged.
func (e *StatusError) Error() string {
	return ErrUnavailable.Error()
}

func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

// Client submits chat messages to the relay endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("agent: endpoint must not be empty")
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Ask posts {"message": message} to the relay and returns the display text of
// the reply. A reply without recognisable text yields "" and is logged at
// debug level.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	payload, err := json.Marshal(domain.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("agent: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("agent: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("agent: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "relay returned non-success status", "status", res.StatusCode)
		return "", &StatusError{StatusCode: res.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("agent: read response body: %w", err)
	}

	value, err := reply.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("agent: decode response: %w", err)
	}
	text := reply.ExtractText(value)
	if text == "" {
		c.logger.DebugContext(ctx, "unparsed agent response", "kind", value.Kind.String(), "payload", string(raw))
	}
	return text, nil
}

// FormatError renders a failed submission the way it is shown to the user.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return ErrorPrefix + err.Error()
}
