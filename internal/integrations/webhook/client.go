package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	contentTypeJSON = "application/json"
	defaultTimeout  = 30 * time.Second
	tracerName      = "agent-relay/webhook"
)

// Response is the upstream reply exactly as received.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// TransportError reports a failed exchange with the webhook: the request could
// not be sent, no response arrived in time, or the body could not be read.
type TransportError struct {
	URL string
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webhook: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client posts JSON payloads to a single workflow webhook.
type Client struct {
	url        string
	httpClient *http.Client
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every exchange with the webhook. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a Client for the given absolute http(s) webhook URL.
func NewClient(webhookURL string, opts ...Option) (*Client, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil, errors.New("webhook: url must not be empty")
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("webhook: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("webhook: url must include a host")
	}

	c := &Client{
		url:        webhookURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c, nil
}

// URL returns the webhook the client posts to.
func (c *Client) URL() string {
	return c.url
}

// resolvedHTTPClient returns the configured HTTP client, or a default with the
// standard timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

// Post sends body to the webhook once and returns the reply as received. Any
// status code is a valid reply; only transport failures are errors.
func (c *Client) Post(ctx context.Context, body []byte) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "webhook.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.full", c.url),
			attribute.Int("http.request.body.size", len(body)),
		),
	)
	defer span.End()

	resp, err := c.post(ctx, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return Response{}, err
	}
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("http.response.body.size", len(resp.Body)),
	)
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, body []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, &TransportError{URL: c.url, Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return Response{}, &TransportError{URL: c.url, Op: "send request", Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, &TransportError{URL: c.url, Op: "read response body", Err: err}
	}
	return Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        buf,
	}, nil
}
