package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"agent-relay/internal/usecase"
)

const (
	headerContentType   = "Content-Type"
	headerCorrelationID = "X-Correlation-Id"
	contentTypeJSON     = "application/json"

	// Path is where the relay is mounted when served over plain HTTP.
	Path = "/api/agent"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handler exposes the relay over API Gateway proxy events and net/http.
type Handler struct {
	relay  Relayer
	logger *slog.Logger
	newID  func() string
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(relay Relayer, opts ...Option) (*Handler, error) {
	if relay == nil {
		return nil, errors.New("handler: relay must not be nil")
	}
	h := &Handler{
		relay:  relay,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h, nil
}

// result is a transport-neutral response.
type result struct {
	status      int
	contentType string
	body        []byte
}

// Handle serves an API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := h.correlationID(lookupHeader(event.Headers, headerCorrelationID))

	body := []byte(event.Body)
	if event.IsBase64Encoded && event.HTTPMethod == http.MethodPost {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid base64 request body", "correlation_id", correlationID, "err", err)
			return toProxyResponse(badRequest("request body is not valid base64"), correlationID), nil
		}
		body = decoded
	}

	res := h.serve(ctx, event.HTTPMethod, body, correlationID)
	return toProxyResponse(res, correlationID), nil
}

// ServeHTTP serves the relay over plain HTTP. The upstream exchange is not
// cancelled when the caller goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := h.correlationID(r.Header.Get(headerCorrelationID))
	ctx := context.WithoutCancel(r.Context())

	var body []byte
	if r.Method == http.MethodPost && r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			h.logger.WarnContext(ctx, "read request body", "correlation_id", correlationID, "err", err)
			writeResult(w, badRequest("request body could not be read"), correlationID)
			return
		}
	}

	res := h.serve(ctx, r.Method, body, correlationID)
	writeResult(w, res, correlationID)
}

func (h *Handler) serve(ctx context.Context, method string, body []byte, correlationID string) result {
	start := time.Now()
	log := h.logger.With("correlation_id", correlationID, "method", method)

	if method == http.MethodOptions {
		return result{status: http.StatusOK}
	}
	if method != http.MethodPost {
		log.InfoContext(ctx, "method not allowed")
		return jsonResult(http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	}

	out, err := h.relay.Relay(ctx, usecase.RelayInput{Body: body})
	if err != nil {
		code, reason, detail := describeError(err)
		log.ErrorContext(ctx, "relay failed",
			"code", code,
			"reason", reason,
			"err", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return jsonResult(http.StatusBadGateway, errorResponse{Error: "Upstream error", Message: detail})
	}

	log.InfoContext(ctx, "relayed",
		"status", out.StatusCode,
		"request_bytes", len(body),
		"response_bytes", len(out.Body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result{status: out.StatusCode, contentType: out.ContentType, body: out.Body}
}

func (h *Handler) correlationID(provided string) string {
	if id := strings.TrimSpace(provided); id != "" {
		return id
	}
	return h.newID()
}

func describeError(err error) (code usecase.ErrorCode, reason, detail string) {
	var uerr *usecase.Error
	if errors.As(err, &uerr) {
		code, reason, detail = uerr.Code, uerr.Reason, uerr.Detail()
	} else {
		code, reason, detail = usecase.ErrorInternal, "unexpected_error", err.Error()
	}
	if detail == "" {
		detail = "upstream request failed"
	}
	return code, reason, detail
}

func jsonResult(status int, v any) result {
	body, err := json.Marshal(v)
	if err != nil {
		body = []byte(`{"error":"Internal Server Error"}`)
		status = http.StatusInternalServerError
	}
	return result{status: status, contentType: contentTypeJSON, body: body}
}

func badRequest(message string) result {
	return jsonResult(http.StatusBadRequest, errorResponse{Error: "Bad Request", Message: message})
}

func responseHeaders(res result, correlationID string) map[string]string {
	headers := make(map[string]string, len(corsHeaders)+2)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	headers[headerCorrelationID] = correlationID
	if res.contentType != "" {
		headers[headerContentType] = res.contentType
	}
	return headers
}

func toProxyResponse(res result, correlationID string) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: res.status,
		Headers:    responseHeaders(res, correlationID),
	}
	if utf8.Valid(res.body) {
		resp.Body = string(res.body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(res.body)
		resp.IsBase64Encoded = true
	}
	return resp
}

func writeResult(w http.ResponseWriter, res result, correlationID string) {
	for k, v := range responseHeaders(res, correlationID) {
		w.Header().Set(k, v)
	}
	w.WriteHeader(res.status)
	if len(res.body) > 0 {
		_, _ = w.Write(res.body)
	}
}

// lookupHeader finds a header in an API Gateway header map regardless of case.
func lookupHeader(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
