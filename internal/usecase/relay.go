package usecase

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"

	"agent-relay/internal/integrations/webhook"
)

const defaultContentType = "application/json"

// emptyBody is forwarded when the inbound request carries no payload.
var emptyBody = []byte("{}")

type Forwarder interface {
	Post(ctx context.Context, body []byte) (webhook.Response, error)
}

type RelayService struct {
	upstream Forwarder
}

type RelayInput struct {
	Body []byte
}

type RelayOutput struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func NewRelayService(upstream Forwarder) (*RelayService, error) {
	if upstream == nil {
		return nil, errors.New("usecase: upstream forwarder must not be nil")
	}
	return &RelayService{upstream: upstream}, nil
}

// Relay forwards the inbound body to the webhook once and mirrors its reply.
// The body is passed through untouched; an absent or blank body becomes {}.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	body := in.Body
	if len(bytes.TrimSpace(body)) == 0 {
		body = emptyBody
	}

	resp, err := s.upstream.Post(ctx, body)
	if err != nil {
		return RelayOutput{}, newError(ErrorUpstream, transportReason(err), err)
	}

	contentType := strings.TrimSpace(resp.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}
	return RelayOutput{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        resp.Body,
	}, nil
}

func transportReason(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "webhook_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "webhook_timeout"
	case errors.As(err, &dnsErr):
		return "webhook_dns_error"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "webhook_timeout"
	default:
		return "webhook_transport_error"
	}
}
