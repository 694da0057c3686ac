package usecase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"agent-relay/internal/integrations/webhook"
)

type mockForwarder struct {
	resp  webhook.Response
	err   error
	calls int
	body  []byte
}

func (m *mockForwarder) Post(_ context.Context, body []byte) (webhook.Response, error) {
	m.calls++
	m.body = body
	return m.resp, m.err
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func mustNewService(t *testing.T, f Forwarder) *RelayService {
	t.Helper()
	s, err := NewRelayService(f)
	require.NoError(t, err)
	return s
}

func TestNewRelayService_ValidatesDependency(t *testing.T) {
	_, err := NewRelayService(nil)
	require.Error(t, err)
}

func TestRelay_ForwardsBodyVerbatim(t *testing.T) {
	f := &mockForwarder{resp: webhook.Response{StatusCode: http.StatusOK, ContentType: "application/json; charset=utf-8", Body: []byte(`[{"output":"hi"}]`)}}
	s := mustNewService(t, f)

	raw := []byte(`{"message":"hello",  "extra":[1,2]}`)
	out, err := s.Relay(context.Background(), RelayInput{Body: raw})
	require.NoError(t, err)
	require.Equal(t, raw, f.body)
	require.Equal(t, 1, f.calls)
	require.Equal(t, RelayOutput{
		StatusCode:  http.StatusOK,
		ContentType: "application/json; charset=utf-8",
		Body:        []byte(`[{"output":"hi"}]`),
	}, out)
}

func TestRelay_EmptyBodyBecomesEmptyObject(t *testing.T) {
	for _, body := range [][]byte{nil, {}, []byte("  \n\t")} {
		f := &mockForwarder{resp: webhook.Response{StatusCode: http.StatusOK}}
		s := mustNewService(t, f)

		_, err := s.Relay(context.Background(), RelayInput{Body: body})
		require.NoError(t, err)
		require.Equal(t, "{}", string(f.body))
	}
}

func TestRelay_MirrorsNonSuccessStatus(t *testing.T) {
	f := &mockForwarder{resp: webhook.Response{StatusCode: http.StatusServiceUnavailable, ContentType: "application/json", Body: []byte(`{"x":1}`)}}
	s := mustNewService(t, f)

	out, err := s.Relay(context.Background(), RelayInput{Body: []byte(`{}`)})
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	require.Equal(t, `{"x":1}`, string(out.Body))
}

func TestRelay_DefaultsContentType(t *testing.T) {
	f := &mockForwarder{resp: webhook.Response{StatusCode: http.StatusOK, ContentType: "  ", Body: []byte(`"ok"`)}}
	s := mustNewService(t, f)

	out, err := s.Relay(context.Background(), RelayInput{Body: []byte(`{}`)})
	require.NoError(t, err)
	require.Equal(t, "application/json", out.ContentType)
}

func TestRelay_ClassifiesTransportErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "generic", err: errors.New("connection refused"), reason: "webhook_transport_error"},
		{name: "deadline", err: fmt.Errorf("send: %w", context.DeadlineExceeded), reason: "webhook_timeout"},
		{name: "canceled", err: fmt.Errorf("send: %w", context.Canceled), reason: "webhook_canceled"},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "hooks.invalid", IsNotFound: true}, reason: "webhook_dns_error"},
		{name: "net timeout", err: timeoutError{}, reason: "webhook_timeout"},
		{name: "webhook transport", err: &webhook.TransportError{URL: "http://x", Op: "send request", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, reason: "webhook_transport_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustNewService(t, &mockForwarder{err: tc.err})
			_, err := s.Relay(context.Background(), RelayInput{Body: []byte(`{}`)})
			require.Error(t, err)

			var uerr *Error
			require.True(t, errors.As(err, &uerr))
			require.Equal(t, ErrorUpstream, uerr.Code)
			require.Equal(t, tc.reason, uerr.Reason)
			require.ErrorIs(t, err, tc.err)
			require.NotEmpty(t, uerr.Detail())
		})
	}
}

func TestError_Formatting(t *testing.T) {
	var nilErr *Error
	require.Equal(t, "", nilErr.Error())
	require.Nil(t, nilErr.Unwrap())
	require.Equal(t, "", nilErr.Detail())

	e := newError(ErrorInternal, "encode_failed", nil)
	require.Equal(t, "usecase: INTERNAL_ERROR (encode_failed)", e.Error())
	require.Equal(t, "encode_failed", e.Detail())

	wrapped := newError(ErrorUpstream, "webhook_timeout", errors.New("deadline"))
	require.Equal(t, "usecase: UPSTREAM_ERROR (webhook_timeout): deadline", wrapped.Error())
	require.Equal(t, "deadline", wrapped.Detail())
}
