package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"agent-relay/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.Log{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("visible", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "visible", line["msg"])
	require.Equal(t, serviceName, line["service"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.Log{Level: "debug", Format: "text"}, &buf)
	logger.Debug("shown")
	require.Contains(t, buf.String(), "msg=shown")
}

func TestUpstreamHost(t *testing.T) {
	require.Equal(t, "ashwindev.app.n8n.cloud", upstreamHost(config.DefaultUpstreamURL))
	require.Equal(t, "", upstreamHost("://bad"))
}

func TestResolveUpstreamURL_Literal(t *testing.T) {
	got, err := resolveUpstreamURL(context.Background(), "https://hooks.example.com/chat")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/chat", got)
}

func TestBuildHandler_RejectsInvalidURL(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.Log{Level: "info"}, &buf)
	_, err := buildHandler(context.Background(), config.Relay{UpstreamURL: "ftp://nope"}, logger)
	require.Error(t, err)
}
