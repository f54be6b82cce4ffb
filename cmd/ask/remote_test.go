package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youcomagents/internal/lm"
	"youcomagents/internal/provider"
	"youcomagents/internal/server"
)

type echoAgent struct{}

func (echoAgent) Info() lm.ChatInformation {
	return lm.ChatInformation{ID: "echo", Name: "Echo", Family: "test", Version: "1.0.0"}
}

func (echoAgent) Handle(_ context.Context, messages []lm.ChatMessage, progress lm.Progress, _ lm.ResponseOptions) {
	progress.Report(lm.DataPart{MimeType: "application/json", Data: []byte(`{}`)})
	progress.Report(lm.TextPart{Value: "echo: " + lm.FlattenPrompt(messages)})
}

func newBridge(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.NewServer(provider.New(echoAgent{})).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestAskRemote(t *testing.T) {
	bridge := newBridge(t)
	messages, err := readMessages("", []string{"hello", "bridge"}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, askRemote(context.Background(), bridge.URL+"/", "echo", messages, &out))
	assert.Equal(t, "echo: hello bridge\n", out.String())
}

func TestAskRemote_UnknownModel(t *testing.T) {
	bridge := newBridge(t)

	var out bytes.Buffer
	require.NoError(t, askRemote(context.Background(), bridge.URL, "missing", []lm.ChatMessage{{Role: lm.RoleUser, Content: []lm.Part{lm.TextPart{Value: "hi"}}}}, &out))
	assert.Equal(t, provider.MsgUnknownAgent+"\n", out.String())
}

func TestAskRemote_BridgeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid request JSON", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	err := askRemote(context.Background(), srv.URL, "echo", nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Invalid request JSON")
}
