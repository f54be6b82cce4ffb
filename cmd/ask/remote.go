package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"youcomagents/internal/lm"
	"youcomagents/pkg/httputil"
	"youcomagents/pkg/logger"
)

type remotePart struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type remoteMessage struct {
	Role    string       `json:"role"`
	Content []remotePart `json:"content"`
}

type remoteChat struct {
	Model    string          `json:"model"`
	Messages []remoteMessage `json:"messages"`
}

// askRemote sends messages to a running bridge and writes every text part of
// its event stream to out, one per line.
func askRemote(ctx context.Context, baseURL, model string, messages []lm.ChatMessage, out io.Writer) error {
	chat := remoteChat{Model: model, Messages: make([]remoteMessage, len(messages))}
	for i, m := range messages {
		chat.Messages[i] = remoteMessage{Role: string(m.Role), Content: []remotePart{{Type: "text", Value: m.TextContent()}}}
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/v1/chat", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bridge returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return httputil.ProcessSSEStream(resp.Body, func(event []byte) error {
		var part remotePart
		if err := json.Unmarshal(event, &part); err != nil {
			logger.Warn("Skipping malformed bridge event", "error", err)
			return nil
		}
		if part.Type == "text" {
			fmt.Fprintln(out, part.Value)
		}
		return nil
	})
}
