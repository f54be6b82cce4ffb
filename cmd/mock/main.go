package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"strings"
	"time"

	"youcomagents/internal/agents/youcom"
	"youcomagents/pkg/logger"
)

// mockRuns imitates the You.com agent runs endpoint for local development.
// Inputs starting with "!error" fail with 429; "!object" returns an object
// output.
type mockRuns struct {
	apiKey string
	delay  time.Duration
}

type runBody struct {
	Agent  string `json:"agent"`
	Input  string `json:"input"`
	Stream bool   `json:"stream"`
}

func (m *mockRuns) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+m.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"message": "invalid api key"}})
		return
	}

	var body runBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Agent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "agent is required"})
		return
	}

	select {
	case <-time.After(m.delay): // Simulate network latency
	case <-r.Context().Done():
		return
	}

	switch {
	case strings.HasPrefix(body.Input, "!error"):
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]string{"message": "rate limited"}})
	case strings.HasPrefix(body.Input, "!object"):
		writeJSON(w, http.StatusOK, map[string]any{"output": map[string]any{"agent": body.Agent, "input": body.Input}})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"output": "Mock " + body.Agent + " received: " + body.Input})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func main() {
	addr := flag.String("addr", ":8081", "Listen address")
	apiKey := flag.String("api-key", "", "Require this bearer token when set")
	delay := flag.Duration("delay", 500*time.Millisecond, "Artificial response latency")
	flag.Parse()

	mux := http.NewServeMux()
	mux.Handle("POST "+youcom.RunsPath, &mockRuns{apiKey: *apiKey, delay: *delay})

	logger.Info("Starting mock You.com API", "addr", *addr, "path", youcom.RunsPath)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Fatalf("Mock server stopped: %v", err)
	}
}
