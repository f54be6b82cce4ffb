package youcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"youcomagents/internal/agents"
	"youcomagents/internal/config"
	"youcomagents/internal/lm"
	"youcomagents/pkg/logger"
)

// RunsPath is the agent runs endpoint, relative to the base URL.
const RunsPath = "/v1/agents/runs"

// maxResponseBody bounds how much of a response is read.
var maxResponseBody int64 = 10 * 1024 * 1024

// Messages reported to the host.
const (
	MsgMissingEnv   = "Missing %s environment variable."
	MsgNoPrompt     = "Unable to construct a prompt from the provided messages."
	MsgUnreachable  = "Failed to reach the You.com API."
	MsgRequestFail  = "You.com API request failed: %s"
	MsgEmptyOutcome = "The You.com API returned an empty response."
)

// Info is the built-in You.com agent descriptor.
var Info = lm.ChatInformation{
	ID:              "youcom-agent",
	Name:            "You.com Agent",
	Family:          "youcom",
	Version:         "1.0.0",
	MaxInputTokens:  4096,
	MaxOutputTokens: 1024,
	Capabilities:    lm.Capabilities{ToolCalling: false},
}

var _ agents.Agent = (*Agent)(nil)

// Agent invokes one You.com agent through the runs API.
type Agent struct {
	info       lm.ChatInformation
	endpoint   string
	agentIDEnv string
	apiKeyEnv  string
	creds      config.Source
	client     *http.Client
}

// Option customizes an Agent.
type Option func(*Agent)

// WithBaseURL targets another host, such as a local mock.
func WithBaseURL(baseURL string) Option {
	return func(a *Agent) {
		a.endpoint = strings.TrimRight(baseURL, "/") + RunsPath
	}
}

// WithCredentials replaces the process environment as credential source.
func WithCredentials(src config.Source) Option {
	return func(a *Agent) { a.creds = src }
}

// WithEnvNames sets the variables holding the agent id and API key.
func WithEnvNames(agentIDEnv, apiKeyEnv string) Option {
	return func(a *Agent) {
		a.agentIDEnv = agentIDEnv
		a.apiKeyEnv = apiKeyEnv
	}
}

// WithHTTPClient replaces the default client. Set no Timeout on it: the
// caller's context is the only deadline.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Agent) { a.client = c }
}

// NewAgent creates an agent serving info. Defaults: api.you.com,
// YOUCOM_AGENT_ID/YOUCOM_API_KEY read from the environment.
func NewAgent(info lm.ChatInformation, opts ...Option) *Agent {
	a := &Agent{
		info:       info,
		endpoint:   config.DefaultBaseURL + RunsPath,
		agentIDEnv: config.EnvAgentID,
		apiKeyEnv:  config.EnvAPIKey,
		creds:      config.Environ{},
		client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromConfig builds one agent per configured identity.
func FromConfig(cfg *config.Config, creds config.Source) []*Agent {
	out := make([]*Agent, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		out = append(out, NewAgent(InfoFromConfig(ac),
			WithBaseURL(cfg.YouCom.BaseURL),
			WithEnvNames(ac.AgentIDEnv, ac.APIKeyEnv),
			WithCredentials(creds),
		))
	}
	return out
}

// InfoFromConfig converts a configured identity to a descriptor. Tool calling
// is never advertised.
func InfoFromConfig(ac config.AgentConfig) lm.ChatInformation {
	return lm.ChatInformation{
		ID:              ac.ID,
		Name:            ac.Name,
		Family:          ac.Family,
		Version:         ac.Version,
		MaxInputTokens:  ac.MaxInputTokens,
		MaxOutputTokens: ac.MaxOutputTokens,
	}
}

func (a *Agent) Info() lm.ChatInformation { return a.info }

// Configured reports whether both credentials currently resolve.
func (a *Agent) Configured() bool {
	return config.Present(a.creds, a.agentIDEnv) && config.Present(a.creds, a.apiKeyEnv)
}

type runRequest struct {
	Agent  string `json:"agent"`
	Input  string `json:"input"`
	Stream bool   `json:"stream"`
}

// Handle performs one agent run and reports exactly one text part, or none
// when ctx is done before the run starts or before its response is used.
// opts is accepted for interface parity and ignored.
func (a *Agent) Handle(ctx context.Context, messages []lm.ChatMessage, progress lm.Progress, _ lm.ResponseOptions) {
	if ctx.Err() != nil {
		return
	}
	report := func(text string) { progress.Report(lm.TextPart{Value: text}) }

	agentID, ok := a.lookup(a.agentIDEnv)
	if !ok {
		report(fmt.Sprintf(MsgMissingEnv, a.agentIDEnv))
		return
	}
	apiKey, ok := a.lookup(a.apiKeyEnv)
	if !ok {
		report(fmt.Sprintf(MsgMissingEnv, a.apiKeyEnv))
		return
	}

	prompt := lm.FlattenPrompt(messages)
	if prompt == "" {
		report(MsgNoPrompt)
		return
	}

	log := logger.Logger().With("agent", a.info.ID, "invocation", uuid.NewString())

	resp, body, err := a.post(ctx, log, apiKey, runRequest{Agent: agentID, Input: prompt})
	if err != nil {
		log.Error("You.com network request failed", "error", err)
		report(MsgUnreachable)
		return
	}

	if ctx.Err() != nil {
		log.Debug("You.com response discarded after cancellation", "status", resp.StatusCode)
		return
	}

	parsed, err := parsePayload(body)
	if err != nil {
		log.Error("Failed to parse You.com response JSON", "error", err, "status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, ok := parsed.message()
		if !ok {
			details = statusText(resp)
		}
		log.Warn("You.com API request failed", "status", resp.StatusCode, "details", details)
		report(fmt.Sprintf(MsgRequestFail, details))
		return
	}

	output, ok := parsed.output(log)
	if !ok {
		output = MsgEmptyOutcome
	}
	report(output)
}

func (a *Agent) lookup(key string) (string, bool) {
	v, ok := a.creds.Lookup(key)
	return v, ok && v != ""
}

// post sends the run and reads the body. The request context is cancelled on
// every return path, releasing its registration with ctx.
func (a *Agent) post(ctx context.Context, log *slog.Logger, apiKey string, run runRequest) (*http.Response, []byte, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return nil, nil, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		// Treated like an unparseable body, not a transport failure.
		log.Warn("Reading You.com response body failed", "error", err)
	}
	if int64(len(body)) > maxResponseBody {
		log.Warn("You.com response exceeds limit, truncated", "limit", maxResponseBody, "status", resp.StatusCode)
		body = body[:maxResponseBody]
	}
	return resp, body, nil
}

// statusText is the reason phrase of resp, without the numeric code.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
