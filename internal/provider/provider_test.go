package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youcomagents/internal/agents/youcom"
	"youcomagents/internal/config"
	"youcomagents/internal/lm"
)

// --- stubs ---

type stubAgent struct {
	info lm.ChatInformation

	mu    sync.Mutex
	calls [][]lm.ChatMessage
}

func newStub(id string) *stubAgent {
	return &stubAgent{info: lm.ChatInformation{ID: id, Name: id, Family: "stub", Version: "0.1.0"}}
}

func (s *stubAgent) Info() lm.ChatInformation { return s.info }

func (s *stubAgent) Handle(_ context.Context, messages []lm.ChatMessage, progress lm.Progress, _ lm.ResponseOptions) {
	s.mu.Lock()
	s.calls = append(s.calls, messages)
	s.mu.Unlock()
	progress.Report(lm.TextPart{Value: "handled by " + s.info.ID})
}

func (s *stubAgent) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func ids(infos []lm.ChatInformation) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.ID
	}
	return out
}

func hello() []lm.ChatMessage {
	return []lm.ChatMessage{{Role: lm.RoleUser, Content: []lm.Part{lm.TextPart{Value: "hi"}}}}
}

// --- listing ---

func TestProvideChatInformation(t *testing.T) {
	p := New(newStub("a"), newStub("b"), newStub("c"))
	ctx := context.Background()

	assert.Equal(t, []string{"a", "b", "c"}, ids(p.ProvideChatInformation(ctx, lm.PrepareOptions{})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(p.ProvideChatInformation(ctx, lm.PrepareOptions{Silent: false})))

	silent := p.ProvideChatInformation(ctx, lm.PrepareOptions{Silent: true})
	assert.NotNil(t, silent)
	assert.Empty(t, silent)
}

func TestProvideChatInformation_EmptyRegistry(t *testing.T) {
	p := New()
	assert.Empty(t, p.ProvideChatInformation(context.Background(), lm.PrepareOptions{}))
}

func TestProvideChatInformation_ListsFullRegistry(t *testing.T) {
	p := New(newStub("a"), newStub("unconfigured"))
	ctx := context.Background()

	assert.Equal(t, []string{"a", "unconfigured"}, ids(p.ProvideChatInformation(ctx, lm.PrepareOptions{})))

	// every listed agent is dispatchable
	for _, info := range p.ProvideChatInformation(ctx, lm.PrepareOptions{}) {
		var rec lm.Recorder
		p.ProvideChatResponse(ctx, info, hello(), lm.ResponseOptions{}, &rec)
		assert.Equal(t, []string{"handled by " + info.ID}, rec.Texts())
	}
}

// --- registration ---

func TestRegister_Duplicate(t *testing.T) {
	p := New(newStub("a"))
	err := p.Register(newStub("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAgent))

	assert.Panics(t, func() { New(newStub("x"), newStub("x")) })
}

func TestLookup(t *testing.T) {
	p := New(newStub("a"))
	info, ok := p.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "a", info.ID)

	_, ok = p.Lookup("missing")
	assert.False(t, ok)
}

// --- dispatch ---

func TestProvideChatResponse_DispatchesByID(t *testing.T) {
	a, b := newStub("a"), newStub("b")
	p := New(a, b)

	var rec lm.Recorder
	p.ProvideChatResponse(context.Background(), b.Info(), hello(), lm.ResponseOptions{}, &rec)

	assert.Equal(t, []string{"handled by b"}, rec.Texts())
	assert.Zero(t, a.callCount())
	assert.Equal(t, 1, b.callCount())
}

func TestProvideChatResponse_UnknownAgent(t *testing.T) {
	a := newStub("a")
	p := New(a)

	for _, messages := range [][]lm.ChatMessage{nil, hello()} {
		var rec lm.Recorder
		p.ProvideChatResponse(context.Background(), lm.ChatInformation{ID: "nope"}, messages, lm.ResponseOptions{}, &rec)
		assert.Equal(t, []lm.Part{lm.TextPart{Value: MsgUnknownAgent}}, rec.Parts())
	}
	assert.Zero(t, a.callCount())
}

func TestProvideChatResponse_PreCancelled(t *testing.T) {
	a := newStub("a")
	p := New(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, id := range []string{"a", "unknown"} {
		var rec lm.Recorder
		p.ProvideChatResponse(ctx, lm.ChatInformation{ID: id}, hello(), lm.ResponseOptions{}, &rec)
		assert.Empty(t, rec.Parts())
	}
	assert.Zero(t, a.callCount())
}

func TestProvideChatResponse_Concurrent(t *testing.T) {
	a := newStub("a")
	p := New(a)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var rec lm.Recorder
			p.ProvideChatResponse(context.Background(), a.Info(), hello(), lm.ResponseOptions{}, &rec)
			assert.Len(t, rec.Parts(), 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, a.callCount())
}

// --- token counting ---

func TestProvideTokenCount(t *testing.T) {
	p := New()
	ctx := context.Background()
	model := lm.ChatInformation{ID: "any"}

	for n, want := range map[int]int{0: 0, 1: 1, 2: 1, 3: 1, 4: 1, 5: 2, 8: 2, 9: 3, 400: 100} {
		assert.Equal(t, want, p.ProvideTokenCount(ctx, model, lm.Text(strings.Repeat("x", n))), "length %d", n)
	}

	msg := lm.ChatMessage{Role: lm.RoleUser, Content: []lm.Part{
		lm.TextPart{Value: "abcd"},
		lm.DataPart{MimeType: "image/png", Data: make([]byte, 1024)},
		lm.TextPart{Value: "e"},
	}}
	assert.Equal(t, 2, p.ProvideTokenCount(ctx, model, msg))
	assert.Equal(t, 0, p.ProvideTokenCount(ctx, model, lm.ChatMessage{}))
}

func TestProvideTokenCount_IgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 3, New().ProvideTokenCount(ctx, lm.ChatInformation{}, lm.Text("0123456789")))
}

// --- wiring from config ---

func TestFromConfig_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"agent":"agent-123","input":"hi","stream":false}`, string(body))
		io.WriteString(w, `{"output":"from you.com"}`)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.YouCom.BaseURL = srv.URL
	cfg.Agents = append(cfg.Agents, config.AgentConfig{
		ID: "youcom-research", Name: "Research", Family: "youcom",
		AgentIDEnv: "RESEARCH_ID", APIKeyEnv: config.EnvAPIKey,
	})
	creds := config.MapSource{config.EnvAgentID: "agent-123", config.EnvAPIKey: "key"}

	p, err := FromConfig(cfg, creds)
	require.NoError(t, err)

	// the unconfigured agent is still listed; it reports its missing variable when run
	ctx := context.Background()
	assert.Equal(t, []string{youcom.Info.ID, "youcom-research"}, ids(p.ProvideChatInformation(ctx, lm.PrepareOptions{})))

	var rec lm.Recorder
	p.ProvideChatResponse(ctx, youcom.Info, hello(), lm.ResponseOptions{}, &rec)
	assert.Equal(t, []string{"from you.com"}, rec.Texts())

	var missing lm.Recorder
	p.ProvideChatResponse(ctx, lm.ChatInformation{ID: "youcom-research"}, hello(), lm.ResponseOptions{}, &missing)
	assert.Equal(t, []string{"Missing RESEARCH_ID environment variable."}, missing.Texts())
}

func TestFromConfig_EnabledWhen(t *testing.T) {
	cfg := config.Default()
	cfg.Agents = append(cfg.Agents,
		config.AgentConfig{ID: "research", Family: "youcom", AgentIDEnv: "RESEARCH_ID", APIKeyEnv: config.EnvAPIKey, EnabledWhen: "Configured"},
		config.AgentConfig{ID: "beta", Family: "youcom", EnabledWhen: `Version startsWith "2."`},
	)
	require.NoError(t, cfg.Finalize())

	tests := []struct {
		name  string
		creds config.MapSource
		want  []string
	}{
		{"research unconfigured", config.MapSource{}, []string{youcom.Info.ID}},
		{"research configured", config.MapSource{"RESEARCH_ID": "r", config.EnvAPIKey: "k"}, []string{youcom.Info.ID, "research"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := FromConfig(cfg, tc.creds)
			require.NoError(t, err)
			ctx := context.Background()
			assert.Equal(t, tc.want, ids(p.ProvideChatInformation(ctx, lm.PrepareOptions{})))

			// a disabled agent is unknown to dispatch as well
			var rec lm.Recorder
			p.ProvideChatResponse(ctx, lm.ChatInformation{ID: "beta"}, hello(), lm.ResponseOptions{}, &rec)
			assert.Equal(t, []string{MsgUnknownAgent}, rec.Texts())
		})
	}
}

func TestFromConfig_BadRule(t *testing.T) {
	cfg := config.Default()
	cfg.Agents[0].EnabledWhen = "Configured &&"
	_, err := FromConfig(cfg, config.MapSource{})
	assert.Error(t, err)
}
