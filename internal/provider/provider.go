package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"youcomagents/internal/agents"
	"youcomagents/internal/lm"
	"youcomagents/pkg/logger"
)

// MsgUnknownAgent is reported when a request names no registered agent.
const MsgUnknownAgent = "Unknown agent."

var ErrDuplicateAgent = errors.New("agent already registered")

// ChatProvider is the model provider registered with the host. It lists the
// registered agents, dispatches chat requests to them by model ID and
// estimates token counts.
type ChatProvider struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]agents.Agent
}

// New creates a provider serving list. It panics on a duplicate ID.
func New(list ...agents.Agent) *ChatProvider {
	p := &ChatProvider{entries: make(map[string]agents.Agent)}
	for _, a := range list {
		if err := p.Register(a); err != nil {
			panic(err)
		}
	}
	return p
}

// Register adds an agent. IDs must be unique.
func (p *ChatProvider) Register(a agents.Agent) error {
	id := a.Info().ID
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.entries[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, id)
	}
	p.entries[id] = a
	p.order = append(p.order, id)
	return nil
}

// ProvideChatInformation lists every registered agent in registration order.
// A silent discovery probe gets an empty list. Missing credentials are
// reported when the agent runs, not here.
func (p *ChatProvider) ProvideChatInformation(_ context.Context, opts lm.PrepareOptions) []lm.ChatInformation {
	if opts.Silent {
		return []lm.ChatInformation{}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]lm.ChatInformation, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id].Info())
	}
	return out
}

// ProvideChatResponse runs messages against the agent matching model.ID.
// It never fails; unknown models get MsgUnknownAgent.
func (p *ChatProvider) ProvideChatResponse(ctx context.Context, model lm.ChatInformation, messages []lm.ChatMessage, opts lm.ResponseOptions, progress lm.Progress) {
	if ctx.Err() != nil {
		return
	}

	p.mu.RLock()
	a, ok := p.entries[model.ID]
	p.mu.RUnlock()
	if !ok {
		logger.Warn("Chat request for unknown agent", "model", model.ID)
		progress.Report(lm.TextPart{Value: MsgUnknownAgent})
		return
	}

	logger.Debug("Dispatching chat request", "model", model.ID, "messages", len(messages))
	a.Handle(ctx, messages, progress, opts)
}

// ProvideTokenCount estimates tokens as ceil(chars/4). It does not tokenize
// and ignores model and ctx.
func (p *ChatProvider) ProvideTokenCount(_ context.Context, _ lm.ChatInformation, src lm.TokenSource) int {
	return lm.EstimateTokens(src.TextContent())
}

// Lookup returns the descriptor registered under id.
func (p *ChatProvider) Lookup(id string) (lm.ChatInformation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.entries[id]
	if !ok {
		return lm.ChatInformation{}, false
	}
	return a.Info(), true
}
