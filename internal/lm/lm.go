// Package lm holds the host-side language-model types the bridge is written
// against: model descriptors, chat messages with typed content parts, and the
// progress sink responses are reported through.
package lm

import (
	"strings"
	"unicode/utf16"
)

// Capabilities lists optional model features.
type Capabilities struct {
	ToolCalling bool `json:"toolCalling"`
}

// ChatInformation describes one chat model offered to the host.
// MaxInputTokens and MaxOutputTokens are advisory only.
type ChatInformation struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Family          string       `json:"family"`
	Version         string       `json:"version"`
	MaxInputTokens  int          `json:"maxInputTokens"`
	MaxOutputTokens int          `json:"maxOutputTokens"`
	Capabilities    Capabilities `json:"capabilities"`
}

// Role tags the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one host message. Only TextPart content carries prompt text.
type ChatMessage struct {
	Role    Role
	Name    string
	Content []Part
}

// TextContent concatenates the message's text parts, skipping every other kind.
func (m ChatMessage) TextContent() string {
	var b strings.Builder
	for _, p := range m.Content {
		if t, ok := p.(TextPart); ok {
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

// Text is a raw string submitted for token counting.
type Text string

func (t Text) TextContent() string { return string(t) }

// TokenSource is anything the provider can estimate tokens for.
type TokenSource interface {
	TextContent() string
}

// FlattenPrompt joins the text of every message with newlines and trims the
// result. Roles and message boundaries beyond ordering are dropped.
func FlattenPrompt(messages []ChatMessage) string {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.TextContent()
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// EstimateTokens is a coarse ceil(chars/4) approximation, not a tokenizer.
// Characters are UTF-16 code units, so a supplementary-plane rune counts twice.
func EstimateTokens(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return (n + 3) / 4
}
