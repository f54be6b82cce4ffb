package server

import "youcomagents/internal/lm"

type modelsResponse struct {
	Models []lm.ChatInformation `json:"models"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Options  wireOptions   `json:"options"`
}

type tokensRequest struct {
	Model   string       `json:"model"`
	Text    *string      `json:"text"`
	Message *wireMessage `json:"message"`
}

type tokensResponse struct {
	Tokens int `json:"tokens"`
}

type wireMessage struct {
	Role    string     `json:"role"`
	Name    string     `json:"name,omitempty"`
	Content []wirePart `json:"content"`
}

// wirePart is a content part tagged by Type: text, data, tool_call or
// tool_result. Unrecognized types decode as data.
type wirePart struct {
	Type     string         `json:"type"`
	Value    string         `json:"value,omitempty"`
	MimeType string         `json:"mimeType,omitempty"`
	Data     []byte         `json:"data,omitempty"`
	CallID   string         `json:"callId,omitempty"`
	Name     string         `json:"name,omitempty"`
	Input    map[string]any `json:"input,omitempty"`
	Content  []wirePart     `json:"content,omitempty"`
}

type wireOptions struct {
	ToolMode     string         `json:"toolMode"`
	ModelOptions map[string]any `json:"modelOptions"`
}

func (m wireMessage) toMessage() lm.ChatMessage {
	return lm.ChatMessage{Role: lm.Role(m.Role), Name: m.Name, Content: toParts(m.Content)}
}

func toParts(in []wirePart) []lm.Part {
	out := make([]lm.Part, 0, len(in))
	for _, p := range in {
		out = append(out, p.toPart())
	}
	return out
}

func (p wirePart) toPart() lm.Part {
	switch p.Type {
	case "text":
		return lm.TextPart{Value: p.Value}
	case "tool_call":
		return lm.ToolCallPart{CallID: p.CallID, Name: p.Name, Input: p.Input}
	case "tool_result":
		return lm.ToolResultPart{CallID: p.CallID, Content: toParts(p.Content)}
	default:
		return lm.DataPart{MimeType: p.MimeType, Data: p.Data}
	}
}

func fromPart(p lm.Part) wirePart {
	switch v := p.(type) {
	case lm.TextPart:
		return wirePart{Type: "text", Value: v.Value}
	case lm.DataPart:
		return wirePart{Type: "data", MimeType: v.MimeType, Data: v.Data}
	default:
		return wirePart{Type: lm.Kind(p)}
	}
}

func (o wireOptions) toOptions() lm.ResponseOptions {
	mode := lm.ToolModeAuto
	if o.ToolMode == "required" {
		mode = lm.ToolModeRequired
	}
	return lm.ResponseOptions{ToolMode: mode, ModelOptions: o.ModelOptions}
}
