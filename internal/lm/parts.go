package lm

import "sync"

// Part is one piece of message or response content.
type Part interface {
	partKind() string
}

// TextPart carries plain text.
type TextPart struct {
	Value string
}

// DataPart carries binary content such as an image.
type DataPart struct {
	MimeType string
	Data     []byte
}

// ToolCallPart is a model's request to run a tool.
type ToolCallPart struct {
	CallID string
	Name   string
	Input  map[string]any
}

// ToolResultPart carries a tool's output back to the model.
type ToolResultPart struct {
	CallID  string
	Content []Part
}

func (TextPart) partKind() string       { return "text" }
func (DataPart) partKind() string       { return "data" }
func (ToolCallPart) partKind() string   { return "tool_call" }
func (ToolResultPart) partKind() string { return "tool_result" }

// Kind returns the wire name of a part's type.
func Kind(p Part) string { return p.partKind() }

// Progress receives response parts as they are produced.
type Progress interface {
	Report(part Part)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(Part)

func (f ProgressFunc) Report(p Part) { f(p) }

// Recorder is a Progress that keeps every reported part. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	parts []Part
}

func (r *Recorder) Report(p Part) {
	r.mu.Lock()
	r.parts = append(r.parts, p)
	r.mu.Unlock()
}

// Parts returns a copy of the parts reported so far.
func (r *Recorder) Parts() []Part {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Part(nil), r.parts...)
}

// Texts returns the values of the reported text parts.
func (r *Recorder) Texts() []string {
	var out []string
	for _, p := range r.Parts() {
		if t, ok := p.(TextPart); ok {
			out = append(out, t.Value)
		}
	}
	return out
}

// PrepareOptions accompanies a model listing request.
type PrepareOptions struct {
	// Silent marks a background discovery probe; no models are surfaced.
	Silent bool
}

// ToolMode selects how a model may use tools.
type ToolMode int

const (
	ToolModeAuto ToolMode = iota + 1
	ToolModeRequired
)

// ResponseOptions is the per-call configuration passed with a chat request.
type ResponseOptions struct {
	ToolMode     ToolMode
	ModelOptions map[string]any
}
