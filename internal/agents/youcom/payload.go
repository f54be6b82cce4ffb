package youcom

import (
	"bytes"
	"encoding/json"
	"log/slog"
)

// payload is the loosely-typed run response. Any field may be absent or of an
// unexpected JSON type.
type payload struct {
	Output  json.RawMessage `json:"output"`
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// parsePayload decodes body. A nil payload with a nil error means the body was
// JSON null.
func parsePayload(body []byte) (*payload, error) {
	var p *payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// output resolves the successful result: a string output verbatim, an object
// or array output as compact JSON, otherwise the extracted message.
func (p *payload) output(log *slog.Logger) (string, bool) {
	if p == nil {
		return "", false
	}
	if s, ok := jsonString(p.Output); ok {
		return s, true
	}
	if isComposite(p.Output) {
		var buf bytes.Buffer
		err := json.Compact(&buf, p.Output)
		if err == nil {
			return buf.String(), true
		}
		log.Error("Unable to serialize You.com output payload", "error", err)
	}
	return p.message()
}

// message picks, in order: a string message, a string error, or the string
// message of an error object.
func (p *payload) message() (string, bool) {
	if p == nil {
		return "", false
	}
	if s, ok := jsonString(p.Message); ok {
		return s, true
	}
	if s, ok := jsonString(p.Error); ok {
		return s, true
	}
	if len(p.Error) > 0 && p.Error[0] == '{' {
		var obj struct {
			Message json.RawMessage `json:"message"`
		}
		if json.Unmarshal(p.Error, &obj) == nil {
			return jsonString(obj.Message)
		}
	}
	return "", false
}

func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isComposite(raw json.RawMessage) bool {
	return len(raw) > 0 && (raw[0] == '{' || raw[0] == '[')
}
