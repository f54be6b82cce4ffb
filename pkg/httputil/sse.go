package httputil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
)

var (
	dataPrefix = []byte("data: ")
	doneLine   = []byte("data: [DONE]")
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSEWriter writes server-sent events, flushing after each one. Safe for
// concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers on w.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteJSON sends v as one data event.
func (s *SSEWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(dataPrefix, data, []byte("\n\n"))
}

// Done sends the [DONE] terminator.
func (s *SSEWriter) Done() error {
	return s.write(doneLine, []byte("\n\n"))
}

func (s *SSEWriter) write(chunks ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if _, err := s.w.Write(c); err != nil {
			return err
		}
	}
	s.flusher.Flush()
	return nil
}

// ProcessSSEStream reads server-sent events from io.Reader and invokes the callback for each 'data:' payload
func ProcessSSEStream(r io.Reader, onData func(data []byte) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if bytes.Equal(line, doneLine) {
			break
		}
		if bytes.HasPrefix(line, dataPrefix) {
			if err := onData(bytes.TrimPrefix(line, dataPrefix)); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
