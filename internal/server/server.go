package server

import (
	"context"
	"encoding/json"
	"net/http"

	"youcomagents/internal/lm"
	"youcomagents/pkg/httputil"
	"youcomagents/pkg/logger"
)

// ChatService is the provider surface the bridge exposes.
type ChatService interface {
	ProvideChatInformation(ctx context.Context, opts lm.PrepareOptions) []lm.ChatInformation
	ProvideChatResponse(ctx context.Context, model lm.ChatInformation, messages []lm.ChatMessage, opts lm.ResponseOptions, progress lm.Progress)
	ProvideTokenCount(ctx context.Context, model lm.ChatInformation, src lm.TokenSource) int
	Lookup(id string) (lm.ChatInformation, bool)
}

// Server is a local HTTP host for the chat provider.
type Server struct {
	svc ChatService
}

// NewServer initialises the HTTP bridge.
func NewServer(svc ChatService) *Server {
	return &Server{svc: svc}
}

// Handler returns the bridge routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", s.handleModels)
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("POST /v1/tokens", s.handleTokens)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Start starts the standard library net/http server
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	logger.Info("Starting chat provider bridge", "addr", addr)
	return server.ListenAndServe()
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	silent := r.URL.Query().Get("silent") == "true"
	models := s.svc.ProvideChatInformation(r.Context(), lm.PrepareOptions{Silent: silent})
	writeJSON(w, http.StatusOK, modelsResponse{Models: models})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request JSON", http.StatusBadRequest)
		return
	}

	sse, err := httputil.NewSSEWriter(w)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	model := s.model(req.Model)
	messages := make([]lm.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = m.toMessage()
	}

	progress := lm.ProgressFunc(func(p lm.Part) {
		if err := sse.WriteJSON(fromPart(p)); err != nil {
			logger.Warn("Writing response part failed", "model", model.ID, "error", err)
		}
	})
	// The request context ends when the client disconnects, cancelling the run.
	s.svc.ProvideChatResponse(r.Context(), model, messages, req.Options.toOptions(), progress)

	if err := sse.Done(); err != nil {
		logger.Debug("Client gone before stream end", "model", model.ID, "error", err)
	}
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	var req tokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request JSON", http.StatusBadRequest)
		return
	}

	var src lm.TokenSource
	switch {
	case req.Message != nil:
		src = req.Message.toMessage()
	case req.Text != nil:
		src = lm.Text(*req.Text)
	default:
		http.Error(w, "text or message is required", http.StatusBadRequest)
		return
	}

	n := s.svc.ProvideTokenCount(r.Context(), s.model(req.Model), src)
	writeJSON(w, http.StatusOK, tokensResponse{Tokens: n})
}

// model resolves id to its descriptor; unknown ids pass through so the
// provider can report them.
func (s *Server) model(id string) lm.ChatInformation {
	if info, ok := s.svc.Lookup(id); ok {
		return info
	}
	return lm.ChatInformation{ID: id}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Encoding response failed", "error", err)
	}
}
