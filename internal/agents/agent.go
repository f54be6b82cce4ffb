package agents

import (
	"context"

	"youcomagents/internal/lm"
)

// Agent pairs a model descriptor with the handler that serves it.
type Agent interface {
	// Info returns the immutable descriptor; Info().ID is the dispatch key.
	Info() lm.ChatInformation

	// Handle runs one invocation. It never fails: every outcome, including
	// errors, is reported as text through progress. A context that is already
	// done produces no report.
	Handle(ctx context.Context, messages []lm.ChatMessage, progress lm.Progress, opts lm.ResponseOptions)
}
