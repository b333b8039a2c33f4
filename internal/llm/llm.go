package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("completion service unavailable")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a rolling conversation, in chat-completions shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer issues one completion call with a system instruction and the
// caller's rolling history.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
}
