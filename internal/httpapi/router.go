package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kisite/chatbot-gateway/internal/config"
	"github.com/kisite/chatbot-gateway/internal/gateway"
	"github.com/kisite/chatbot-gateway/internal/knowledge"
	"github.com/kisite/chatbot-gateway/internal/store"
	"github.com/kisite/chatbot-gateway/internal/transcript"
)

type MessageGateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error)
	ClearHistory(userID string)
}

type ConversationStore interface {
	List() ([]transcript.Entry, error)
	Read(userID string) (string, error)
	Sweep() (int, error)
}

// CompletionProber reports whether the external completion endpoint is
// reachable, for the health report.
type CompletionProber interface {
	Probe(ctx context.Context) error
}

type Dependencies struct {
	Config        config.Config
	Gateway       MessageGateway
	Conversations ConversationStore
	Knowledge     *knowledge.Base
	Store         *store.Store
	Prober        CompletionProber
	Logger        *slog.Logger
	StartedAt     time.Time
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealthz)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/chat", rt.handleChat)
	mux.HandleFunc("/api/v1/chat/clear", rt.handleChatClear)
	mux.HandleFunc("/api/v1/conversations", rt.handleConversations)
	mux.HandleFunc("/api/v1/conversations/get", rt.handleConversationGet)
	mux.HandleFunc("/api/v1/conversations/cleanup", rt.handleConversationsCleanup)
	mux.HandleFunc("/api/v1/profiles", rt.handleProfiles)
	mux.HandleFunc("/api/v1/health", rt.handleHealth)
	mux.HandleFunc("/api/v1/knowledge", rt.handleKnowledge)
	mux.HandleFunc("/ws/chat", rt.handleChatSocket)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
