package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kisite/chatbot-gateway/internal/knowledge"
	"github.com/kisite/chatbot-gateway/internal/llm"
	"github.com/kisite/chatbot-gateway/internal/store"
)

var ErrEmptyMessage = errors.New("message is required")

// Matcher is the keyword rule engine consulted before any completion call.
type Matcher interface {
	Match(message string, kb *knowledge.Base) (string, bool)
}

// Fallback answers unmatched messages; it never fails outward.
type Fallback interface {
	Respond(ctx context.Context, userID, message string) string
	History(userID string) []llm.Message
	ClearHistory(userID string)
}

// TranscriptAppender records the exchange; failures stay inside the
// implementation.
type TranscriptAppender interface {
	Append(userID, userMessage, botReply string)
}

type ProfileStore interface {
	TouchProfile(ctx context.Context, input store.TouchProfileInput) error
}

type MessageInput struct {
	Connector   string
	UserID      string
	DisplayName string
	Text        string
}

type MessageOutput struct {
	Reply   string
	Matched bool
	History []llm.Message
}

// Service routes one inbound message: FAQ rules first, completion fallback
// otherwise, transcript append always.
type Service struct {
	kb          *knowledge.Base
	matcher     Matcher
	fallback    Fallback
	transcripts TranscriptAppender
	profiles    ProfileStore
	logger      *slog.Logger
}

func New(kb *knowledge.Base, matcher Matcher, fallback Fallback, transcripts TranscriptAppender, profiles ProfileStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kb:          kb,
		matcher:     matcher,
		fallback:    fallback,
		transcripts: transcripts,
		profiles:    profiles,
		logger:      logger,
	}
}

func (s *Service) HandleMessage(ctx context.Context, input MessageInput) (MessageOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return MessageOutput{}, ErrEmptyMessage
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = "test-user"
	}

	reply, matched := s.matcher.Match(text, s.kb)
	if !matched {
		reply = s.fallback.Respond(ctx, userID, text)
	}

	if s.transcripts != nil {
		s.transcripts.Append(userID, text, reply)
	}
	if s.profiles != nil {
		if err := s.profiles.TouchProfile(ctx, store.TouchProfileInput{
			UserID:      userID,
			Connector:   input.Connector,
			DisplayName: input.DisplayName,
		}); err != nil {
			s.logger.Warn("profile touch failed", "error", err, "user_id", userID)
		}
	}

	return MessageOutput{
		Reply:   reply,
		Matched: matched,
		History: s.fallback.History(userID),
	}, nil
}

// ClearHistory drops the in-memory context for a user. Idempotent.
func (s *Service) ClearHistory(userID string) {
	s.fallback.ClearHistory(strings.TrimSpace(userID))
}
