package history

import (
	"sync"

	"github.com/kisite/chatbot-gateway/internal/llm"
)

const DefaultLimit = 10

// Store keeps a bounded rolling conversation per user identifier, in process
// memory only. Entries live for the process lifetime unless cleared.
type Store struct {
	mu    sync.Mutex
	limit int
	turns map[string][]llm.Message
}

func New(limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{
		limit: limit,
		turns: make(map[string][]llm.Message),
	}
}

// Append adds a turn for the user, evicting the oldest turns first whenever
// the bound would be exceeded.
func (s *Store) Append(userID string, message llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[userID], message)
	if len(turns) > s.limit {
		turns = turns[len(turns)-s.limit:]
	}
	s.turns[userID] = turns
}

// Snapshot returns a copy of the user's history, oldest first.
func (s *Store) Snapshot(userID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns[userID]
	out := make([]llm.Message, len(turns))
	copy(out, turns)
	return out
}

// Clear drops the user's history. Clearing an unknown user is a no-op.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
}

func (s *Store) Len(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns[userID])
}
