package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/valuegraph/analyst/core/protocol"
)

type memorySession struct {
	id       string
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return &memorySession{
		id: uuid.Must(uuid.NewV7()).String(),
	}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) EnsureSystem(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(s.messages) == 0:
		s.messages = append(s.messages, protocol.NewMessage(protocol.RoleSystem, content))
	case s.messages[0].Role != protocol.RoleSystem:
		s.messages = append([]protocol.Message{protocol.NewMessage(protocol.RoleSystem, content)}, s.messages...)
	default:
		s.messages[0].Content = content
	}
}

func (s *memorySession) AddMessage(msg protocol.Message) error {
	if msg.Role == protocol.RoleSystem {
		return ErrMisplacedSystem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	for i, msg := range s.messages {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	return copied
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
