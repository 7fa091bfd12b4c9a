// Package session manages conversation history for the turn loop.
//
// A session is the append-only message log shared across a whole interaction.
// It owns one structural invariant: when the log is non-empty, position 0
// holds the single system message, and no system message ever appears later.
// System content enters only through EnsureSystem; AddMessage rejects
// system-role messages.
package session

import (
	"errors"

	"github.com/valuegraph/analyst/core/protocol"
)

// ErrMisplacedSystem is returned by AddMessage when given a system-role
// message. The system preamble is managed exclusively by EnsureSystem.
var ErrMisplacedSystem = errors.New("system messages may only occupy position 0")

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// EnsureSystem guarantees the system preamble occupies position 0.
	// On an empty log it appends the system message; when position 0 is a
	// non-system message it prepends one; when position 0 already holds a
	// system message its content is updated in place. This is the only
	// permitted non-append mutation of the log.
	EnsureSystem(content string)
	// AddMessage appends a message to the conversation history.
	// Returns ErrMisplacedSystem for system-role messages.
	AddMessage(msg protocol.Message) error
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Clear resets the conversation history.
	Clear()
}
