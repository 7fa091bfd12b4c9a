// Package transcript persists conversation logs so sessions survive process
// restarts and can be inspected after the fact.
package transcript

import (
	"context"
	"errors"
	"time"

	"github.com/valuegraph/analyst/core/protocol"
)

// Sentinel errors for store operations.
var (
	ErrNotFound   = errors.New("transcript not found")
	ErrLoadFailed = errors.New("transcript load failed")
	ErrSaveFailed = errors.New("transcript save failed")
)

// Transcript is one session's persisted conversation.
type Transcript struct {
	SessionID string             `json:"session_id"`
	SavedAt   time.Time          `json:"saved_at"`
	Messages  []protocol.Message `json:"messages"`
}

// Store persists transcripts keyed by session ID. Implementations are
// stateless and perform I/O on each call.
type Store interface {
	// List returns the session IDs of all stored transcripts.
	List(ctx context.Context) ([]string, error)
	// Load retrieves the transcript for a session ID.
	Load(ctx context.Context, sessionID string) (*Transcript, error)
	// Save persists a transcript, creating or overwriting as needed.
	Save(ctx context.Context, t *Transcript) error
	// Delete removes a transcript. Missing IDs are ignored.
	Delete(ctx context.Context, sessionID string) error
}
