// Package graph is a small state-graph engine: named nodes transform an
// immutable key-value state, predicate edges route between them, and
// execution walks from an entry point until it lands on an exit point.
//
// The turn runtime builds its agent/tools/output loop on top of it.
package graph

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/valuegraph/analyst/observability"
)

// State is the immutable key-value document flowing through graph
// execution. Mutating operations return a new State; the original is
// never touched. RunID identifies one execution end to end.
type State struct {
	Data      map[string]any         `json:"data"`
	Observer  observability.Observer `json:"-"`
	RunID     string                 `json:"run_id"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewState creates an empty State with the given observer.
// A nil observer is replaced with NoOpObserver.
func NewState(observer observability.Observer) State {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	s := State{
		Data:      make(map[string]any),
		Observer:  observer,
		RunID:     uuid.New().String(),
		Timestamp: time.Now(),
	}

	observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStateCreate,
		Level:     observability.LevelVerbose,
		Timestamp: s.Timestamp,
		Source:    "state",
		Data:      map[string]any{"run_id": s.RunID},
	})

	return s
}

// Clone returns an independent copy sharing the observer reference.
func (s State) Clone() State {
	return State{
		Data:      maps.Clone(s.Data),
		Observer:  s.Observer,
		RunID:     s.RunID,
		Timestamp: s.Timestamp,
	}
}

// Get retrieves a value by key.
func (s State) Get(key string) (any, bool) {
	val, exists := s.Data[key]
	return val, exists
}

// Set returns a new State with key set to value.
func (s State) Set(key string, value any) State {
	next := s.Clone()
	next.Data[key] = value

	s.Observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStateSet,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "state",
		Data:      map[string]any{"key": key},
	})

	return next
}

// Delete returns a new State with key removed.
func (s State) Delete(key string) State {
	next := s.Clone()
	delete(next.Data, key)
	return next
}
