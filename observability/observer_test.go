package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valuegraph/analyst/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  string
	}{
		{observability.LevelVerbose, "DEBUG"},
		{observability.LevelInfo, "INFO"},
		{observability.LevelWarning, "WARN"},
		{observability.LevelError, "ERROR"},
		{observability.Level(2), "TRACE"},
		{observability.Level(25), "FATAL"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "turn.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "turn.Runner",
		Data:      map[string]any{"iteration": 1},
	})

	output := buf.String()
	if !strings.Contains(output, "turn.start") {
		t.Errorf("output missing event type: %s", output)
	}
	if !strings.Contains(output, "source=turn.Runner") {
		t.Errorf("output missing source attribute: %s", output)
	}
	if !strings.Contains(output, "iteration=1") {
		t.Errorf("output missing data attribute: %s", output)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestMultiObserver(t *testing.T) {
	first := &recordingObserver{}
	second := &recordingObserver{}

	multi := observability.NewMultiObserver(first, nil, second)
	multi.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if len(first.events) != 1 {
		t.Errorf("first observer got %d events, want 1", len(first.events))
	}
	if len(second.events) != 1 {
		t.Errorf("second observer got %d events, want 1", len(second.events))
	}
}

func TestNoOpObserver(t *testing.T) {
	// Must not panic.
	observability.NoOpObserver{}.OnEvent(context.Background(), observability.Event{Type: "ignored"})
}
