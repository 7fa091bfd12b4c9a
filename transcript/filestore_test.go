package transcript_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/transcript"
)

func sample(id string) *transcript.Transcript {
	return &transcript.Transcript{
		SessionID: id,
		SavedAt:   time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleSystem, "You are a value investor."),
			protocol.NewMessage(protocol.RoleUser, "What is Apple's ROE?"),
			{
				Role: protocol.RoleAssistant,
				ToolCalls: []protocol.ToolCall{
					{ID: "call-1", Name: "roe", Arguments: `{"net_income":100,"equity":500}`},
				},
			},
			{Role: protocol.RoleTool, ToolCallID: "call-1", Content: "0.2"},
			protocol.NewMessage(protocol.RoleAssistant, "Apple's ROE is 20%."),
		},
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	store := transcript.NewFileStore(t.TempDir())
	ctx := context.Background()

	want := sample("session-1")
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got.SessionID != want.SessionID {
		t.Errorf("SessionID = %q", got.SessionID)
	}
	if len(got.Messages) != len(want.Messages) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(want.Messages))
	}
	if got.Messages[2].ToolCalls[0].Name != "roe" {
		t.Errorf("tool call did not survive the round trip: %+v", got.Messages[2].ToolCalls)
	}
	if got.Messages[3].ToolCallID != "call-1" {
		t.Errorf("tool call ID did not survive: %+v", got.Messages[3])
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	store := transcript.NewFileStore(t.TempDir())
	ctx := context.Background()

	first := sample("session-1")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	updated := sample("session-1")
	updated.Messages = append(updated.Messages, protocol.NewMessage(protocol.RoleUser, "And Microsoft's?"))
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	got, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(got.Messages) != len(updated.Messages) {
		t.Errorf("got %d messages, want %d (overwritten)", len(got.Messages), len(updated.Messages))
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := transcript.NewFileStore(t.TempDir())
	if _, err := store.Load(context.Background(), "absent"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("Load() error = %v, want %v", err, transcript.ErrNotFound)
	}
}

func TestFileStore_List(t *testing.T) {
	dir := t.TempDir()
	store := transcript.NewFileStore(dir)
	ctx := context.Background()

	for _, id := range []string{"session-1", "session-2"} {
		if err := store.Save(ctx, sample(id)); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}

	// Stray non-transcript files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List() = %v, want 2 ids", ids)
	}
	joined := strings.Join(ids, ",")
	if !strings.Contains(joined, "session-1") || !strings.Contains(joined, "session-2") {
		t.Errorf("List() = %v", ids)
	}
}

func TestFileStore_ListEmptyRoot(t *testing.T) {
	store := transcript.NewFileStore(filepath.Join(t.TempDir(), "never-created"))
	ids, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed on missing root: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List() = %v, want empty", ids)
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := transcript.NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, sample("session-1")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Load(ctx, "session-1"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("Load() after Delete error = %v, want %v", err, transcript.ErrNotFound)
	}

	// Deleting a missing transcript is not an error.
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Errorf("second Delete() failed: %v", err)
	}
}

func TestFileStore_SaveInvalid(t *testing.T) {
	store := transcript.NewFileStore(t.TempDir())
	if err := store.Save(context.Background(), &transcript.Transcript{}); !errors.Is(err, transcript.ErrSaveFailed) {
		t.Errorf("Save() of empty transcript error = %v, want %v", err, transcript.ErrSaveFailed)
	}
}
