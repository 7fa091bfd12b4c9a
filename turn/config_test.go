package turn_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valuegraph/analyst/turn"
)

func TestDefaultConfig(t *testing.T) {
	cfg := turn.DefaultConfig()

	if cfg.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", cfg.MaxIterations)
	}
	if cfg.Agent.Model != "gemini-1.5-pro" {
		t.Errorf("Agent.Model = %q", cfg.Agent.Model)
	}
	if cfg.Agent.Temperature != 0 {
		t.Errorf("Agent.Temperature = %v, want 0", cfg.Agent.Temperature)
	}
	if cfg.ToolTimeout() != 30*time.Second {
		t.Errorf("ToolTimeout() = %v", cfg.ToolTimeout())
	}
	if cfg.RetryBackoff() != 250*time.Millisecond {
		t.Errorf("RetryBackoff() = %v", cfg.RetryBackoff())
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := turn.DefaultConfig()
	cfg.Merge(&turn.Config{
		MaxIterations: 5,
		SystemPrompt:  "You are terse.",
	})

	if cfg.MaxIterations != 5 {
		t.Errorf("MaxIterations = %d, want 5", cfg.MaxIterations)
	}
	if cfg.SystemPrompt != "You are terse." {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	// Untouched fields keep their defaults.
	if cfg.ToolTimeoutSeconds != 30 {
		t.Errorf("ToolTimeoutSeconds = %d, want 30", cfg.ToolTimeoutSeconds)
	}
	if cfg.Agent.Model != "gemini-1.5-pro" {
		t.Errorf("Agent.Model = %q", cfg.Agent.Model)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"agent": {"model": "gemini-1.5-flash", "temperature": 0.2},
		"max_iterations": 4,
		"tool_retries": 1
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := turn.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Agent.Model != "gemini-1.5-flash" {
		t.Errorf("Agent.Model = %q", cfg.Agent.Model)
	}
	if cfg.Agent.Temperature != 0.2 {
		t.Errorf("Agent.Temperature = %v", cfg.Agent.Temperature)
	}
	if cfg.MaxIterations != 4 {
		t.Errorf("MaxIterations = %d, want 4", cfg.MaxIterations)
	}
	if cfg.ToolRetries != 1 {
		t.Errorf("ToolRetries = %d, want 1", cfg.ToolRetries)
	}
	// Defaults survive for unspecified fields.
	if cfg.ToolTimeoutSeconds != 30 {
		t.Errorf("ToolTimeoutSeconds = %d, want 30", cfg.ToolTimeoutSeconds)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := turn.LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadConfig() accepted a missing file")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := turn.LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted invalid JSON")
	}
}
