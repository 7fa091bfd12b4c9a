package turn

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/valuegraph/analyst/agent"
)

const (
	defaultMaxIterations      = 10
	defaultToolTimeoutSeconds = 30
	defaultToolRetries        = 2
	defaultRetryBackoffMillis = 250
	defaultTemperature        = 0.0
	defaultModel              = "gemini-1.5-pro"
)

// Config holds initialization parameters for the turn runtime.
type Config struct {
	Agent  agent.Config            `json:"agent"`
	Agents map[string]agent.Config `json:"agents,omitempty"`

	// MaxIterations caps the number of model invocations within one turn.
	MaxIterations int `json:"max_iterations,omitempty"`

	// SystemPrompt overrides the built-in analyst persona.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// ToolTimeoutSeconds bounds each remote tool call.
	ToolTimeoutSeconds int `json:"tool_timeout_seconds,omitempty"`

	// ToolRetries is the number of extra attempts for transient remote
	// failures within a tool round. Zero disables retries.
	ToolRetries int `json:"tool_retries,omitempty"`

	// RetryBackoffMillis is the base delay before a retry attempt;
	// successive attempts back off exponentially.
	RetryBackoffMillis int `json:"retry_backoff_millis,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Agent: agent.Config{
			Model:       defaultModel,
			Temperature: defaultTemperature,
		},
		MaxIterations:      defaultMaxIterations,
		ToolTimeoutSeconds: defaultToolTimeoutSeconds,
		ToolRetries:        defaultToolRetries,
		RetryBackoffMillis: defaultRetryBackoffMillis,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Agent.Provider != "" {
		c.Agent.Provider = source.Agent.Provider
	}
	if source.Agent.Model != "" {
		c.Agent.Model = source.Agent.Model
	}
	if source.Agent.Temperature != 0 {
		c.Agent.Temperature = source.Agent.Temperature
	}
	if source.Agent.APIKey != "" {
		c.Agent.APIKey = source.Agent.APIKey
	}
	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.ToolTimeoutSeconds > 0 {
		c.ToolTimeoutSeconds = source.ToolTimeoutSeconds
	}
	if source.ToolRetries > 0 {
		c.ToolRetries = source.ToolRetries
	}
	if source.RetryBackoffMillis > 0 {
		c.RetryBackoffMillis = source.RetryBackoffMillis
	}
}

// LoadConfig reads a JSON config file and merges it over defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// ToolTimeout returns the per-call remote tool timeout as a duration.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutSeconds) * time.Second
}

// RetryBackoff returns the base retry delay as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}
