// Package agent defines the model-provider abstraction the turn runtime
// invokes, plus a registry of named agent configurations.
//
// Concrete providers (see the gemini subpackage) register themselves by
// provider name; New instantiates an Agent from a Config by dispatching to
// the registered factory.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/core/response"
)

// DefaultProvider is used when a Config does not name one.
const DefaultProvider = "gemini"

// Agent is a conversational model endpoint with tool calling.
//
// Tools sends the full conversation plus the tool catalog and returns the
// model's response: assistant text, zero or more tool-call requests, or both.
type Agent interface {
	Tools(ctx context.Context, messages []protocol.Message, catalog []protocol.Tool) (*response.ToolsResponse, error)
}

// Config selects and parameterizes a provider-backed model.
type Config struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	APIKey      string  `json:"api_key,omitempty"`
}

// Factory constructs an Agent from a Config.
type Factory func(ctx context.Context, cfg *Config) (Agent, error)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Factory)
)

// RegisterProvider makes a provider factory available under name.
// Providers call it from init; a duplicate name panics, as with
// database/sql drivers.
func RegisterProvider(name string, factory Factory) {
	providersMu.Lock()
	defer providersMu.Unlock()

	if factory == nil {
		panic("agent: RegisterProvider with nil factory")
	}
	if _, dup := providers[name]; dup {
		panic("agent: RegisterProvider called twice for " + name)
	}
	providers[name] = factory
}

// New instantiates an Agent for cfg by dispatching to the provider factory
// named in cfg.Provider (DefaultProvider when empty).
func New(ctx context.Context, cfg *Config) (Agent, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	name := cfg.Provider
	if name == "" {
		name = DefaultProvider
	}

	providersMu.RLock()
	factory, exists := providers[name]
	providersMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return factory(ctx, cfg)
}
