// Package gemini implements the agent.Agent interface on Google's Gemini
// models via the generative-ai-go SDK.
package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/valuegraph/analyst/agent"
	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/core/response"
)

const defaultModel = "gemini-1.5-pro"

func init() {
	agent.RegisterProvider("gemini", func(ctx context.Context, cfg *agent.Config) (agent.Agent, error) {
		return New(ctx, cfg)
	})
}

// Provider is a Gemini-backed Agent.
type Provider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// New creates a Provider from cfg. The API key falls back to the
// GOOGLE_API_KEY environment variable when the config leaves it empty.
func New(ctx context.Context, cfg *agent.Config) (*Provider, error) {
	if cfg == nil {
		return nil, agent.ErrNilConfig
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Tools sends the conversation with the tool catalog attached and decodes
// the model's reply. A leading system message becomes the model's system
// instruction; the final message is sent as the live chat turn with the
// rest as history.
func (p *Provider) Tools(ctx context.Context, messages []protocol.Message, catalog []protocol.Tool) (*response.ToolsResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(p.temperature)

	if messages[0].Role == protocol.RoleSystem {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(messages[0].Content)},
		}
		messages = messages[1:]
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send beyond system instruction")
	}

	if len(catalog) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations(catalog)}}
	}

	contents, err := toContents(messages)
	if err != nil {
		return nil, err
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]

	resp, err := chat.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini tools invocation: %w", err)
	}

	return decodeResponse(p.model, resp)
}
