package response

import (
	"encoding/json"
	"fmt"

	"github.com/valuegraph/analyst/core/protocol"
)

// TokenUsage reports token accounting for a single model invocation.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChoiceMessage is the assistant payload inside a response choice.
type ChoiceMessage struct {
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
}

// Choice is one candidate completion returned by the model.
type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// ToolsResponse represents the response from a tools (function calling)
// model invocation: the assistant's text plus zero or more requested tool
// calls, with metadata and token usage.
type ToolsResponse struct {
	ID      string      `json:"id,omitempty"`
	Object  string      `json:"object,omitempty"`
	Created int64       `json:"created,omitempty"`
	Model   string      `json:"model"`
	Choices []Choice    `json:"choices"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}

// ParseTools parses a tools response from JSON bytes.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}

// New builds a single-choice ToolsResponse. Providers and test fakes use it
// to produce the canonical response shape without hand-assembling choices.
func New(model, content string, toolCalls ...protocol.ToolCall) *ToolsResponse {
	return &ToolsResponse{
		Model: model,
		Choices: []Choice{{
			Message: ChoiceMessage{
				Role:      string(protocol.RoleAssistant),
				Content:   content,
				ToolCalls: toolCalls,
			},
		}},
	}
}

// Message returns the first choice's assistant payload.
// Returns an error when the response carries no choices.
func (r *ToolsResponse) Message() (ChoiceMessage, error) {
	if len(r.Choices) == 0 {
		return ChoiceMessage{}, fmt.Errorf("response has no choices")
	}
	return r.Choices[0].Message, nil
}
