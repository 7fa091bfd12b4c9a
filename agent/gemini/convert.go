package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/core/response"
)

// Gemini chat roles. Assistant messages map to "model", tool results to
// "function"; there is no system role in history (system text rides on
// the model's SystemInstruction).
const (
	roleUser     = "user"
	roleModel    = "model"
	roleFunction = "function"
)

// toContents converts conversation messages (system already stripped) into
// Gemini chat contents. Tool-result messages need the originating tool's
// name, which Gemini requires but our messages carry only indirectly, so
// the conversion tracks call IDs from earlier assistant messages.
func toContents(messages []protocol.Message) ([]*genai.Content, error) {
	callNames := make(map[string]string)
	contents := make([]*genai.Content, 0, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case protocol.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  roleUser,
				Parts: []genai.Part{genai.Text(msg.Content)},
			})

		case protocol.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				callNames[tc.ID] = tc.Name

				args := make(map[string]any)
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, fmt.Errorf("tool call %s: arguments are not a JSON object: %w", tc.ID, err)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			contents = append(contents, &genai.Content{Role: roleModel, Parts: parts})

		case protocol.RoleTool:
			name, known := callNames[msg.ToolCallID]
			if !known {
				return nil, fmt.Errorf("tool result %s has no matching tool call", msg.ToolCallID)
			}
			contents = append(contents, &genai.Content{
				Role:  roleFunction,
				Parts: []genai.Part{genai.FunctionResponse{Name: name, Response: toResponseMap(msg.Content)}},
			})

		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}

	return contents, nil
}

// toResponseMap wraps tool output for Gemini, which requires a JSON object.
// Output that already is one passes through; anything else is wrapped.
func toResponseMap(content string) map[string]any {
	m := make(map[string]any)
	if err := json.Unmarshal([]byte(content), &m); err == nil {
		return m
	}
	return map[string]any{"content": content}
}

// declarations converts the tool catalog into Gemini function declarations.
func declarations(catalog []protocol.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(catalog))
	for _, tool := range catalog {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  toSchema(tool.Parameters),
		})
	}
	return decls
}

// toSchema converts a JSON Schema parameter document into a genai.Schema.
// Handles both native Go slices and post-JSON-round-trip []any values for
// required and enum.
func toSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]any); ok {
				s.Properties[name] = toSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	s.Required = stringSlice(m["required"])
	s.Enum = stringSlice(m["enum"])
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

func stringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// decodeResponse folds the first candidate's parts into the canonical
// response shape: text parts concatenate into content, function calls
// become tool-call requests. IDs are left empty; the turn runtime mints
// them before the calls enter the conversation.
func decodeResponse(model string, resp *genai.GenerateContentResponse) (*response.ToolsResponse, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var content strings.Builder
	var calls []protocol.ToolCall

	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			content.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("function call %s: unencodable arguments: %w", p.Name, err)
			}
			calls = append(calls, protocol.ToolCall{Name: p.Name, Arguments: string(args)})
		}
	}

	out := response.New(model, content.String(), calls...)
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &response.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}
