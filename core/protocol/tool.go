package protocol

// Tool describes a function the model may request, in the JSON Schema
// shape providers expect. This is the catalog entry type sent alongside
// every model invocation.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
