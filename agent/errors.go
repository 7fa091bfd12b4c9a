package agent

import "errors"

// Sentinel errors for agent construction and registry operations.
var (
	ErrNilConfig       = errors.New("agent config is nil")
	ErrEmptyAgentName  = errors.New("agent name cannot be empty")
	ErrAgentExists     = errors.New("agent already registered")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrUnknownProvider = errors.New("unknown provider")
)
