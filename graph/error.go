package graph

import "fmt"

// ExecutionError carries the context of a failed graph run: the node that
// failed, the state at failure, and the execution path up to that point.
type ExecutionError struct {
	NodeName string
	State    State
	Path     []string
	Err      error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at node %s: %v", e.NodeName, e.Err)
}

// Unwrap enables errors.Is and errors.As on the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
