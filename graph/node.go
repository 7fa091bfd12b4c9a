package graph

import "context"

// Node is one computation step in a graph. A node receives the current
// state and returns the transformed state or an error.
type Node interface {
	Execute(ctx context.Context, state State) (State, error)
}

// FuncNode wraps a plain function as a Node. Most nodes are defined this
// way, inline at graph construction time.
type FuncNode struct {
	fn func(ctx context.Context, state State) (State, error)
}

// NewFuncNode creates a Node from fn.
func NewFuncNode(fn func(context.Context, State) (State, error)) *FuncNode {
	return &FuncNode{fn: fn}
}

// Execute runs the wrapped function.
func (n *FuncNode) Execute(ctx context.Context, state State) (State, error) {
	return n.fn(ctx, state)
}
