package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/valuegraph/analyst/observability"
)

const defaultMaxIterations = 100

// Config parameterizes a Graph.
type Config struct {
	// Name identifies the graph in observer events.
	Name string
	// MaxIterations caps the number of node executions in one run.
	// Zero means defaultMaxIterations.
	MaxIterations int
	// Observer receives execution events. Nil means NoOpObserver.
	Observer observability.Observer
}

// Graph is a directed graph of named nodes with predicate-routed edges.
// Build it once (AddNode, AddEdge, SetEntryPoint, SetExitPoint), then
// Execute it per run; construction is not safe concurrently with execution.
type Graph struct {
	name          string
	nodes         map[string]Node
	edges         map[string][]Edge
	entryPoint    string
	exitPoints    map[string]bool
	maxIterations int
	observer      observability.Observer
}

// New creates an empty Graph from cfg.
func New(cfg Config) *Graph {
	observer := cfg.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	return &Graph{
		name:          cfg.Name,
		nodes:         make(map[string]Node),
		edges:         make(map[string][]Edge),
		exitPoints:    make(map[string]bool),
		maxIterations: maxIterations,
		observer:      observer,
	}
}

// Name returns the graph identifier used in event metadata.
func (g *Graph) Name() string {
	return g.name
}

// AddNode registers a computation step. Node names must be unique.
func (g *Graph) AddNode(name string, node Node) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("node %s already exists", name)
	}

	g.nodes[name] = node
	return nil
}

// AddEdge creates a transition between two existing nodes. A nil predicate
// makes the transition unconditional. Multiple edges from the same node are
// evaluated in insertion order.
func (g *Graph) AddEdge(from, to string, predicate Predicate) error {
	return g.AddNamedEdge(from, to, "", predicate)
}

// AddNamedEdge is AddEdge with an edge label for observer events.
func (g *Graph) AddNamedEdge(from, to, name string, predicate Predicate) error {
	if from == "" || to == "" {
		return fmt.Errorf("edge endpoints cannot be empty")
	}
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("from node %s does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("to node %s does not exist", to)
	}

	g.edges[from] = append(g.edges[from], Edge{From: from, To: to, Name: name, Predicate: predicate})
	return nil
}

// SetEntryPoint defines the starting node. Only one entry point is allowed.
func (g *Graph) SetEntryPoint(node string) error {
	if node == "" {
		return fmt.Errorf("entry point cannot be empty")
	}
	if g.entryPoint != "" {
		return fmt.Errorf("entry point already set to %s", g.entryPoint)
	}
	if _, exists := g.nodes[node]; !exists {
		return fmt.Errorf("entry point node %s does not exist", node)
	}

	g.entryPoint = node
	return nil
}

// SetExitPoint marks a node as terminal. Multiple exit points are allowed.
func (g *Graph) SetExitPoint(node string) error {
	if node == "" {
		return fmt.Errorf("exit point cannot be empty")
	}
	if _, exists := g.nodes[node]; !exists {
		return fmt.Errorf("exit point node %s does not exist", node)
	}

	g.exitPoints[node] = true
	return nil
}

// Validate checks the graph for structural errors: missing nodes, an unset
// entry point, or no exit points. Execute calls it implicitly.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}
	if g.entryPoint == "" {
		return fmt.Errorf("entry point not set")
	}
	if len(g.exitPoints) == 0 {
		return fmt.Errorf("no exit points set")
	}
	return nil
}

// Execute runs the graph from the entry point: execute the current node,
// stop if it is an exit point, otherwise follow the first matching edge.
// Cancellation is checked between nodes, and the iteration cap guards
// against runaway cycles.
//
// Failures return an ExecutionError with the node, state, and path.
func (g *Graph) Execute(ctx context.Context, initialState State) (State, error) {
	if err := g.Validate(); err != nil {
		return initialState, fmt.Errorf("graph validation failed: %w", err)
	}

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventGraphStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    g.name,
		Data: map[string]any{
			"entry_point": g.entryPoint,
			"run_id":      initialState.RunID,
		},
	})

	current := g.entryPoint
	state := initialState
	iterations := 0
	visited := make(map[string]int)
	var path []string

	for {
		if err := ctx.Err(); err != nil {
			return state, &ExecutionError{
				NodeName: current,
				State:    state,
				Path:     path,
				Err:      fmt.Errorf("execution cancelled: %w", err),
			}
		}

		iterations++
		if iterations > g.maxIterations {
			return state, &ExecutionError{
				NodeName: current,
				State:    state,
				Path:     path,
				Err:      fmt.Errorf("max iterations (%d) exceeded", g.maxIterations),
			}
		}

		visited[current]++
		path = append(path, current)

		if visited[current] > 1 {
			g.observer.OnEvent(ctx, observability.Event{
				Type:      EventCycleDetected,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    g.name,
				Data: map[string]any{
					"node":        current,
					"visit_count": visited[current],
					"iteration":   iterations,
				},
			})
		}

		node := g.nodes[current]

		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventNodeStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    g.name,
			Data:      map[string]any{"node": current, "iteration": iterations},
		})

		newState, err := node.Execute(ctx, state)

		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventNodeComplete,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    g.name,
			Data: map[string]any{
				"node":      current,
				"iteration": iterations,
				"error":     err != nil,
			},
		})

		if err != nil {
			return state, &ExecutionError{
				NodeName: current,
				State:    state,
				Path:     path,
				Err:      fmt.Errorf("node execution failed: %w", err),
			}
		}

		state = newState

		if g.exitPoints[current] {
			g.observer.OnEvent(ctx, observability.Event{
				Type:      EventGraphComplete,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    g.name,
				Data: map[string]any{
					"exit_point": current,
					"iterations": iterations,
					"run_id":     state.RunID,
				},
			})
			return state, nil
		}

		edges, hasEdges := g.edges[current]
		if !hasEdges {
			return state, &ExecutionError{
				NodeName: current,
				State:    state,
				Path:     path,
				Err:      fmt.Errorf("node %s has no outgoing edges and is not an exit point", current),
			}
		}

		nextNode := ""
		for _, edge := range edges {
			if edge.Predicate == nil || edge.Predicate(state) {
				nextNode = edge.To

				g.observer.OnEvent(ctx, observability.Event{
					Type:      EventEdgeTransition,
					Level:     observability.LevelVerbose,
					Timestamp: time.Now(),
					Source:    g.name,
					Data: map[string]any{
						"from": edge.From,
						"to":   edge.To,
						"edge": edge.Name,
					},
				})
				break
			}
		}

		if nextNode == "" {
			return state, &ExecutionError{
				NodeName: current,
				State:    state,
				Path:     path,
				Err:      fmt.Errorf("no valid transition from node %s", current),
			}
		}

		current = nextNode
	}
}
