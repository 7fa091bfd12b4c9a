package graph

import "github.com/valuegraph/analyst/observability"

const (
	// State operations
	EventStateCreate observability.EventType = "state.create"
	EventStateSet    observability.EventType = "state.set"

	// Graph execution
	EventGraphStart     observability.EventType = "graph.start"
	EventGraphComplete  observability.EventType = "graph.complete"
	EventNodeStart      observability.EventType = "node.start"
	EventNodeComplete   observability.EventType = "node.complete"
	EventEdgeTransition observability.EventType = "edge.transition"
	EventCycleDetected  observability.EventType = "cycle.detected"
)
