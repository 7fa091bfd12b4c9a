package turn

import "github.com/valuegraph/analyst/observability"

// Turn event types emitted during the agent loop.
const (
	EventTurnStart    observability.EventType = "turn.start"
	EventTurnComplete observability.EventType = "turn.complete"
	EventModelInvoke  observability.EventType = "turn.model.invoke"
	EventToolRound    observability.EventType = "turn.tools.round"
	EventToolRetry    observability.EventType = "turn.tools.retry"
	EventToolOutcome  observability.EventType = "turn.tools.outcome"
	EventFinalAnswer  observability.EventType = "turn.answer"
	EventTurnError    observability.EventType = "turn.error"
)
