// Package turn implements the conversational turn runtime: one user message
// enters, the model is invoked, requested tools are executed and their
// results folded back, and the loop repeats until the model commits to a
// final answer or the iteration budget runs out.
//
// The loop is expressed as a state graph (agent, tools, output, halt) so
// routing decisions are explicit and observable.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valuegraph/analyst/agent"
	"github.com/valuegraph/analyst/core/protocol"
	"github.com/valuegraph/analyst/graph"
	"github.com/valuegraph/analyst/observability"
	"github.com/valuegraph/analyst/session"
	"github.com/valuegraph/analyst/tools"
)

// Graph node names and the state key carrying pending tool requests.
const (
	nodeAgent  = "agent"
	nodeTools  = "tools"
	nodeOutput = "output"
	nodeHalt   = "halt"

	keyToolRequests = "tool_requests"
	keyFinalAnswer  = "final_answer"
)

// ToolCallRecord logs one executed tool request within a turn.
type ToolCallRecord struct {
	protocol.ToolCall
	Round  int    // Tool round in which the call executed.
	Result string // Payload folded back to the model.
	Failed bool   // Whether the outcome was a recovered failure.
}

// Result holds the outcome of a completed turn.
type Result struct {
	Answer      string           // Final assistant text.
	Invocations int              // Model invocations consumed.
	Rounds      int              // Completed tool rounds.
	ToolCalls   []ToolCallRecord // Log of all tool executions.
}

// Option configures a Runner after config-driven initialization.
type Option func(*Runner)

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(r *Runner) { r.agent = a }
}

// WithAgentFactory overrides the constructor used for the default agent and
// for named agents from the Agents config section.
func WithAgentFactory(f agent.Factory) Option {
	return func(r *Runner) { r.factory = f }
}

// WithSession overrides the default in-memory session.
func WithSession(s session.Session) Option {
	return func(r *Runner) { r.session = s }
}

// WithExecutor overrides the default executor.
func WithExecutor(e *tools.Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithClock overrides the time source used for the system prompt date.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// Runner drives conversational turns against one session.
type Runner struct {
	agent    agent.Agent
	agents   *agent.Registry
	factory  agent.Factory
	session  session.Session
	registry *tools.Registry
	executor *tools.Executor
	observer observability.Observer
	cfg      Config
	now      func() time.Time
}

// New creates a Runner from configuration. The agent, session, and executor
// are initialized from the config; functional options can override any of
// them for testing.
func New(ctx context.Context, cfg *Config, registry *tools.Registry, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	r := &Runner{
		session:  session.NewMemorySession(),
		registry: registry,
		observer: observability.NewSlogObserver(slog.Default()),
		cfg:      *cfg,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.executor == nil {
		r.executor = tools.NewExecutor(registry, r.cfg.ToolTimeout())
	}

	var regOpts []agent.RegistryOption
	if r.factory != nil {
		regOpts = append(regOpts, agent.WithFactory(r.factory))
	}
	r.agents = agent.NewRegistry(regOpts...)
	for name, acfg := range cfg.Agents {
		if err := r.agents.Register(name, acfg); err != nil {
			return nil, fmt.Errorf("failed to register agent %q: %w", name, err)
		}
	}

	if r.agent == nil {
		factory := r.factory
		if factory == nil {
			factory = agent.New
		}
		a, err := factory(ctx, &r.cfg.Agent)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
		r.agent = a
	}

	return r, nil
}

// UseAgent switches the runner to a named agent from the Agents config
// section, instantiating it on first use. The conversation carries over.
func (r *Runner) UseAgent(ctx context.Context, name string) error {
	a, err := r.agents.Get(ctx, name)
	if err != nil {
		return err
	}
	r.agent = a
	return nil
}

// Agents lists the named agents available to UseAgent.
func (r *Runner) Agents() []agent.Info {
	return r.agents.List()
}

// Session returns the conversation session backing this runner.
func (r *Runner) Session() session.Session {
	return r.session
}

// SubmitTurn runs one full turn for userText: the system preamble is
// refreshed, the user message is appended, and the agent loop runs until a
// final answer or a terminal error.
//
// Returns ErrMaxIterations when the invocation budget is exhausted,
// ErrModelInvocation when the model call fails (the log is left without the
// failed exchange, so resubmitting is safe), and ErrTurnCancelled on
// context cancellation. The partial Result is returned alongside the error.
func (r *Runner) SubmitTurn(ctx context.Context, userText string) (*Result, error) {
	r.session.EnsureSystem(renderPrompt(r.cfg.SystemPrompt, r.now()))

	if err := r.session.AddMessage(protocol.NewMessage(protocol.RoleUser, userText)); err != nil {
		return nil, err
	}

	r.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "turn.SubmitTurn",
		Data: map[string]any{
			"session_id":     r.session.ID(),
			"prompt_length":  len(userText),
			"max_iterations": r.cfg.MaxIterations,
		},
	})

	result := &Result{}
	g, err := r.buildGraph(result)
	if err != nil {
		return nil, fmt.Errorf("failed to build turn graph: %w", err)
	}

	if _, err := g.Execute(ctx, graph.NewState(r.observer)); err != nil {
		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnError,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "turn.SubmitTurn",
			Data: map[string]any{
				"session_id":  r.session.ID(),
				"invocations": result.Invocations,
				"error":       err.Error(),
			},
		})

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %v", ErrTurnCancelled, err)
		}
		return result, err
	}

	r.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "turn.SubmitTurn",
		Data: map[string]any{
			"session_id":    r.session.ID(),
			"invocations":   result.Invocations,
			"tool_rounds":   result.Rounds,
			"answer_length": len(result.Answer),
		},
	})

	return result, nil
}

// buildGraph wires the turn loop. The agent and output nodes share one
// invoke step; they exist as distinct nodes so routing stays explicit:
// agent handles the first invocation of a turn, output every re-invocation
// after a tool round.
func (r *Runner) buildGraph(result *Result) (*graph.Graph, error) {
	g := graph.New(graph.Config{
		Name:          "turn",
		MaxIterations: 2*r.cfg.MaxIterations + 4,
		Observer:      r.observer,
	})

	invoke := r.invokeNode(result)
	execute := r.toolsNode(result)
	halt := graph.NewFuncNode(func(_ context.Context, s graph.State) (graph.State, error) {
		return s, nil
	})

	steps := []struct {
		name string
		node graph.Node
	}{
		{nodeAgent, invoke},
		{nodeTools, execute},
		{nodeOutput, invoke},
		{nodeHalt, halt},
	}
	for _, step := range steps {
		if err := g.AddNode(step.name, step.node); err != nil {
			return nil, err
		}
	}

	hasRequests := graph.KeyExists(keyToolRequests)
	edges := []struct {
		from, to, name string
		predicate      graph.Predicate
	}{
		{nodeAgent, nodeTools, "hasToolRequests", hasRequests},
		{nodeAgent, nodeHalt, "", nil},
		{nodeTools, nodeOutput, "", nil},
		{nodeOutput, nodeTools, "hasToolRequests", hasRequests},
		{nodeOutput, nodeHalt, "", nil},
	}
	for _, e := range edges {
		if err := g.AddNamedEdge(e.from, e.to, e.name, e.predicate); err != nil {
			return nil, err
		}
	}

	if err := g.SetEntryPoint(nodeAgent); err != nil {
		return nil, err
	}
	if err := g.SetExitPoint(nodeHalt); err != nil {
		return nil, err
	}

	return g, nil
}

// invokeNode calls the model with the full conversation and tool catalog.
// The invocation budget is enforced here: the call that would exceed it is
// never made. A failed model call leaves the session log untouched.
func (r *Runner) invokeNode(result *Result) graph.Node {
	return graph.NewFuncNode(func(ctx context.Context, s graph.State) (graph.State, error) {
		if result.Invocations >= r.cfg.MaxIterations {
			return s, fmt.Errorf("%w after %d model invocations", ErrMaxIterations, result.Invocations)
		}
		result.Invocations++

		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventModelInvoke,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "turn.invoke",
			Data: map[string]any{
				"session_id": r.session.ID(),
				"invocation": result.Invocations,
			},
		})

		resp, err := r.agent.Tools(ctx, r.session.Messages(), r.registry.Catalog())
		if err != nil {
			return s, fmt.Errorf("%w: %v", ErrModelInvocation, err)
		}

		msg, err := resp.Message()
		if err != nil {
			return s, fmt.Errorf("%w: %v", ErrModelInvocation, err)
		}

		// Providers may omit call IDs; mint them before the calls enter
		// the log so results can be correlated.
		calls := make([]protocol.ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			if tc.ID == "" {
				tc.ID = uuid.Must(uuid.NewV7()).String()
			}
			calls[i] = tc
		}

		assistant := protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   msg.Content,
			ToolCalls: calls,
		}
		if err := r.session.AddMessage(assistant); err != nil {
			return s, err
		}

		if len(calls) > 0 {
			return s.Set(keyToolRequests, calls), nil
		}

		result.Answer = msg.Content

		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventFinalAnswer,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "turn.invoke",
			Data: map[string]any{
				"session_id":    r.session.ID(),
				"invocation":    result.Invocations,
				"answer_length": len(msg.Content),
			},
		})

		return s.Delete(keyToolRequests).Set(keyFinalAnswer, msg.Content), nil
	})
}

// toolsNode executes the pending request batch and folds every outcome,
// success or recovered failure, into the log as tool messages in request
// order. Transient failures are retried before folding.
func (r *Runner) toolsNode(result *Result) graph.Node {
	return graph.NewFuncNode(func(ctx context.Context, s graph.State) (graph.State, error) {
		v, ok := s.Get(keyToolRequests)
		if !ok {
			return s, fmt.Errorf("tools node reached without pending requests")
		}
		requests, ok := v.([]protocol.ToolCall)
		if !ok {
			return s, fmt.Errorf("pending requests have unexpected type %T", v)
		}

		result.Rounds++

		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventToolRound,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "turn.tools",
			Data: map[string]any{
				"session_id": r.session.ID(),
				"round":      result.Rounds,
				"requests":   len(requests),
			},
		})

		outcomes := r.executeWithRetry(ctx, requests)

		for i, outcome := range outcomes {
			payload := outcome.Payload()

			result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
				ToolCall: requests[i],
				Round:    result.Rounds,
				Result:   payload,
				Failed:   outcome.Failure != nil,
			})

			r.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolOutcome,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "turn.tools",
				Data: map[string]any{
					"session_id": r.session.ID(),
					"round":      result.Rounds,
					"tool":       outcome.Name,
					"failed":     outcome.Failure != nil,
				},
			})

			err := r.session.AddMessage(protocol.Message{
				Role:       protocol.RoleTool,
				Content:    payload,
				ToolCallID: outcome.RequestID,
			})
			if err != nil {
				return s, err
			}
		}

		return s.Delete(keyToolRequests), nil
	})
}

// executeWithRetry runs the batch once, then re-runs only the transiently
// failed requests up to the configured retry budget with exponential
// backoff. Outcomes keep their original batch positions throughout.
func (r *Runner) executeWithRetry(ctx context.Context, requests []protocol.ToolCall) []tools.Outcome {
	outcomes := r.executor.Execute(ctx, requests)

	backoff := r.cfg.RetryBackoff()
	for attempt := 1; attempt <= r.cfg.ToolRetries; attempt++ {
		var indices []int
		var retry []protocol.ToolCall
		for i, outcome := range outcomes {
			if outcome.Retryable() {
				indices = append(indices, i)
				retry = append(retry, requests[i])
			}
		}
		if len(retry) == 0 {
			break
		}

		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventToolRetry,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "turn.tools",
			Data: map[string]any{
				"attempt":  attempt,
				"requests": len(retry),
			},
		})

		select {
		case <-ctx.Done():
			return outcomes
		case <-time.After(backoff):
		}

		redone := r.executor.Execute(ctx, retry)
		for j, i := range indices {
			outcomes[i] = redone[j]
		}
		backoff *= 2
	}

	return outcomes
}
