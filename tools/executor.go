package tools

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/valuegraph/analyst/core/protocol"
)

// Outcome is the result of executing one tool request. Exactly one of
// Content or Failure is meaningful: a nil Failure means success.
// RequestID preserves request identity across concurrent execution.
type Outcome struct {
	RequestID string   `json:"request_id"`
	Name      string   `json:"name"`
	Content   string   `json:"content,omitempty"`
	Failure   *Failure `json:"failure,omitempty"`
}

// Payload renders the outcome as the tool-result message content the model
// sees: the raw content on success, a JSON error envelope on failure.
func (o Outcome) Payload() string {
	if o.Failure == nil {
		return o.Content
	}
	data, err := json.Marshal(struct {
		Error Failure `json:"error"`
	}{Error: *o.Failure})
	if err != nil {
		return `{"error":{"kind":"domain_error","message":"unencodable failure"}}`
	}
	return string(data)
}

// Retryable reports whether the outcome is a transient remote failure the
// turn loop may retry. The executor itself never retries.
func (o Outcome) Retryable() bool {
	return o.Failure != nil && o.Failure.Kind == FailUnavailableService
}

// Executor dispatches batches of tool requests against a Registry.
//
// Within one batch, Local tools run inline (they are cheap and pure) while
// Remote tools run concurrently, one goroutine per request, each bounded by
// the per-call timeout. The executor never short-circuits: it returns one
// outcome per request, in request order, once every request has completed
// or definitively failed.
type Executor struct {
	registry *Registry
	timeout  time.Duration // per Remote call; 0 disables the bound
}

// NewExecutor creates an Executor over the given registry.
// timeout bounds each Remote tool call; zero means no per-call bound.
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	return &Executor{registry: registry, timeout: timeout}
}

type resolved struct {
	spec    Spec
	handler Handler
	args    json.RawMessage
}

// Execute runs every request in the batch and returns exactly
// len(requests) outcomes in request order. Lookup and validation failures
// are recovered into failure outcomes without invoking anything; execution
// errors are classified onto the failure taxonomy. A slow or failing
// request never blocks collection of the others' outcomes.
func (e *Executor) Execute(ctx context.Context, requests []protocol.ToolCall) []Outcome {
	outcomes := make([]Outcome, len(requests))
	ready := make([]*resolved, len(requests))

	for i, req := range requests {
		outcomes[i] = Outcome{RequestID: req.ID, Name: req.Name}

		spec, handler, err := e.registry.Lookup(req.Name)
		if err != nil {
			f := classify(err, KindLocal)
			outcomes[i].Failure = &f
			continue
		}

		args, err := spec.ValidateArgs(json.RawMessage(req.Arguments))
		if err != nil {
			f := classify(err, spec.Kind)
			outcomes[i].Failure = &f
			continue
		}

		ready[i] = &resolved{spec: spec, handler: handler, args: args}
	}

	var wg sync.WaitGroup
	for i, r := range ready {
		if r == nil || r.spec.Kind != KindRemote {
			continue
		}
		wg.Add(1)
		go func(i int, r *resolved) {
			defer wg.Done()
			outcomes[i] = e.run(ctx, outcomes[i], r)
		}(i, r)
	}

	for i, r := range ready {
		if r == nil || r.spec.Kind != KindLocal {
			continue
		}
		outcomes[i] = e.run(ctx, outcomes[i], r)
	}

	wg.Wait()
	return outcomes
}

func (e *Executor) run(ctx context.Context, outcome Outcome, r *resolved) Outcome {
	if r.spec.Kind == KindRemote && e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := r.handler(ctx, r.args)
	if err != nil {
		f := classify(err, r.spec.Kind)
		outcome.Failure = &f
		return outcome
	}

	outcome.Content = result.Content
	return outcome
}
