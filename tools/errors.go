package tools

import (
	"context"
	"errors"
)

// Sentinel errors for the tool registry and executor.
var (
	ErrEmptyName       = errors.New("tool name is empty")
	ErrDuplicateTool   = errors.New("tool already registered")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDomain marks a computation that is undefined for its inputs
	// (e.g., a zero denominator). Local tool handlers wrap it so the
	// executor can classify the failure without crashing the turn.
	ErrDomain = errors.New("domain error")

	// ErrUnavailable marks a transient remote failure (timeout, non-2xx,
	// malformed response). The executor never retries it; the turn loop may.
	ErrUnavailable = errors.New("service unavailable")
)

// FailureKind names the failure taxonomy carried back to the model.
type FailureKind string

const (
	FailUnknownTool        FailureKind = "unknown_tool"
	FailMissingArgument    FailureKind = "missing_argument"
	FailInvalidArgument    FailureKind = "invalid_argument"
	FailDomainError        FailureKind = "domain_error"
	FailUnavailableService FailureKind = "unavailable_service"
)

// Failure is a recovered tool-level error. It is folded into a tool result
// payload and handed back to the model; it never aborts the loop.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// classify maps an execution error onto the failure taxonomy. Errors that
// match no sentinel default by tool kind: local tools fail their domain,
// remote tools fail their transport.
func classify(err error, kind Kind) Failure {
	f := Failure{Message: err.Error()}

	switch {
	case errors.Is(err, ErrUnknownTool):
		f.Kind = FailUnknownTool
	case errors.Is(err, ErrMissingArgument):
		f.Kind = FailMissingArgument
	case errors.Is(err, ErrInvalidArgument):
		f.Kind = FailInvalidArgument
	case errors.Is(err, ErrDomain):
		f.Kind = FailDomainError
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		f.Kind = FailUnavailableService
	case kind == KindRemote:
		f.Kind = FailUnavailableService
	default:
		f.Kind = FailDomainError
	}

	return f
}
