package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidateArgs checks raw JSON arguments against the spec's parameter schema
// and returns a normalized argument document: defaults are filled in for
// absent optional parameters and, for non-strict specs, unknown arguments
// are dropped (models routinely over-specify).
//
// Returns ErrInvalidArgument for undecodable JSON or a type mismatch, and
// ErrMissingArgument for an absent required parameter. Strict specs also
// return ErrInvalidArgument for unknown arguments.
func (s Spec) ValidateArgs(raw json.RawMessage) (json.RawMessage, error) {
	args := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("%w: arguments are not a JSON object: %v", ErrInvalidArgument, err)
		}
	}

	known := make(map[string]bool, len(s.Params))
	normalized := make(map[string]any, len(s.Params))

	for _, p := range s.Params {
		known[p.Name] = true

		value, present := args[p.Name]
		if !present {
			if p.Default != nil {
				normalized[p.Name] = p.Default
				continue
			}
			if p.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
			}
			continue
		}

		if err := checkType(p, value); err != nil {
			return nil, err
		}
		normalized[p.Name] = value
	}

	if s.Strict {
		for name := range args {
			if !known[name] {
				return nil, fmt.Errorf("%w: unknown argument %s", ErrInvalidArgument, name)
			}
		}
	}

	out, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return out, nil
}

func checkType(p Param, value any) error {
	switch p.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return mismatch(p, value)
		}
		if len(p.Enum) > 0 {
			for _, allowed := range p.Enum {
				if s == allowed {
					return nil
				}
			}
			return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidArgument, p.Name, p.Enum, s)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return mismatch(p, value)
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(p, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return mismatch(p, value)
		}
	default:
		return fmt.Errorf("%w: parameter %s has unsupported type %q", ErrInvalidArgument, p.Name, p.Type)
	}
	return nil
}

func mismatch(p Param, value any) error {
	return fmt.Errorf("%w: %s must be a %s, got %T", ErrInvalidArgument, p.Name, p.Type, value)
}
