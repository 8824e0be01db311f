package tools

import (
	"fmt"
	"math"

	"github.com/cybraia/style-hub/internal/toolsfile"
)

// checkRequired verifies every required declared parameter was provided.
func checkRequired(decl []toolsfile.Parameter, params map[string]any) error {
	for _, p := range decl {
		if !p.Required {
			continue
		}
		if _, ok := params[p.Name]; !ok {
			return fmt.Errorf("%w: missing required parameter %q", ErrInvalidParams, p.Name)
		}
	}
	return nil
}

// orderedArgs coerces the declared parameters to their declared types and
// returns them in declaration order for positional SQL binding. Parameters
// that were not provided bind as NULL.
func orderedArgs(decl []toolsfile.Parameter, params map[string]any) ([]any, error) {
	args := make([]any, 0, len(decl))
	for _, p := range decl {
		value, ok := params[p.Name]
		if !ok {
			args = append(args, nil)
			continue
		}
		coerced, err := coerceValue(p, value)
		if err != nil {
			return nil, err
		}
		args = append(args, coerced)
	}
	return args, nil
}

// coerceValue converts a decoded JSON value into the parameter's declared
// type. JSON decoding yields float64 for every number, so integer parameters
// accept whole floats.
func coerceValue(p toolsfile.Parameter, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch p.Type {
	case "", "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q must be a string", ErrInvalidParams, p.Name)
		}
		return s, nil

	case "integer":
		switch n := value.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: parameter %q must be an integer", ErrInvalidParams, p.Name)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		default:
			return nil, fmt.Errorf("%w: parameter %q must be an integer", ErrInvalidParams, p.Name)
		}

	case "float":
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("%w: parameter %q must be a number", ErrInvalidParams, p.Name)
		}

	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q must be a boolean", ErrInvalidParams, p.Name)
		}
		return b, nil

	case "array":
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q must be an array", ErrInvalidParams, p.Name)
		}
		return list, nil

	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q must be an object", ErrInvalidParams, p.Name)
		}
		return obj, nil

	default:
		return value, nil
	}
}
