package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cybraia/style-hub/internal/toolsfile"
)

// renderTemplate substitutes every @name token in a filter or pipeline
// template with the JSON encoding of the named parameter, then parses the
// result. Parameters that were not provided substitute as null. Only
// declared parameter names are substituted, so MongoDB operators and other
// literal text pass through untouched.
func renderTemplate(tmpl string, decl []toolsfile.Parameter, params map[string]any) (any, error) {
	// Longer names first so @product_id is never clipped by a @product
	// parameter substituting inside it.
	names := make([]string, 0, len(decl))
	for _, p := range decl {
		names = append(names, p.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	out := tmpl
	for _, name := range names {
		encoded, err := json.Marshal(params[name])
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameter %q: %w", name, err)
		}
		out = strings.ReplaceAll(out, "@"+name, string(encoded))
	}

	var parsed any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rendered template: %w", err)
	}
	return parsed, nil
}
