package toolbox

import (
	"bytes"
	"encoding/json"
)

// Result is the payload of one tool invocation. Tool servers encode row sets
// as a JSON string inside the response envelope, but the exact shape varies
// by tool: a JSON array, a single object, or plain text all occur in
// practice. The accessors normalize those shapes so callers never branch on
// them.
type Result struct {
	raw json.RawMessage
}

// NewResult wraps a raw invocation payload. Useful for fakes standing in for
// a live tool server.
func NewResult(raw json.RawMessage) Result {
	return Result{raw: raw}
}

// normalize unwraps at most one level of string-encoded JSON. A payload that
// is a JSON string containing valid JSON yields the inner document; any other
// payload is returned as-is. The second return reports whether the payload
// was a string that did NOT contain JSON (plain text).
func (r Result) normalize() (json.RawMessage, bool) {
	if len(r.raw) == 0 || string(r.raw) == "null" {
		return nil, false
	}

	var s string
	if err := json.Unmarshal(r.raw, &s); err == nil {
		inner := json.RawMessage(bytes.TrimSpace([]byte(s)))
		if len(inner) > 0 && json.Valid(inner) {
			return inner, false
		}
		return r.raw, true
	}

	return r.raw, false
}

// Rows returns the payload as a list of documents. A JSON array decodes
// directly, a single object becomes a one-element list, and anything else
// (null, scalars, plain text) yields no rows. Tools are free to return any
// of these shapes, so absence is not an error.
func (r Result) Rows() ([]map[string]any, error) {
	normalized, plainText := r.normalize()
	if normalized == nil || plainText {
		return nil, nil
	}

	switch normalized[0] {
	case '[':
		var rows []map[string]any
		if err := json.Unmarshal(normalized, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	case '{':
		var row map[string]any
		if err := json.Unmarshal(normalized, &row); err != nil {
			return nil, err
		}
		return []map[string]any{row}, nil
	default:
		return nil, nil
	}
}

// First returns the first document of the payload. The second return is
// false when the payload holds no documents, including when it cannot be
// decoded at all: callers treat a malformed source the same as an empty one.
func (r Result) First() (map[string]any, bool) {
	rows, err := r.Rows()
	if err != nil || len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

// Value returns the normalized payload decoded into generic Go values
func (r Result) Value() (any, error) {
	normalized, plainText := r.normalize()
	if normalized == nil {
		return nil, nil
	}
	if plainText {
		var s string
		if err := json.Unmarshal(r.raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}

	var v any
	if err := json.Unmarshal(normalized, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Text returns the payload as plain text: the innermost string when the
// payload is a (possibly doubly) encoded JSON string, the raw JSON otherwise.
// Insert tools return their generated id this way.
func (r Result) Text() string {
	normalized, plainText := r.normalize()
	if normalized == nil {
		return ""
	}
	if plainText {
		var s string
		if err := json.Unmarshal(r.raw, &s); err == nil {
			return s
		}
		return string(r.raw)
	}

	var s string
	if err := json.Unmarshal(normalized, &s); err == nil {
		return s
	}
	return string(normalized)
}

// Decode unmarshals the normalized payload into v
func (r Result) Decode(v any) error {
	normalized, _ := r.normalize()
	if normalized == nil {
		normalized = json.RawMessage("null")
	}
	return json.Unmarshal(normalized, v)
}
