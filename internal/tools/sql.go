package tools

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/cybraia/style-hub/internal/sources"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/internal/toolsfile"
)

// sqlQueryTool runs a row-returning statement with positional parameters
// bound in declaration order.
type sqlQueryTool struct {
	name   string
	cfg    toolsfile.ToolConfig
	source sources.SQLSource
}

func (t *sqlQueryTool) Name() string {
	return t.name
}

func (t *sqlQueryTool) Manifest() toolbox.ToolManifest {
	return manifestFor(t.cfg)
}

func (t *sqlQueryTool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if err := checkRequired(t.cfg.Parameters, params); err != nil {
		return nil, err
	}
	args, err := orderedArgs(t.cfg.Parameters, params)
	if err != nil {
		return nil, err
	}

	rows, err := t.source.Query(ctx, t.cfg.Statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return rows, nil
}

// sqlExecTool runs a statement that returns no rows. When the tool declares
// an array parameter and the caller provides it, the statement runs once per
// element with the element's fields bound as named parameters; this is how
// the ETL merge upserts a batch of view summaries into the warehouse.
type sqlExecTool struct {
	name   string
	cfg    toolsfile.ToolConfig
	source sources.SQLSource
}

func (t *sqlExecTool) Name() string {
	return t.name
}

func (t *sqlExecTool) Manifest() toolbox.ToolManifest {
	return manifestFor(t.cfg)
}

func (t *sqlExecTool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if err := checkRequired(t.cfg.Parameters, params); err != nil {
		return nil, err
	}

	if batch, ok := t.batchParam(params); ok {
		return t.execBatch(ctx, batch)
	}

	args, err := orderedArgs(t.cfg.Parameters, params)
	if err != nil {
		return nil, err
	}
	affected, err := t.source.Exec(ctx, t.cfg.Statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return map[string]any{"rows_affected": affected}, nil
}

// batchParam returns the value of the first declared array parameter, if the
// caller provided one.
func (t *sqlExecTool) batchParam(params map[string]any) (any, bool) {
	for _, p := range t.cfg.Parameters {
		if p.Type != "array" {
			continue
		}
		value, ok := params[p.Name]
		return value, ok
	}
	return nil, false
}

func (t *sqlExecTool) execBatch(ctx context.Context, batch any) (any, error) {
	list, ok := batch.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: batch parameter must be an array", ErrInvalidParams)
	}

	var total int64
	for i, item := range list {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: batch element %d must be an object", ErrInvalidParams, i)
		}

		named := make([]any, 0, len(doc))
		for field, value := range doc {
			named = append(named, sql.Named(field, execArg(value)))
		}

		affected, err := t.source.Exec(ctx, t.cfg.Statement, named...)
		if err != nil {
			return nil, fmt.Errorf("failed to execute statement for batch element %d: %w", i, err)
		}
		total += affected
	}

	return map[string]any{"rows_affected": total}, nil
}

// execArg narrows whole JSON numbers back to integers so counter columns
// accumulate integers rather than floats.
func execArg(v any) any {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return int64(f)
	}
	return v
}
