package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cybraia/style-hub/internal/sources"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/internal/toolsfile"
)

// mongoFindTool queries a collection with an optional templated filter. A
// tool with no filter template returns the whole collection.
type mongoFindTool struct {
	name   string
	cfg    toolsfile.ToolConfig
	source sources.DocumentSource
}

func (t *mongoFindTool) Name() string {
	return t.name
}

func (t *mongoFindTool) Manifest() toolbox.ToolManifest {
	return manifestFor(t.cfg)
}

func (t *mongoFindTool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if err := checkRequired(t.cfg.Parameters, params); err != nil {
		return nil, err
	}

	var filter any
	if t.cfg.Filter != "" {
		rendered, err := renderTemplate(t.cfg.Filter, t.cfg.Parameters, params)
		if err != nil {
			return nil, err
		}
		filter = rendered
	}

	rows, err := t.source.Find(ctx, t.cfg.Collection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", t.cfg.Collection, err)
	}
	return rows, nil
}

// mongoAggregateTool runs a templated aggregation pipeline.
type mongoAggregateTool struct {
	name   string
	cfg    toolsfile.ToolConfig
	source sources.DocumentSource
}

func (t *mongoAggregateTool) Name() string {
	return t.name
}

func (t *mongoAggregateTool) Manifest() toolbox.ToolManifest {
	return manifestFor(t.cfg)
}

func (t *mongoAggregateTool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if err := checkRequired(t.cfg.Parameters, params); err != nil {
		return nil, err
	}

	rendered, err := renderTemplate(t.cfg.Pipeline, t.cfg.Parameters, params)
	if err != nil {
		return nil, err
	}
	pipeline, ok := rendered.([]any)
	if !ok {
		return nil, fmt.Errorf("pipeline template must render to a JSON array")
	}

	rows, err := t.source.Aggregate(ctx, t.cfg.Collection, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collection %q: %w", t.cfg.Collection, err)
	}
	return rows, nil
}

// mongoInsertTool stores one document per invocation. The first declared
// parameter carries the document, either as an object or as a JSON-encoded
// string, and the invocation returns the generated document id.
type mongoInsertTool struct {
	name   string
	cfg    toolsfile.ToolConfig
	source sources.DocumentSource
}

func (t *mongoInsertTool) Name() string {
	return t.name
}

func (t *mongoInsertTool) Manifest() toolbox.ToolManifest {
	return manifestFor(t.cfg)
}

func (t *mongoInsertTool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if err := checkRequired(t.cfg.Parameters, params); err != nil {
		return nil, err
	}

	docParam := t.cfg.Parameters[0]
	raw, ok := params[docParam.Name]
	if !ok {
		return nil, fmt.Errorf("%w: missing document parameter %q", ErrInvalidParams, docParam.Name)
	}

	var doc map[string]any
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("%w: parameter %q is not a valid JSON object", ErrInvalidParams, docParam.Name)
		}
	case map[string]any:
		doc = v
	default:
		return nil, fmt.Errorf("%w: parameter %q must be an object or a JSON-encoded string", ErrInvalidParams, docParam.Name)
	}

	id, err := t.source.InsertOne(ctx, t.cfg.Collection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into collection %q: %w", t.cfg.Collection, err)
	}
	return id, nil
}
