// Package tools turns tools-file definitions into invokable tools bound to
// connected sources. Each tool kind knows how to validate its parameters,
// render them into a statement or document operation, and execute it.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cybraia/style-hub/internal/sources"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/internal/toolsfile"
)

// ErrInvalidParams marks invocation failures caused by the caller's
// parameters rather than by the backing source.
var ErrInvalidParams = errors.New("invalid parameters")

// Tool executes one named operation against a connected source.
type Tool interface {
	Name() string
	Manifest() toolbox.ToolManifest
	Invoke(ctx context.Context, params map[string]any) (any, error)
}

// New builds the tool named name from its definition, bound to src. The
// definition is assumed to have passed tools-file validation; New still
// rejects source/kind mismatches so a misassembled registry fails fast.
func New(name string, cfg toolsfile.ToolConfig, src sources.Source) (Tool, error) {
	switch cfg.Kind {
	case toolsfile.KindPostgresSQL, toolsfile.KindSQLiteSQL:
		sqlSrc, ok := src.(sources.SQLSource)
		if !ok {
			return nil, fmt.Errorf("tool %q: source %q does not support SQL", name, cfg.Source)
		}
		return &sqlQueryTool{name: name, cfg: cfg, source: sqlSrc}, nil

	case toolsfile.KindSQLiteExec:
		sqlSrc, ok := src.(sources.SQLSource)
		if !ok {
			return nil, fmt.Errorf("tool %q: source %q does not support SQL", name, cfg.Source)
		}
		return &sqlExecTool{name: name, cfg: cfg, source: sqlSrc}, nil

	case toolsfile.KindMongoDBFind:
		docSrc, ok := src.(sources.DocumentSource)
		if !ok {
			return nil, fmt.Errorf("tool %q: source %q does not support document operations", name, cfg.Source)
		}
		return &mongoFindTool{name: name, cfg: cfg, source: docSrc}, nil

	case toolsfile.KindMongoDBAggregate:
		docSrc, ok := src.(sources.DocumentSource)
		if !ok {
			return nil, fmt.Errorf("tool %q: source %q does not support document operations", name, cfg.Source)
		}
		return &mongoAggregateTool{name: name, cfg: cfg, source: docSrc}, nil

	case toolsfile.KindMongoDBInsert:
		docSrc, ok := src.(sources.DocumentSource)
		if !ok {
			return nil, fmt.Errorf("tool %q: source %q does not support document operations", name, cfg.Source)
		}
		if len(cfg.Parameters) == 0 {
			return nil, fmt.Errorf("tool %q: insert tools declare the document parameter first", name)
		}
		return &mongoInsertTool{name: name, cfg: cfg, source: docSrc}, nil

	default:
		return nil, fmt.Errorf("tool %q: unknown kind %q", name, cfg.Kind)
	}
}

// manifestFor converts a tool definition into its wire manifest. Parameters
// without an explicit type are advertised as strings.
func manifestFor(cfg toolsfile.ToolConfig) toolbox.ToolManifest {
	params := make([]toolbox.ParameterManifest, 0, len(cfg.Parameters))
	for _, p := range cfg.Parameters {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		params = append(params, toolbox.ParameterManifest{
			Name:        p.Name,
			Type:        typ,
			Description: p.Description,
			Required:    p.Required,
		})
	}

	return toolbox.ToolManifest{
		Description:  cfg.Description,
		Parameters:   params,
		AuthRequired: []string{},
	}
}
