// Package toolserver assembles the configured sources and tools and serves
// them over the HTTP API consumed by the web application.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cybraia/style-hub/internal/sources"
	"github.com/cybraia/style-hub/internal/tools"
	"github.com/cybraia/style-hub/internal/toolsfile"
)

// DefaultToolset is served when a manifest request names no toolset. If the
// tools file does not declare it, it resolves to every tool.
const DefaultToolset = "default"

// Registry holds the connected sources and the tools built on top of them.
type Registry struct {
	tools    map[string]tools.Tool
	toolsets map[string][]string
	sources  map[string]sources.Source
	logger   *slog.Logger
}

// Build connects every source declared in the file and constructs every
// tool. Any connection or construction failure tears down the sources
// connected so far.
func Build(ctx context.Context, file *toolsfile.File, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		tools:    make(map[string]tools.Tool, len(file.Tools)),
		toolsets: file.Toolsets,
		sources:  make(map[string]sources.Source, len(file.Sources)),
		logger:   logger,
	}

	for name, cfg := range file.Sources {
		src, err := connectSource(ctx, cfg)
		if err != nil {
			_ = r.Close(ctx)
			return nil, fmt.Errorf("failed to initialize source %q: %w", name, err)
		}
		r.sources[name] = src
		logger.Info("source connected", "source", name, "kind", cfg.Kind)
	}

	for name, cfg := range file.Tools {
		tool, err := tools.New(name, cfg, r.sources[cfg.Source])
		if err != nil {
			_ = r.Close(ctx)
			return nil, err
		}
		r.tools[name] = tool
	}
	logger.Info("tools ready", "count", len(r.tools))

	return r, nil
}

func connectSource(ctx context.Context, cfg toolsfile.SourceConfig) (sources.Source, error) {
	switch cfg.Kind {
	case toolsfile.SourcePostgres:
		return sources.NewPostgres(ctx, cfg.DSN)
	case toolsfile.SourceMongoDB:
		return sources.NewMongo(ctx, cfg.URI, cfg.Database)
	case toolsfile.SourceSQLite:
		return sources.NewSQLite(cfg.Path, cfg.Init)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Close disconnects every source, returning the first error encountered.
func (r *Registry) Close(ctx context.Context) error {
	var firstErr error
	for name, src := range r.sources {
		if err := src.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close source %q: %w", name, err)
		}
	}
	return firstErr
}

// Tool looks up a single tool by name.
func (r *Registry) Tool(name string) (tools.Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Toolset resolves a toolset name to its tools. The empty name is the
// default toolset; an undeclared default resolves to every tool.
func (r *Registry) Toolset(name string) ([]tools.Tool, bool) {
	if name == "" {
		name = DefaultToolset
	}

	toolNames, ok := r.toolsets[name]
	if !ok {
		if name != DefaultToolset {
			return nil, false
		}
		all := make([]tools.Tool, 0, len(r.tools))
		for _, tool := range r.tools {
			all = append(all, tool)
		}
		return all, true
	}

	out := make([]tools.Tool, 0, len(toolNames))
	for _, toolName := range toolNames {
		out = append(out, r.tools[toolName])
	}
	return out, true
}
