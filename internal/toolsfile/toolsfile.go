// Package toolsfile loads and validates the tools.yaml definition consumed
// by the tool server. The file declares data sources, the tools that execute
// against them, and named toolsets grouping tools for discovery.
package toolsfile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Source kinds accepted in the sources block.
const (
	SourcePostgres = "postgres"
	SourceMongoDB  = "mongodb"
	SourceSQLite   = "sqlite"
)

// Tool kinds accepted in the tools block.
const (
	KindPostgresSQL      = "postgres-sql"
	KindSQLiteSQL        = "sqlite-sql"
	KindSQLiteExec       = "sqlite-exec"
	KindMongoDBFind      = "mongodb-find"
	KindMongoDBAggregate = "mongodb-aggregate"
	KindMongoDBInsert    = "mongodb-insert"
)

// Parameter types accepted in a tool's parameters list.
var parameterTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"float":   true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// sourceKindForTool maps each tool kind to the source kind it requires.
var sourceKindForTool = map[string]string{
	KindPostgresSQL:      SourcePostgres,
	KindSQLiteSQL:        SourceSQLite,
	KindSQLiteExec:       SourceSQLite,
	KindMongoDBFind:      SourceMongoDB,
	KindMongoDBAggregate: SourceMongoDB,
	KindMongoDBInsert:    SourceMongoDB,
}

// File is the parsed tools.yaml document.
type File struct {
	Sources  map[string]SourceConfig `yaml:"sources"`
	Tools    map[string]ToolConfig   `yaml:"tools"`
	Toolsets map[string][]string     `yaml:"toolsets"`
}

// SourceConfig declares one backing data source. Which fields are required
// depends on the kind: postgres needs dsn, mongodb needs uri and database,
// sqlite needs path.
type SourceConfig struct {
	Kind     string   `yaml:"kind"`
	DSN      string   `yaml:"dsn"`
	URI      string   `yaml:"uri"`
	Database string   `yaml:"database"`
	Path     string   `yaml:"path"`
	Init     []string `yaml:"init"`
}

// ToolConfig declares one tool. SQL kinds carry a statement; MongoDB kinds
// carry a collection plus a filter, pipeline, or nothing depending on the
// operation. Filter and pipeline are JSON templates in which @name tokens
// are replaced with the JSON encoding of the named parameter at invoke time.
type ToolConfig struct {
	Kind        string      `yaml:"kind"`
	Source      string      `yaml:"source"`
	Description string      `yaml:"description"`
	Statement   string      `yaml:"statement"`
	Collection  string      `yaml:"collection"`
	Filter      string      `yaml:"filter"`
	Pipeline    string      `yaml:"pipeline"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter declares one invoke-time parameter of a tool.
type Parameter struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// Load reads the tools file at path, expands ${VAR} references against the
// environment, parses the YAML, and validates the result.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools file: %w", err)
	}

	// Expand environment variables before parsing so that connection
	// strings never have to appear in the file itself.
	expanded := expandEnvVars(string(data))

	var file File
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("failed to parse tools file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tools file: %w", err)
	}

	return &file, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that every source, tool, and toolset is internally
// consistent. It is called by Load but exported so that programmatically
// built files can be checked the same way.
func (f *File) Validate() error {
	if len(f.Sources) == 0 {
		return fmt.Errorf("no sources defined")
	}
	if len(f.Tools) == 0 {
		return fmt.Errorf("no tools defined")
	}

	for name, src := range f.Sources {
		if err := src.validate(); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}

	for name, tool := range f.Tools {
		if err := tool.validate(f.Sources); err != nil {
			return fmt.Errorf("tool %q: %w", name, err)
		}
	}

	for name, toolNames := range f.Toolsets {
		for _, toolName := range toolNames {
			if _, ok := f.Tools[toolName]; !ok {
				return fmt.Errorf("toolset %q: references unknown tool %q", name, toolName)
			}
		}
	}

	return nil
}

func (s SourceConfig) validate() error {
	switch s.Kind {
	case SourcePostgres:
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for kind %q", s.Kind)
		}
	case SourceMongoDB:
		if s.URI == "" {
			return fmt.Errorf("uri is required for kind %q", s.Kind)
		}
		if s.Database == "" {
			return fmt.Errorf("database is required for kind %q", s.Kind)
		}
	case SourceSQLite:
		if s.Path == "" {
			return fmt.Errorf("path is required for kind %q", s.Kind)
		}
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	return nil
}

func (t ToolConfig) validate(sources map[string]SourceConfig) error {
	wantSourceKind, ok := sourceKindForTool[t.Kind]
	if !ok {
		if t.Kind == "" {
			return fmt.Errorf("kind is required")
		}
		return fmt.Errorf("unknown tool kind %q", t.Kind)
	}

	if t.Source == "" {
		return fmt.Errorf("source is required")
	}
	src, ok := sources[t.Source]
	if !ok {
		return fmt.Errorf("references unknown source %q", t.Source)
	}
	if src.Kind != wantSourceKind {
		return fmt.Errorf("kind %q requires a %s source, but %q is %q", t.Kind, wantSourceKind, t.Source, src.Kind)
	}

	switch t.Kind {
	case KindPostgresSQL, KindSQLiteSQL, KindSQLiteExec:
		if t.Statement == "" {
			return fmt.Errorf("statement is required for kind %q", t.Kind)
		}
	case KindMongoDBFind, KindMongoDBInsert:
		if t.Collection == "" {
			return fmt.Errorf("collection is required for kind %q", t.Kind)
		}
	case KindMongoDBAggregate:
		if t.Collection == "" {
			return fmt.Errorf("collection is required for kind %q", t.Kind)
		}
		if t.Pipeline == "" {
			return fmt.Errorf("pipeline is required for kind %q", t.Kind)
		}
	}

	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		if p.Type != "" && !parameterTypes[p.Type] {
			return fmt.Errorf("parameter %q: unknown type %q", p.Name, p.Type)
		}
	}

	return nil
}
