package toolbox

// Manifest is the wire format returned by the tool server for both the
// single-tool and toolset manifest endpoints
type Manifest struct {
	ServerVersion string                  `json:"serverVersion"`
	Tools         map[string]ToolManifest `json:"tools"`
}

// ToolManifest describes one tool in a manifest
type ToolManifest struct {
	Description  string              `json:"description"`
	Parameters   []ParameterManifest `json:"parameters"`
	AuthRequired []string            `json:"authRequired"`
}

// ParameterManifest describes one declared tool parameter
type ParameterManifest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}
