package toolbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrToolNotFound = errors.New("tool not found on tool server")
)

// Invoker is the invocation surface services depend on. *Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, params map[string]any) (Result, error)
}

// Client talks to a tool server over its HTTP API. Tool handles are cached
// after the first load, so repeated invocations of the same tool skip the
// manifest round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	tools map[string]*Tool
}

// New creates a client for the tool server at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tools: make(map[string]*Tool),
	}
}

// LoadTool fetches the manifest for a single tool and returns a handle for
// invoking it. The manifest fetch doubles as a connectivity check, so callers
// can load their tools at startup and fail fast when the server is down.
func (c *Client) LoadTool(ctx context.Context, name string) (*Tool, error) {
	manifest, err := c.fetchManifest(ctx, c.baseURL+"/api/tool/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool %q: %w", name, err)
	}

	tm, ok := manifest.Tools[name]
	if !ok {
		return nil, fmt.Errorf("failed to load tool %q: manifest does not list it", name)
	}

	tool := &Tool{
		Name:        name,
		Description: tm.Description,
		Parameters:  tm.Parameters,
		client:      c,
	}

	c.mu.Lock()
	c.tools[name] = tool
	c.mu.Unlock()

	return tool, nil
}

// LoadToolset fetches the manifest for a named toolset and returns handles
// for all of its tools, sorted by name. An empty name loads the default
// toolset containing every tool the server exposes.
func (c *Client) LoadToolset(ctx context.Context, name string) ([]*Tool, error) {
	manifest, err := c.fetchManifest(ctx, c.baseURL+"/api/toolset/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to load toolset %q: %w", name, err)
	}

	tools := make([]*Tool, 0, len(manifest.Tools))
	for toolName, tm := range manifest.Tools {
		tools = append(tools, &Tool{
			Name:        toolName,
			Description: tm.Description,
			Parameters:  tm.Parameters,
			client:      c,
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	c.mu.Lock()
	for _, t := range tools {
		c.tools[t.Name] = t
	}
	c.mu.Unlock()

	return tools, nil
}

// Invoke calls a tool by name, loading it on first use
func (c *Client) Invoke(ctx context.Context, name string, params map[string]any) (Result, error) {
	c.mu.Lock()
	tool, ok := c.tools[name]
	c.mu.Unlock()

	if !ok {
		var err error
		tool, err = c.LoadTool(ctx, name)
		if err != nil {
			return Result{}, err
		}
	}

	return tool.Invoke(ctx, params)
}

func (c *Client) fetchManifest(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach tool server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrToolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return &manifest, nil
}

// Tool is a loaded handle on one server-side tool
type Tool struct {
	Name        string
	Description string
	Parameters  []ParameterManifest

	client *Client
}

// invokeEnvelope is the wire shape of an invocation response. Result carries
// the tool output, conventionally as a JSON-encoded string of rows; Error is
// set instead on failure responses.
type invokeEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Invoke posts the parameters to the tool's invoke endpoint and returns the
// raw result payload. Nil params invoke the tool with an empty parameter set.
func (t *Tool) Invoke(ctx context.Context, params map[string]any) (Result, error) {
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode parameters: %w", err)
	}

	url := t.client.baseURL + "/api/tool/" + t.Name + "/invoke"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to invoke tool %q: %w", t.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response for tool %q: %w", t.Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope invokeEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return Result{}, fmt.Errorf("tool %q failed with status %d: %s", t.Name, resp.StatusCode, envelope.Error)
		}
		return Result{}, fmt.Errorf("tool %q failed with status %d", t.Name, resp.StatusCode)
	}

	var envelope invokeEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Result{}, fmt.Errorf("failed to decode response for tool %q: %w", t.Name, err)
	}

	return Result{raw: envelope.Result}, nil
}
