package toolserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cybraia/style-hub/internal/middleware"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/internal/tools"
)

// serverVersion is reported in every manifest response.
const serverVersion = "1.0.0"

// Server exposes the registry over HTTP: manifests under /api/tool and
// /api/toolset, invocations under /api/tool/{name}/invoke.
type Server struct {
	registry *Registry
	logger   *slog.Logger
}

func NewServer(registry *Registry, logger *slog.Logger) *Server {
	return &Server{registry: registry, logger: logger}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))

	r.Get("/api/tool/{toolName}", s.handleToolManifest)
	r.Post("/api/tool/{toolName}/invoke", s.handleInvoke)
	r.Get("/api/toolset/", s.handleToolsetManifest)
	r.Get("/api/toolset/{toolsetName}", s.handleToolsetManifest)

	return r
}

func (s *Server) handleToolManifest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "toolName")

	tool, ok := s.registry.Tool(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("tool %q not found", name))
		return
	}

	s.writeJSON(w, http.StatusOK, toolbox.Manifest{
		ServerVersion: serverVersion,
		Tools:         map[string]toolbox.ToolManifest{name: tool.Manifest()},
	})
}

func (s *Server) handleToolsetManifest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "toolsetName")

	set, ok := s.registry.Toolset(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("toolset %q not found", name))
		return
	}

	manifests := make(map[string]toolbox.ToolManifest, len(set))
	for _, tool := range set {
		manifests[tool.Name()] = tool.Manifest()
	}

	s.writeJSON(w, http.StatusOK, toolbox.Manifest{
		ServerVersion: serverVersion,
		Tools:         manifests,
	})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "toolName")

	tool, ok := s.registry.Tool(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("tool %q not found", name))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	params := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			s.writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
	}

	start := time.Now()
	result, err := tool.Invoke(r.Context(), params)
	if err != nil {
		if errors.Is(err, tools.ErrInvalidParams) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("tool invocation failed", "tool", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("tool invoked", "tool", name, "duration_ms", time.Since(start).Milliseconds())

	// The result travels as a JSON-encoded string so callers can defer
	// decoding, matching the hosted tool server wire format.
	encoded, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to encode result")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"result": string(encoded)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
