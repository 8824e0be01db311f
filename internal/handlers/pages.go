package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
)

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PagesHandler serves the embedded frontend pages
type PagesHandler struct {
	logger *slog.Logger
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(logger *slog.Logger) *PagesHandler {
	return &PagesHandler{
		logger: logger,
	}
}

// Index handles GET /
// Renders the main product catalog page
func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html")
}

// VirtualTryOn handles GET /virtual-tryon
func (h *PagesHandler) VirtualTryOn(w http.ResponseWriter, r *http.Request) {
	h.render(w, "virtual-tryon.html")
}

func (h *PagesHandler) render(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pageTemplates.ExecuteTemplate(w, name, nil); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
