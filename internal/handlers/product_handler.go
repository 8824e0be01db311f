package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cybraia/style-hub/internal/catalog"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *catalog.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// GetProduct handles GET /products/{productId}
// Returns the merged product view, or 404 when neither catalog knows the ID
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.respondMerged(w, r, productID)
}

// productByIDRequest is the body of POST /product_by_id. user_id is accepted
// for parity with the tracking endpoint but not used for the lookup.
type productByIDRequest struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
}

// GetProductByID handles POST /product_by_id
func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	var req productByIDRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Warn("failed to decode product lookup request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required.")
		return
	}

	h.respondMerged(w, r, req.ProductID)
}

// ListProducts handles GET /products
// Returns the concatenation of both catalogs, each entry labeled with its
// source
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		if err == catalog.ErrNoProducts {
			writeMessage(w, http.StatusInternalServerError, "No products loaded from any source.")
			return
		}

		h.logger.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// CategoryStats handles GET /inventory/{category}
func (h *ProductHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	stats, err := h.catalog.CategoryStats(r.Context(), category)
	if err != nil {
		h.logger.Error("category aggregation failed", "category", category, "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to run category aggregation tool.", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Product statistics successfully aggregated from MongoDB.",
		"statistics": stats,
	})
}

// respondMerged runs the merged lookup shared by the GET and POST product
// endpoints
func (h *ProductHandler) respondMerged(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if err == catalog.ErrProductNotFound {
			h.logger.Info("product not found", "product_id", productID)
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Product ID %s not found in any data store.", productID))
			return
		}

		h.logger.Error("failed to get product", "product_id", productID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, product)
}
