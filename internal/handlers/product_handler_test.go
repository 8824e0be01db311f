package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cybraia/style-hub/internal/catalog"
	"github.com/cybraia/style-hub/internal/media"
	"github.com/cybraia/style-hub/internal/toolbox"
	"github.com/cybraia/style-hub/pkg/logger"
)

// fakeInvoker returns canned payloads per tool name. Lookups fan out
// concurrently, so call recording is locked.
type fakeInvoker struct {
	results map[string]string
	errs    map[string]error

	mu    sync.Mutex
	calls map[string]map[string]any
}

func (f *fakeInvoker) Invoke(ctx context.Context, name string, params map[string]any) (toolbox.Result, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]map[string]any)
	}
	f.calls[name] = params
	f.mu.Unlock()

	if err, ok := f.errs[name]; ok {
		return toolbox.Result{}, err
	}
	return toolbox.NewResult(json.RawMessage(f.results[name])), nil
}

func newProductRouter(t *testing.T, tools *fakeInvoker) *chi.Mux {
	t.Helper()

	log := logger.New("error")
	svc := catalog.NewService(tools, media.NewPublicResolver("test-bucket"), "https://example.com/fallback.png", log)
	handler := NewProductHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/products", handler.ListProducts)
	r.Get("/products/{productId}", handler.GetProduct)
	r.Post("/product_by_id", handler.GetProductByID)
	r.Get("/inventory/{category}", handler.CategoryStats)
	return r
}

func TestGetProduct_Merged(t *testing.T) {
	// Setup: both catalogs hit
	tools := &fakeInvoker{results: map[string]string{
		"get_product_core_data": `"[{\"product_id\": \"P1\", \"name\": \"Denim Jacket\", \"price\": 59.99, \"sku\": \"SKU1\", \"stock\": 12}]"`,
		"get_product_details":   `"[{\"product_id\": \"P1\", \"category\": \"Jackets\", \"material\": \"denim\"}]"`,
	}}
	r := newProductRouter(t, tools)

	// Execute
	req := httptest.NewRequest(http.MethodGet, "/products/P1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Assert
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var product map[string]any
	if err := json.NewDecoder(w.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if product["name"] != "Denim Jacket" {
		t.Errorf("expected name 'Denim Jacket', got %v", product["name"])
	}
	if product["material"] != "denim" {
		t.Errorf("expected detail field to survive the merge, got %v", product["material"])
	}
	if product["image_url"] != "https://storage.googleapis.com/test-bucket/SKU1.jpg" {
		t.Errorf("unexpected image_url: %v", product["image_url"])
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	tools := &fakeInvoker{results: map[string]string{
		"get_product_core_data": `"[]"`,
		"get_product_details":   `"[]"`,
	}}
	r := newProductRouter(t, tools)

	req := httptest.NewRequest(http.MethodGet, "/products/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if response["message"] != "Product ID ghost not found in any data store." {
		t.Errorf("unexpected message: %s", response["message"])
	}
}

func TestGetProductByID(t *testing.T) {
	tools := &fakeInvoker{results: map[string]string{
		"get_product_core_data": `"[{\"product_id\": \"P1\", \"name\": \"Denim Jacket\", \"sku\": \"SKU1\"}]"`,
		"get_product_details":   `"[]"`,
	}}
	r := newProductRouter(t, tools)

	body := strings.NewReader(`{"user_id": "alice", "product_id": "P1"}`)
	req := httptest.NewRequest(http.MethodPost, "/product_by_id", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var product map[string]any
	if err := json.NewDecoder(w.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if product["source_note"] != "PARTIAL MODE: MongoDB details missing." {
		t.Errorf("expected partial mode note, got %v", product["source_note"])
	}
}

func TestGetProductByID_MissingID(t *testing.T) {
	r := newProductRouter(t, &fakeInvoker{})

	testCases := []struct {
		name string
		body string
	}{
		{"empty id", `{"user_id": "alice", "product_id": ""}`},
		{"absent id", `{"user_id": "alice"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/product_by_id", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}

			if response["error"] != "product_id is required." {
				t.Errorf("unexpected error message: %s", response["error"])
			}
		})
	}
}

func TestGetProductByID_InvalidBody(t *testing.T) {
	r := newProductRouter(t, &fakeInvoker{})

	req := httptest.NewRequest(http.MethodPost, "/product_by_id", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestListProducts_BothSources(t *testing.T) {
	tools := &fakeInvoker{results: map[string]string{
		"list_products_core":       `"[{\"product_id\": \"P1\", \"name\": \"Denim Jacket\", \"sku\": \"SKU1\"}]"`,
		"list_all_product_details": `"[{\"product_id\": \"P9\", \"category\": \"Hats\", \"sku\": \"SKU9\"}]"`,
	}}
	r := newProductRouter(t, tools)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var products []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	if products[0]["source"] != "AlloyDB (Core)" {
		t.Errorf("expected core source first, got %v", products[0]["source"])
	}
	if products[1]["source"] != "MongoDB (Details)" {
		t.Errorf("expected details source second, got %v", products[1]["source"])
	}
}

func TestListProducts_AllSourcesEmpty(t *testing.T) {
	tools := &fakeInvoker{results: map[string]string{
		"list_products_core":       `"[]"`,
		"list_all_product_details": `"[]"`,
	}}
	r := newProductRouter(t, tools)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if response["message"] != "No products loaded from any source." {
		t.Errorf("unexpected message: %s", response["message"])
	}
}

func TestCategoryStats(t *testing.T) {
	tools := &fakeInvoker{results: map[string]string{
		"get_product_stats_by_category": `"[{\"_id\": \"Jackets\", \"count\": 7, \"avg_price\": 52.5}]"`,
	}}
	r := newProductRouter(t, tools)

	req := httptest.NewRequest(http.MethodGet, "/inventory/Jackets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["message"] != "Product statistics successfully aggregated from MongoDB." {
		t.Errorf("unexpected message: %v", response["message"])
	}

	stats, ok := response["statistics"].([]any)
	if !ok || len(stats) != 1 {
		t.Fatalf("expected one-element statistics list, got %v", response["statistics"])
	}
}

func TestCategoryStats_ToolFailure(t *testing.T) {
	tools := &fakeInvoker{errs: map[string]error{
		"get_product_stats_by_category": errors.New("aggregation failed"),
	}}
	r := newProductRouter(t, tools)

	req := httptest.NewRequest(http.MethodGet, "/inventory/Jackets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if response["error"] != "Failed to run category aggregation tool." {
		t.Errorf("unexpected error: %s", response["error"])
	}
	if response["details"] == "" {
		t.Error("expected details on the aggregation failure")
	}
}
