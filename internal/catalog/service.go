package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cybraia/style-hub/internal/media"
	"github.com/cybraia/style-hub/internal/toolbox"
)

var (
	ErrProductNotFound = errors.New("product not found in any data store")
	ErrNoProducts      = errors.New("no products loaded from any source")
)

// Tool names the catalog depends on
const (
	toolProductCore    = "get_product_core_data"
	toolProductDetails = "get_product_details"
	toolListCore       = "list_products_core"
	toolListDetails    = "list_all_product_details"
	toolCategoryStats  = "get_product_stats_by_category"
)

// Source labels for catalog listings
const (
	sourceCore    = "AlloyDB (Core)"
	sourceDetails = "MongoDB (Details)"
)

// Source notes attached when one side of a merge is missing
const (
	notePartial  = "PARTIAL MODE: MongoDB details missing."
	noteFallback = "FALLBACK MODE: Core data synthesized from MongoDB details."
)

// Synthesized core fields for products that only exist in the details catalog
const (
	synthPrice = 39.99
	synthSKU   = "SYNTH-001"
	synthStock = 999
)

// Service combines the core catalog (relational) and the details catalog
// (document store) into one merged product view. Products are open maps
// rather than fixed structs: the details catalog carries arbitrary
// per-category attributes that must survive the merge untouched.
type Service struct {
	tools    toolbox.Invoker
	media    media.Resolver
	fallback string
	logger   *slog.Logger
}

// NewService creates a new catalog service. fallbackURL is served as the
// image URL for products without a usable SKU.
func NewService(tools toolbox.Invoker, resolver media.Resolver, fallbackURL string, logger *slog.Logger) *Service {
	return &Service{
		tools:    tools,
		media:    resolver,
		fallback: fallbackURL,
		logger:   logger,
	}
}

// GetProduct returns the merged view of one product. The core and details
// catalogs are queried concurrently; either side failing or missing is
// tolerated, and only a miss in both yields ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, productID string) (map[string]any, error) {
	var (
		wg      sync.WaitGroup
		core    map[string]any
		details map[string]any
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		core = s.fetchFirst(ctx, toolProductCore, productID)
	}()
	go func() {
		defer wg.Done()
		details = s.fetchFirst(ctx, toolProductDetails, productID)
	}()
	wg.Wait()

	product := mergeProduct(core, details)
	if product == nil {
		return nil, ErrProductNotFound
	}

	s.enrichImage(product)
	return product, nil
}

// ListProducts returns the concatenation of both catalogs: core products
// first, then detail documents with synthesized listing fields. Each entry
// is labeled with its source and enriched independently. One source failing
// is tolerated; both catalogs coming back empty yields ErrNoProducts.
func (s *Service) ListProducts(ctx context.Context) ([]map[string]any, error) {
	var (
		wg         sync.WaitGroup
		coreRows   []map[string]any
		detailRows []map[string]any
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		coreRows = s.fetchRows(ctx, toolListCore)
	}()
	go func() {
		defer wg.Done()
		detailRows = s.fetchRows(ctx, toolListDetails)
	}()
	wg.Wait()

	catalog := make([]map[string]any, 0, len(coreRows)+len(detailRows))

	for _, product := range coreRows {
		product["source"] = sourceCore
		s.enrichImage(product)
		catalog = append(catalog, product)
	}

	// Detail documents have no core listing fields; synthesize them the same
	// way the single-product fallback does
	for _, product := range detailRows {
		product["name"] = product["category"]
		product["price"] = synthPrice
		product["source"] = sourceDetails
		s.enrichImage(product)
		catalog = append(catalog, product)
	}

	if len(catalog) == 0 {
		return nil, ErrNoProducts
	}

	return catalog, nil
}

// CategoryStats runs the per-category aggregation and returns its decoded
// output as-is
func (s *Service) CategoryStats(ctx context.Context, category string) (any, error) {
	result, err := s.tools.Invoke(ctx, toolCategoryStats, map[string]any{"category": category})
	if err != nil {
		return nil, fmt.Errorf("failed to run category aggregation tool: %w", err)
	}

	stats, err := result.Value()
	if err != nil {
		return nil, fmt.Errorf("failed to decode category statistics: %w", err)
	}

	return stats, nil
}

// fetchFirst invokes a single-row lookup tool and extracts its first
// document. Tool failures and undecodable payloads log a warning and report
// absence: one source failing never fails a merged read.
func (s *Service) fetchFirst(ctx context.Context, tool, productID string) map[string]any {
	result, err := s.tools.Invoke(ctx, tool, map[string]any{"product_id": productID})
	if err != nil {
		s.logger.Warn("product lookup failed", "tool", tool, "product_id", productID, "error", err)
		return nil
	}

	row, ok := result.First()
	if !ok {
		return nil
	}
	return row
}

// fetchRows invokes a listing tool and extracts its documents, reporting an
// empty listing on failure
func (s *Service) fetchRows(ctx context.Context, tool string) []map[string]any {
	result, err := s.tools.Invoke(ctx, tool, nil)
	if err != nil {
		s.logger.Warn("catalog listing failed", "tool", tool, "error", err)
		return nil
	}

	rows, err := result.Rows()
	if err != nil {
		s.logger.Warn("catalog listing returned undecodable rows", "tool", tool, "error", err)
		return nil
	}
	return rows
}

// mergeProduct combines a core row and a details document into one product.
// Detail fields win on key collision. When only details exist, the core
// fields are synthesized from them; when both are absent the product does
// not exist and nil is returned.
func mergeProduct(core, details map[string]any) map[string]any {
	switch {
	case len(core) > 0:
		merged := make(map[string]any, len(core)+len(details)+1)
		for k, v := range core {
			merged[k] = v
		}
		for k, v := range details {
			merged[k] = v
		}
		if len(details) == 0 {
			merged["source_note"] = notePartial
		}
		return merged

	case len(details) > 0:
		category, ok := details["category"]
		if !ok {
			category = "Generic"
		}
		sku, ok := details["sku"]
		if !ok {
			sku = synthSKU
		}

		merged := map[string]any{
			"product_id":  details["product_id"],
			"name":        fmt.Sprintf("MongoDB Product: %v", category),
			"price":       synthPrice,
			"sku":         sku,
			"stock":       synthStock,
			"source_note": noteFallback,
		}
		for k, v := range details {
			merged[k] = v
		}
		return merged

	default:
		return nil
	}
}

// enrichImage sets the browsable image fields on a product in place. This
// always runs after the merge so detail documents cannot override it.
func (s *Service) enrichImage(product map[string]any) {
	sku, _ := product["sku"].(string)
	if media.HasObject(sku) {
		product["image_url"] = s.media.ImageURL(sku)
		product["fallback_url"] = s.fallback
		return
	}

	product["image_url"] = s.fallback
	product["fallback_url"] = s.fallback
}
