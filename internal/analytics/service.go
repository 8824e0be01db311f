package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cybraia/style-hub/internal/media"
	"github.com/cybraia/style-hub/internal/models"
	"github.com/cybraia/style-hub/internal/toolbox"
)

var (
	ErrNoViews = errors.New("no views recorded for ranking")
)

// Tool names the analytics service depends on
const (
	toolTopViews    = "get_top_5_views"
	toolProductCore = "get_product_core_data"
)

// Service ranks products by the view counts the ETL merged into the
// analytics warehouse
type Service struct {
	tools  toolbox.Invoker
	media  media.Resolver
	logger *slog.Logger
}

// NewService creates a new analytics service
func NewService(tools toolbox.Invoker, resolver media.Resolver, logger *slog.Logger) *Service {
	return &Service{
		tools:  tools,
		media:  resolver,
		logger: logger,
	}
}

// rankedView is one row of the warehouse ranking query
type rankedView struct {
	ProductID        string `json:"product_id"`
	InteractionScore int    `json:"interaction_score"`
}

// TopProducts returns the most viewed products, enriched with their core
// catalog fields and a thumbnail URL. Ranked products whose core lookup
// fails are skipped rather than failing the whole ranking; no rows in the
// warehouse yields ErrNoViews.
func (s *Service) TopProducts(ctx context.Context) ([]models.TopProduct, error) {
	result, err := s.tools.Invoke(ctx, toolTopViews, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query view ranking: %w", err)
	}

	var ranked []rankedView
	if err := result.Decode(&ranked); err != nil {
		return nil, fmt.Errorf("failed to decode view ranking: %w", err)
	}
	if len(ranked) == 0 {
		return nil, ErrNoViews
	}

	top := make([]models.TopProduct, 0, len(ranked))
	for _, item := range ranked {
		coreResult, err := s.tools.Invoke(ctx, toolProductCore, map[string]any{"product_id": item.ProductID})
		if err != nil {
			s.logger.Warn("core lookup failed for ranked product", "product_id", item.ProductID, "error", err)
			continue
		}

		var rows []models.Product
		if err := coreResult.Decode(&rows); err != nil || len(rows) == 0 {
			s.logger.Warn("no core data for ranked product", "product_id", item.ProductID)
			continue
		}

		top = append(top, models.TopProduct{
			Product:    rows[0],
			TotalViews: item.InteractionScore,
			ImageURL:   s.media.ThumbnailURL(rows[0].SKU),
		})
	}

	return top, nil
}
