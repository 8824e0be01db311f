package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cybraia/style-hub/internal/models"
	"github.com/cybraia/style-hub/internal/toolbox"
)

var (
	ErrMissingProductID = errors.New("product_id is required for tracking")
	ErrNoInteractions   = errors.New("no interaction data to transfer")
)

// Tool names the tracking service depends on
const (
	toolInsertInteraction = "insert_user_interaction"
	toolInteractionCounts = "get_total_interactions_count"
	toolWarehouseMerge    = "execute_sql_tool"
)

// DefaultUserID is recorded when a view event carries no user
const DefaultUserID = "User"

const viewDetails = "User viewed this product."

// Service records user view events in the event store and orchestrates the
// application-driven ETL that merges per-product view counts into the
// analytics warehouse.
type Service struct {
	tools  toolbox.Invoker
	dedupe *Deduper
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new tracking service. dedupe may be nil, in which
// case every view reports first_view=false.
func NewService(tools toolbox.Invoker, dedupe *Deduper, logger *slog.Logger) *Service {
	return &Service{
		tools:  tools,
		dedupe: dedupe,
		logger: logger,
		now:    time.Now,
	}
}

// TrackView records one product view event. The event document is sent to
// the insert tool as a JSON string under the "data" parameter.
func (s *Service) TrackView(ctx context.Context, userID, productID string) (*models.TrackResult, error) {
	if productID == "" {
		return nil, ErrMissingProductID
	}
	if userID == "" {
		userID = DefaultUserID
	}

	interaction := models.Interaction{
		EventID:   uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Details:   viewDetails,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}

	payload, err := json.Marshal(interaction)
	if err != nil {
		return nil, fmt.Errorf("failed to encode interaction: %w", err)
	}

	result, err := s.tools.Invoke(ctx, toolInsertInteraction, map[string]any{"data": string(payload)})
	if err != nil {
		return nil, fmt.Errorf("failed to record user interaction: %w", err)
	}

	firstView := false
	if s.dedupe != nil {
		firstView = s.dedupe.FirstView(userID, productID)
	}

	s.logger.Debug("view tracked", "user_id", userID, "product_id", productID, "first_view", firstView)

	return &models.TrackResult{
		InsertedID: result.Text(),
		FirstView:  firstView,
	}, nil
}

// RunETL aggregates per-product interaction counts from the event store and
// merges them into the analytics warehouse. Returns ErrNoInteractions when
// there is nothing to transfer.
func (s *Service) RunETL(ctx context.Context) (*models.ETLResult, error) {
	// An empty product_id selects the unfiltered aggregation
	result, err := s.tools.Invoke(ctx, toolInteractionCounts, map[string]any{"product_id": ""})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}

	var summaries []models.ViewSummary
	if err := result.Decode(&summaries); err != nil {
		return nil, fmt.Errorf("failed to decode interaction summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil, ErrNoInteractions
	}

	if _, err := s.tools.Invoke(ctx, toolWarehouseMerge, map[string]any{"product_summaries": summaries}); err != nil {
		return nil, fmt.Errorf("failed to merge summaries into warehouse: %w", err)
	}

	runID := uuid.New().String()
	s.logger.Info("etl run complete", "run_id", runID, "products_processed", len(summaries))

	return &models.ETLResult{
		RunID:             runID,
		ProductsProcessed: len(summaries),
	}, nil
}
