package models

// Interaction is a single user view event recorded in MongoDB.
// Timestamp is an RFC 3339 UTC string to keep the stored document
// identical to what the tracking endpoint reports back.
type Interaction struct {
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// ViewSummary is one row of the per-product interaction aggregation
// that the ETL merges into the analytics warehouse.
type ViewSummary struct {
	ProductID        string `json:"product_id"`
	InteractionCount int    `json:"interaction_count"`
}

// TrackResult is what the tracking service reports after recording a view.
// FirstView is a best-effort hint: the dedupe filter may report false for
// a genuinely new pair, never the other way around.
type TrackResult struct {
	InsertedID string `json:"inserted_id"`
	FirstView  bool   `json:"first_view"`
}

// ETLResult summarizes one application-driven ETL run.
type ETLResult struct {
	RunID             string `json:"run_id"`
	ProductsProcessed int    `json:"products_processed"`
}
