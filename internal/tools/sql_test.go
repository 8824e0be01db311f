package tools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cybraia/style-hub/internal/sources"
	"github.com/cybraia/style-hub/internal/toolsfile"
)

func newWarehouseSource(t *testing.T) *sources.SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warehouse.db")
	src, err := sources.NewSQLite(path, []string{
		`CREATE TABLE IF NOT EXISTS product_view_summary (
			product_id TEXT PRIMARY KEY,
			interaction_score INTEGER NOT NULL DEFAULT 0
		)`,
	})
	if err != nil {
		t.Fatalf("failed to open warehouse source: %v", err)
	}
	t.Cleanup(func() {
		_ = src.Close(context.Background())
	})

	return src
}

func seedSummary(t *testing.T, src *sources.SQLite, productID string, score int) {
	t.Helper()

	if _, err := src.Exec(context.Background(),
		"INSERT INTO product_view_summary (product_id, interaction_score) VALUES (?, ?)",
		productID, score); err != nil {
		t.Fatalf("failed to seed summary: %v", err)
	}
}

func TestSQLQueryTool(t *testing.T) {
	// Setup
	src := newWarehouseSource(t)
	seedSummary(t, src, "SKU_JACKET_001", 12)
	seedSummary(t, src, "SKU_SCARF_001", 3)
	seedSummary(t, src, "SKU_BOOTS_001", 7)

	tool, err := New("get_top_5_views", toolsfile.ToolConfig{
		Kind:   toolsfile.KindSQLiteSQL,
		Source: "warehouse",
		Statement: `SELECT product_id, interaction_score FROM product_view_summary
			ORDER BY interaction_score DESC LIMIT 5`,
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	// Execute
	result, err := tool.Invoke(context.Background(), map[string]any{})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	rows, ok := result.([]map[string]any)
	if !ok {
		t.Fatalf("expected rows result, got %T", result)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0]["product_id"] != "SKU_JACKET_001" {
		t.Errorf("expected highest score first, got %v", rows[0]["product_id"])
	}
}

func TestSQLQueryToolPositionalParams(t *testing.T) {
	src := newWarehouseSource(t)
	seedSummary(t, src, "SKU_JACKET_001", 12)
	seedSummary(t, src, "SKU_SCARF_001", 3)

	tool, err := New("get_summary", toolsfile.ToolConfig{
		Kind:      toolsfile.KindSQLiteSQL,
		Source:    "warehouse",
		Statement: "SELECT interaction_score FROM product_view_summary WHERE product_id = ?",
		Parameters: []toolsfile.Parameter{
			{Name: "product_id", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	result, err := tool.Invoke(context.Background(), map[string]any{"product_id": "SKU_SCARF_001"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	rows := result.([]map[string]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if score, ok := rows[0]["interaction_score"].(int64); !ok || score != 3 {
		t.Errorf("expected score 3, got %v", rows[0]["interaction_score"])
	}
}

func TestSQLQueryToolMissingRequiredParam(t *testing.T) {
	src := newWarehouseSource(t)

	tool, err := New("get_summary", toolsfile.ToolConfig{
		Kind:      toolsfile.KindSQLiteSQL,
		Source:    "warehouse",
		Statement: "SELECT interaction_score FROM product_view_summary WHERE product_id = ?",
		Parameters: []toolsfile.Parameter{
			{Name: "product_id", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), map[string]any{})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestSQLExecToolBatch(t *testing.T) {
	// Setup
	src := newWarehouseSource(t)
	tool, err := New("execute_sql_tool", toolsfile.ToolConfig{
		Kind:   toolsfile.KindSQLiteExec,
		Source: "warehouse",
		Statement: `INSERT INTO product_view_summary (product_id, interaction_score)
			VALUES (:product_id, :interaction_count)
			ON CONFLICT(product_id) DO UPDATE SET
				interaction_score = interaction_score + excluded.interaction_score`,
		Parameters: []toolsfile.Parameter{
			{Name: "product_summaries", Type: "array", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	summaries := []any{
		map[string]any{"product_id": "SKU_JACKET_001", "interaction_count": float64(4)},
		map[string]any{"product_id": "SKU_SCARF_001", "interaction_count": float64(2)},
	}

	// Execute twice so the upsert path accumulates.
	for i := 0; i < 2; i++ {
		result, err := tool.Invoke(context.Background(), map[string]any{"product_summaries": summaries})
		if err != nil {
			t.Fatalf("expected no error on run %d, got %v", i, err)
		}
		out, ok := result.(map[string]any)
		if !ok {
			t.Fatalf("expected map result, got %T", result)
		}
		if affected, ok := out["rows_affected"].(int64); !ok || affected != 2 {
			t.Errorf("expected 2 rows affected, got %v", out["rows_affected"])
		}
	}

	// Assert
	rows, err := src.Query(context.Background(),
		"SELECT interaction_score FROM product_view_summary WHERE product_id = ?", "SKU_JACKET_001")
	if err != nil {
		t.Fatalf("failed to read back summary: %v", err)
	}
	if score, ok := rows[0]["interaction_score"].(int64); !ok || score != 8 {
		t.Errorf("expected accumulated score 8, got %v", rows[0]["interaction_score"])
	}
}

func TestSQLExecToolBatchElementNotObject(t *testing.T) {
	src := newWarehouseSource(t)

	tool, err := New("execute_sql_tool", toolsfile.ToolConfig{
		Kind:      toolsfile.KindSQLiteExec,
		Source:    "warehouse",
		Statement: "INSERT INTO product_view_summary (product_id) VALUES (:product_id)",
		Parameters: []toolsfile.Parameter{
			{Name: "product_summaries", Type: "array", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), map[string]any{
		"product_summaries": []any{"not-an-object"},
	})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestSQLExecToolScalarParams(t *testing.T) {
	src := newWarehouseSource(t)
	seedSummary(t, src, "SKU_JACKET_001", 12)

	tool, err := New("reset_summary", toolsfile.ToolConfig{
		Kind:      toolsfile.KindSQLiteExec,
		Source:    "warehouse",
		Statement: "DELETE FROM product_view_summary WHERE product_id = ?",
		Parameters: []toolsfile.Parameter{
			{Name: "product_id", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	result, err := tool.Invoke(context.Background(), map[string]any{"product_id": "SKU_JACKET_001"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := result.(map[string]any)
	if affected, ok := out["rows_affected"].(int64); !ok || affected != 1 {
		t.Errorf("expected 1 row affected, got %v", out["rows_affected"])
	}
}
