package tools

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cybraia/style-hub/internal/toolsfile"
)

type fakeDocumentSource struct {
	rows     []map[string]any
	insertID string
	err      error

	lastCollection string
	lastFilter     any
	lastPipeline   []any
	lastDocument   any
}

func (f *fakeDocumentSource) Kind() string {
	return toolsfile.SourceMongoDB
}

func (f *fakeDocumentSource) Close(ctx context.Context) error {
	return nil
}

func (f *fakeDocumentSource) Find(ctx context.Context, collection string, filter any) ([]map[string]any, error) {
	f.lastCollection = collection
	f.lastFilter = filter
	return f.rows, f.err
}

func (f *fakeDocumentSource) Aggregate(ctx context.Context, collection string, pipeline []any) ([]map[string]any, error) {
	f.lastCollection = collection
	f.lastPipeline = pipeline
	return f.rows, f.err
}

func (f *fakeDocumentSource) InsertOne(ctx context.Context, collection string, document any) (string, error) {
	f.lastCollection = collection
	f.lastDocument = document
	return f.insertID, f.err
}

func TestMongoFindToolTemplatedFilter(t *testing.T) {
	// Setup
	src := &fakeDocumentSource{
		rows: []map[string]any{{"product_id": "SKU_JACKET_001", "material": "denim"}},
	}
	tool, err := New("get_product_details", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBFind,
		Source:     "catalog-mongo",
		Collection: "product_details",
		Filter:     `{"product_id": @product_id}`,
		Parameters: []toolsfile.Parameter{
			{Name: "product_id", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	// Execute
	result, err := tool.Invoke(context.Background(), map[string]any{"product_id": "SKU_JACKET_001"})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if src.lastCollection != "product_details" {
		t.Errorf("expected collection product_details, got %q", src.lastCollection)
	}
	expectedFilter := map[string]any{"product_id": "SKU_JACKET_001"}
	if !reflect.DeepEqual(src.lastFilter, expectedFilter) {
		t.Errorf("expected filter %#v, got %#v", expectedFilter, src.lastFilter)
	}
	rows, ok := result.([]map[string]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("expected 1 row back, got %#v", result)
	}
}

func TestMongoFindToolNoFilter(t *testing.T) {
	src := &fakeDocumentSource{rows: []map[string]any{{"product_id": "SKU1"}}}
	tool, err := New("list_all_product_details", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBFind,
		Source:     "catalog-mongo",
		Collection: "product_details",
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	if _, err := tool.Invoke(context.Background(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if src.lastFilter != nil {
		t.Errorf("expected nil filter for unfiltered find, got %#v", src.lastFilter)
	}
}

func TestMongoFindToolMissingRequiredParam(t *testing.T) {
	src := &fakeDocumentSource{}
	tool, err := New("get_product_details", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBFind,
		Source:     "catalog-mongo",
		Collection: "product_details",
		Filter:     `{"product_id": @product_id}`,
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

func TestMongoAggregateTool(t *testing.T) {
	src := &fakeDocumentSource{
		rows: []map[string]any{{"_id": "Jackets", "count": int64(2)}},
	}
	tool, err := New("get_product_stats_by_category", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBAggregate,
		Source:     "catalog-mongo",
		Collection: "product_details",
		Pipeline: `[
			{"$match": {"category": {"$regex": @category}}},
			{"$group": {"_id": "$category", "count": {"$sum": 1}}}
		]`,
		Parameters: []toolsfile.Parameter{
			{Name: "category", Type: "string"},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	// An empty category renders a match-all regex, the unfiltered variant.
	result, err := tool.Invoke(context.Background(), map[string]any{"category": ""})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(src.lastPipeline) != 2 {
		t.Fatalf("expected 2 pipeline stages, got %d", len(src.lastPipeline))
	}
	match := src.lastPipeline[0].(map[string]any)["$match"].(map[string]any)
	regex := match["category"].(map[string]any)["$regex"]
	if regex != "" {
		t.Errorf("expected match-all regex, got %#v", regex)
	}
	rows := result.([]map[string]any)
	if len(rows) != 1 || rows[0]["_id"] != "Jackets" {
		t.Errorf("unexpected aggregation rows: %#v", rows)
	}
}

func TestMongoAggregateToolPipelineNotArray(t *testing.T) {
	src := &fakeDocumentSource{}
	tool, err := New("bad_pipeline", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBAggregate,
		Source:     "catalog-mongo",
		Collection: "product_details",
		Pipeline:   `{"$match": {}}`,
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "render to a JSON array") {
		t.Errorf("expected pipeline shape error, got %v", err)
	}
}

func TestMongoInsertToolEncodedDocument(t *testing.T) {
	// Setup
	src := &fakeDocumentSource{insertID: "68a1b2c3d4e5f60718293a4b"}
	tool, err := New("insert_user_interaction", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBInsert,
		Source:     "catalog-mongo",
		Collection: "user_interactions",
		Parameters: []toolsfile.Parameter{
			{Name: "data", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	// Execute
	result, err := tool.Invoke(context.Background(), map[string]any{
		"data": `{"user_id": "User", "product_id": "SKU_JACKET_001"}`,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "68a1b2c3d4e5f60718293a4b" {
		t.Errorf("expected inserted id back, got %#v", result)
	}
	doc, ok := src.lastDocument.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded document, got %T", src.lastDocument)
	}
	if doc["user_id"] != "User" || doc["product_id"] != "SKU_JACKET_001" {
		t.Errorf("unexpected document: %#v", doc)
	}
}

func TestMongoInsertToolObjectDocument(t *testing.T) {
	src := &fakeDocumentSource{insertID: "abc"}
	tool, err := New("insert_user_interaction", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBInsert,
		Source:     "catalog-mongo",
		Collection: "user_interactions",
		Parameters: []toolsfile.Parameter{
			{Name: "data", Type: "object", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), map[string]any{
		"data": map[string]any{"user_id": "User"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	doc := src.lastDocument.(map[string]any)
	if doc["user_id"] != "User" {
		t.Errorf("unexpected document: %#v", doc)
	}
}

func TestMongoInsertToolInvalidJSON(t *testing.T) {
	src := &fakeDocumentSource{}
	tool, err := New("insert_user_interaction", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBInsert,
		Source:     "catalog-mongo",
		Collection: "user_interactions",
		Parameters: []toolsfile.Parameter{
			{Name: "data", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), map[string]any{"data": "{not json"})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestMongoInsertToolSourceError(t *testing.T) {
	src := &fakeDocumentSource{err: errors.New("connection reset")}
	tool, err := New("insert_user_interaction", toolsfile.ToolConfig{
		Kind:       toolsfile.KindMongoDBInsert,
		Source:     "catalog-mongo",
		Collection: "user_interactions",
		Parameters: []toolsfile.Parameter{
			{Name: "data", Type: "string", Required: true},
		},
	}, src)
	if err != nil {
		t.Fatalf("failed to build tool: %v", err)
	}

	_, err = tool.Invoke(context.Background(), map[string]any{"data": `{"user_id": "User"}`})
	if err == nil || !strings.Contains(err.Error(), "user_interactions") {
		t.Errorf("expected wrapped insert error, got %v", err)
	}
}
