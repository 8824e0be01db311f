package sources

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cybraia/style-hub/internal/toolsfile"
)

// Mongo executes document operations against a single MongoDB database,
// typically an Atlas cluster holding the flexible product detail documents.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to the cluster at uri and verifies it is reachable
// before returning a handle scoped to the given database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Kind() string {
	return toolsfile.SourceMongoDB
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Find(ctx context.Context, collection string, filter any) ([]map[string]any, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := m.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find: %w", err)
	}

	var out []map[string]any
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return normalizeDocuments(out), nil
}

func (m *Mongo) Aggregate(ctx context.Context, collection string, pipeline []any) ([]map[string]any, error) {
	cur, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to execute aggregation: %w", err)
	}

	var out []map[string]any
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return normalizeDocuments(out), nil
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, document any) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// normalizeDocuments rewrites nested bson container values into plain maps
// and slices so documents encode as regular JSON objects.
func normalizeDocuments(docs []map[string]any) []map[string]any {
	for _, doc := range docs {
		for k, v := range doc {
			doc[k] = normalizeBSON(v)
		}
	}
	return docs
}

func normalizeBSON(v any) any {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeBSON(item)
		}
		return m
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeBSON(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeBSON(item)
		}
		return val
	default:
		return v
	}
}

