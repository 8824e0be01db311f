// Package sources manages connections to the backing data stores that tools
// execute against: the relational core catalog, the MongoDB details catalog,
// and the SQLite analytics warehouse.
package sources

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Source is a connected backend. Every source reports the kind it was
// configured with and releases its connections on Close.
type Source interface {
	Kind() string
	Close(ctx context.Context) error
}

// SQLSource is implemented by sources that accept parameterized SQL.
type SQLSource interface {
	Source

	// Query runs a statement and returns every row as a column-keyed map.
	Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error)

	// Exec runs a statement that returns no rows and reports the number of
	// rows it affected.
	Exec(ctx context.Context, statement string, args ...any) (int64, error)
}

// DocumentSource is implemented by document stores addressed by collection.
type DocumentSource interface {
	Source

	Find(ctx context.Context, collection string, filter any) ([]map[string]any, error)
	Aggregate(ctx context.Context, collection string, pipeline []any) ([]map[string]any, error)

	// InsertOne stores a single document and returns its generated id.
	InsertOne(ctx context.Context, collection string, document any) (string, error)
}

// normalizeValue converts driver-specific column values into values that
// encode cleanly as JSON.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
