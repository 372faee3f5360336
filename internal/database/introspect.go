package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

const tableInfoQuery = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`

// SchemaIntrospector reads column metadata from the live sqlite catalog
type SchemaIntrospector struct {
	log zerolog.Logger
	db  *DB
}

func NewSchemaIntrospector(log zerolog.Logger, db *DB) *SchemaIntrospector {
	return &SchemaIntrospector{
		log: log.With().Str("module", "introspect").Logger(),
		db:  db,
	}
}

var _ domain.SchemaIntrospector = (*SchemaIntrospector)(nil)

// Columns returns the columns of table in declaration order.
// A table that does not exist yields an empty list.
func (s *SchemaIntrospector) Columns(ctx context.Context, table string) ([]domain.ColumnInfo, error) {
	s.log.Trace().Str("query", tableInfoQuery).Str("table", table).Msg("Columns")

	rows, err := s.db.handler.QueryContext(ctx, tableInfoQuery, table)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var columns []domain.ColumnInfo
	for rows.Next() {
		var c domain.ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return columns, nil
}

// isTextType applies sqlite's type affinity rules for TEXT
func isTextType(declared string) bool {
	t := strings.ToUpper(declared)
	return strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT")
}

// quoteIdent quotes a sqlite identifier. Callers only pass names that came
// from the schema, the escaping guards against odd but legal column names.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
