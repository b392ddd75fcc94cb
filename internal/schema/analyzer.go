package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sqlfixtables/internal/dialect"
)

// ErrTableNotFound is returned by DescribeTable when the table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Introspector reads live table metadata through a dialect.
type Introspector struct {
	db *sql.DB
	d  dialect.Dialect
}

func NewIntrospector(db *sql.DB, d dialect.Dialect) *Introspector {
	return &Introspector{db: db, d: d}
}

// DescribeTable returns the columns of table in the database's reported
// order. A missing table yields ErrTableNotFound; any other failure is
// returned wrapped and should abort the run.
func (in *Introspector) DescribeTable(ctx context.Context, table string) ([]LiveColumn, error) {
	rows, err := in.db.QueryContext(ctx, in.d.DescribeQuery(table))
	if err != nil {
		if in.d.IsTableNotFound(err) {
			return nil, fmt.Errorf("describe %s: %w", table, ErrTableNotFound)
		}
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []LiveColumn
	for rows.Next() {
		var name, typ, null, key, extra sql.NullString
		var def sql.NullString
		if err := rows.Scan(&name, &typ, &null, &key, &def, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		cols = append(cols, newLiveColumn(name.String, typ.String, null.String, key.String, def, extra.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return cols, nil
}

// TableNames returns the set of base tables in the current database.
func (in *Introspector) TableNames(ctx context.Context) (map[string]bool, error) {
	rows, err := in.db.QueryContext(ctx, in.d.TablesQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

func newLiveColumn(name, typ, null, key string, def sql.NullString, extra string) LiveColumn {
	col := LiveColumn{
		Name:     name,
		RawType:  typ,
		Type:     ParseType(typ),
		Nullable: null == "YES" || null == "yes",
		Key:      ParseKeyKind(key),
		Extra:    extra,
	}
	if def.Valid {
		v := def.String
		col.Default = &v
	}
	return col
}
