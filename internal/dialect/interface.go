package dialect

// Dialect abstracts database-specific operations.
type Dialect interface {
	// Metadata Queries (Schema Introspection)
	TablesQuery() string
	DescribeQuery(table string) string
	IsTableNotFound(err error) bool

	// Identifiers
	QuoteName(name string) string
	MaxNameLength() int

	// DDL Generation
	// DataType returns the column type template for a model field type.
	// Templates may reference {max_length}, {max_digits} and {decimal_places}.
	DataType(fieldType string) (string, bool)
	// RelDataType returns the column type used by a field pointing at a
	// primary key of the given column type.
	RelDataType(pkType string) string
	TablespaceSQL(tablespace string, inline bool) string
	DeferrableSQL() string
	TableSuffix() string
}
