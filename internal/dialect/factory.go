package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names a database engine as written in the configuration.
type Backend string

const (
	MySQL     Backend = "mysql"
	Postgres  Backend = "postgres"
	SQLServer Backend = "sqlserver"
	Oracle    Backend = "oracle"
	SQLite    Backend = "sqlite"
)

var (
	ErrBackendNotConfigured = errors.New("database backend is not configured")
	ErrUnsupportedBackend   = errors.New("unsupported database backend")
)

// ParseBackend validates a configured driver name. Only MySQL type-naming
// conventions are understood by the column reconciler, so every other
// engine is rejected here, before any introspection happens.
func ParseBackend(driver string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(driver)))
	switch b {
	case "":
		return "", fmt.Errorf("%w: set driver to %q in the active database entry", ErrBackendNotConfigured, MySQL)
	case MySQL:
		return b, nil
	case "postgresql":
		b = Postgres
	case "mssql":
		b = SQLServer
	case "sqlite3":
		b = SQLite
	}
	switch b {
	case Postgres, SQLServer, Oracle, SQLite:
		return "", fmt.Errorf("%w: %s has not been tested, only %s is supported", ErrUnsupportedBackend, b, MySQL)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, driver)
}

// GetDialect returns the Dialect implementation for a validated backend.
func GetDialect(b Backend) (Dialect, error) {
	switch b {
	case MySQL:
		return &MysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, b)
	}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
