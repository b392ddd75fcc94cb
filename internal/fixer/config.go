package fixer

import (
	"fmt"

	"sqlfixtables/internal/dialect"
)

// Config controls a reconciliation run. It is validated once by New.
type Config struct {
	Backend dialect.Backend
	// DropColumns emits DROP COLUMN for live columns without a declared field.
	DropColumns bool
	// SortModels processes an app's models in foreign key dependency order
	// instead of declaration order.
	SortModels bool
}

// Validate rejects every backend but the supported one.
func (c Config) Validate() error {
	b, err := dialect.ParseBackend(string(c.Backend))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if b != dialect.MySQL {
		return fmt.Errorf("invalid configuration: %w: %s", dialect.ErrUnsupportedBackend, b)
	}
	return nil
}
