package fixer

import (
	"fmt"

	"sqlfixtables/internal/models"
)

// NewManyToManyTables returns CREATE TABLE statements for m's many-to-many
// relations whose join table is not in tables. Existing join tables are not
// inspected.
func (fx *Fixer) NewManyToManyTables(m *models.Model, tables map[string]bool) ([]string, error) {
	var out []string
	for _, mm := range m.ManyToMany {
		if tables[mm.JoinTable()] {
			continue
		}
		if !m.Managed && !mm.Model.Managed {
			continue
		}
		sql, err := fx.sql.ManyToManyTable(m, mm)
		if err != nil {
			return nil, fmt.Errorf("model %s many_to_many %s: %w", m.Label(), mm.Name, err)
		}
		out = append(out, sql...)
	}
	return out, nil
}
