package fixer

import (
	"fmt"
	"strings"

	"sqlfixtables/internal/creation"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"
)

// Multi-table inheritance parent links. Not handled; such columns and
// fields are skipped.
const (
	parentLinkColumnSuffix = "_ptr_id"
	parentLinkFieldSuffix  = "_ptr"
)

// ReconcileColumns compares the live columns of m's table with its declared
// fields and returns the statements that bring the table in line, plus
// foreign keys whose target table is not in known yet.
func (fx *Fixer) ReconcileColumns(m *models.Model, live []schema.LiveColumn, known map[string]bool) ([]string, *creation.Pending, error) {
	qn := fx.sql.QuoteName
	table := qn(m.Table)
	pending := creation.NewPending()
	var out []string

	// Declared fields by column; matched entries are removed.
	fields := make(map[string]*models.Field, len(m.Fields))
	for _, f := range m.Fields {
		fields[f.Column] = f
	}

	for _, col := range live {
		if strings.HasSuffix(col.Name, parentLinkColumnSuffix) {
			continue
		}

		field, ok := fields[col.Name]
		if !ok {
			out = append(out, fmt.Sprintf("-- Field %s no longer exists in the %s model", col.Name, m.Name))
			if fx.cfg.DropColumns {
				out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, qn(col.Name)))
			}
			continue
		}
		delete(fields, col.Name)

		declaredType, err := fx.sql.ColumnType(field)
		if err != nil {
			return nil, nil, fmt.Errorf("model %s: %w", m.Label(), err)
		}
		declared := schema.ParseType(declaredType)
		modify := false

		if !AreEquivalent(col.Type, declared) {
			if !SameBase(col.Type, declared) {
				out = append(out, fmt.Sprintf("-- Field %s.%s type changed from %s to %s, this cannot be fixed automatically",
					m.Name, field.Name, col.RawType, declaredType))
				continue
			}
			out = append(out, fmt.Sprintf("-- Field %s.%s type changed from %s to %s",
				m.Name, field.Name, col.RawType, declaredType))
			modify = true
		}

		if col.Nullable != field.Null {
			out = append(out, fmt.Sprintf("-- Field %s.%s changed nullness requirements", m.Name, field.Name))
			modify = true
		}
		if col.Key.IsUnique() != field.Unique {
			out = append(out, fmt.Sprintf("-- Field %s.%s changed uniqueness requirements", m.Name, field.Name))
			modify = true
		}

		if modify {
			stmt := []string{"ALTER TABLE", table, "MODIFY COLUMN", qn(col.Name), declaredType}
			// Only one qualifier fits here; NOT NULL wins over UNIQUE.
			if !field.Null {
				stmt = append(stmt, "NOT NULL")
			} else if field.Unique {
				stmt = append(stmt, "UNIQUE")
			}
			out = append(out, strings.Join(stmt, " ")+";")
		}
	}

	// Declared fields without a live column, in declaration order.
	for _, f := range m.Fields {
		if _, missing := fields[f.Column]; !missing {
			continue
		}
		if strings.HasSuffix(f.Name, parentLinkFieldSuffix) {
			continue
		}
		colType, err := fx.sql.ColumnType(f)
		if err != nil {
			return nil, nil, fmt.Errorf("model %s: %w", m.Label(), err)
		}

		stmt := []string{"ALTER TABLE", table, "ADD COLUMN", qn(f.Column), colType}
		if !f.Null {
			stmt = append(stmt, "NOT NULL")
		}
		if f.PrimaryKey {
			stmt = append(stmt, "PRIMARY KEY")
		} else if f.Unique {
			stmt = append(stmt, "UNIQUE")
		}
		if ts := tablespace(m, f); ts != "" && f.Unique {
			// Unique columns get no CREATE INDEX, so the index tablespace goes inline.
			if sql := fx.sql.TablespaceSQL(ts, true); sql != "" {
				stmt = append(stmt, sql)
			}
		}
		if f.Rel != nil {
			ref, isPending := fx.sql.InlineForeignKey(f, known)
			if isPending {
				pending.Add(f.Rel.Model.Table, creation.Ref{Model: m, Field: f})
			} else {
				stmt = append(stmt, ref...)
			}
		}
		out = append(out, strings.Join(stmt, " ")+";")
		out = append(out, fx.sql.IndexesForField(m, f)...)
	}

	return out, pending, nil
}

func tablespace(m *models.Model, f *models.Field) string {
	if f.Tablespace != "" {
		return f.Tablespace
	}
	return m.Tablespace
}
