// Package creation generates the DDL the reconciler delegates to: full
// table creation, inline and deferred foreign keys, indexes and
// many-to-many join tables.
package creation

import (
	"fmt"
	"strings"

	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/models"
)

const indent = "    "

// Builder renders DDL for models through a dialect.
type Builder struct {
	d dialect.Dialect
}

func NewBuilder(d dialect.Dialect) *Builder {
	return &Builder{d: d}
}

func (b *Builder) QuoteName(name string) string {
	return b.d.QuoteName(name)
}

func (b *Builder) TablespaceSQL(tablespace string, inline bool) string {
	return b.d.TablespaceSQL(tablespace, inline)
}

// ColumnType returns the declared column type of a field.
func (b *Builder) ColumnType(f *models.Field) (string, error) {
	return f.DBType(b.d)
}

// CreateTable returns the CREATE TABLE statement for m followed by index
// statements for its fields. References to tables not in known are left
// out of the statement and returned as pending.
func (b *Builder) CreateTable(m *models.Model, known map[string]bool) ([]string, *Pending, error) {
	qn := b.d.QuoteName
	pending := NewPending()

	var defs []string
	for _, f := range m.Fields {
		colType, err := f.DBType(b.d)
		if err != nil {
			return nil, nil, fmt.Errorf("model %s: %w", m.Label(), err)
		}
		def := []string{qn(f.Column), colType}
		if !f.Null {
			def = append(def, "NOT NULL")
		}
		if f.PrimaryKey {
			def = append(def, "PRIMARY KEY")
		} else if f.Unique {
			def = append(def, "UNIQUE")
		}
		if ts := fieldTablespace(m, f); ts != "" && f.Unique {
			if sql := b.d.TablespaceSQL(ts, true); sql != "" {
				def = append(def, sql)
			}
		}
		if f.Rel != nil {
			ref, isPending := b.InlineForeignKey(f, known)
			if isPending {
				pending.Add(f.Rel.Model.Table, Ref{Model: m, Field: f})
			} else {
				def = append(def, ref...)
			}
		}
		defs = append(defs, indent+strings.Join(def, " "))
	}
	for _, cols := range m.UniqueTogether {
		quoted := make([]string, 0, len(cols))
		for _, name := range cols {
			f := m.Field(name)
			if f == nil {
				return nil, nil, fmt.Errorf("model %s: unique_together names unknown field %q", m.Label(), name)
			}
			quoted = append(quoted, qn(f.Column))
		}
		defs = append(defs, indent+"UNIQUE ("+strings.Join(quoted, ", ")+")")
	}

	stmt := "CREATE TABLE " + qn(m.Table) + " (\n" + strings.Join(defs, ",\n") + "\n)"
	if m.Tablespace != "" {
		if sql := b.d.TablespaceSQL(m.Tablespace, false); sql != "" {
			stmt += " " + sql
		}
	}
	stmt += b.d.TableSuffix() + "\n;"

	out := []string{stmt}
	for _, f := range m.Fields {
		out = append(out, b.IndexesForField(m, f)...)
	}
	return out, pending, nil
}

// InlineForeignKey returns the REFERENCES clause for a relation field, or
// reports it as pending when the target table is not known yet.
func (b *Builder) InlineForeignKey(f *models.Field, known map[string]bool) ([]string, bool) {
	target := f.Rel.Model
	if !known[target.Table] {
		return nil, true
	}
	qn := b.d.QuoteName
	ref := "REFERENCES " + qn(target.Table) + " (" + qn(f.Rel.TargetField().Column) + ")" + b.d.DeferrableSQL()
	return []string{ref}, false
}

// PendingReferences returns ALTER TABLE ... ADD CONSTRAINT statements for
// references waiting on target.
func (b *Builder) PendingReferences(target *models.Model, refs []Ref) []string {
	if !target.Managed || target.Proxy {
		return nil
	}
	qn := b.d.QuoteName
	var out []string
	for _, r := range refs {
		rTable := r.Model.Table
		rCol := r.Field.Column
		col := r.Field.Rel.TargetField().Column
		name := fmt.Sprintf("%s_refs_%s_%s", rCol, col, dialect.Digest(rTable, target.Table))
		out = append(out, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s;",
			qn(rTable), qn(dialect.TruncateName(name, b.d.MaxNameLength())),
			qn(rCol), qn(target.Table), qn(col), b.d.DeferrableSQL()))
	}
	return out
}

// IndexesForField returns CREATE INDEX for an indexed, non-unique field.
func (b *Builder) IndexesForField(m *models.Model, f *models.Field) []string {
	if !f.DBIndex || f.Unique {
		return nil
	}
	qn := b.d.QuoteName
	name := dialect.TruncateName(m.Table+"_"+dialect.Digest(f.Column), b.d.MaxNameLength())
	stmt := "CREATE INDEX " + qn(name) + " ON " + qn(m.Table) + " (" + qn(f.Column) + ")"
	if ts := fieldTablespace(m, f); ts != "" {
		if sql := b.d.TablespaceSQL(ts, false); sql != "" {
			stmt += " " + sql
		}
	}
	return []string{stmt + ";"}
}

// ManyToManyTable returns the join table for a many-to-many relation and
// the foreign key constraints pointing at both sides.
func (b *Builder) ManyToManyTable(m *models.Model, mm *models.ManyToMany) ([]string, error) {
	qn := b.d.QuoteName
	fromCol, toCol := mm.Columns()
	fromType, err := b.relType(m)
	if err != nil {
		return nil, err
	}
	toType, err := b.relType(mm.Model)
	if err != nil {
		return nil, err
	}
	table := mm.JoinTable()

	defs := []string{
		indent + qn("id") + " integer AUTO_INCREMENT NOT NULL PRIMARY KEY",
		indent + qn(fromCol) + " " + fromType + " NOT NULL",
		indent + qn(toCol) + " " + toType + " NOT NULL",
		indent + "UNIQUE (" + qn(fromCol) + ", " + qn(toCol) + ")",
	}
	stmt := "CREATE TABLE " + qn(table) + " (\n" + strings.Join(defs, ",\n") + "\n)"
	if m.Tablespace != "" {
		if sql := b.d.TablespaceSQL(m.Tablespace, false); sql != "" {
			stmt += " " + sql
		}
	}
	out := []string{stmt + b.d.TableSuffix() + "\n;"}

	for _, side := range []struct {
		col    string
		target *models.Model
	}{{fromCol, m}, {toCol, mm.Model}} {
		pk := side.target.PK().Column
		name := fmt.Sprintf("%s_refs_%s_%s", side.col, pk, dialect.Digest(table, side.target.Table))
		out = append(out, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s;",
			qn(table), qn(dialect.TruncateName(name, b.d.MaxNameLength())),
			qn(side.col), qn(side.target.Table), qn(pk), b.d.DeferrableSQL()))
	}
	return out, nil
}

func (b *Builder) relType(m *models.Model) (string, error) {
	pk := m.PK()
	if pk == nil {
		return "", fmt.Errorf("model %s has no primary key", m.Label())
	}
	t, err := pk.DBType(b.d)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", m.Label(), err)
	}
	return b.d.RelDataType(t), nil
}

func fieldTablespace(m *models.Model, f *models.Field) string {
	if f.Tablespace != "" {
		return f.Tablespace
	}
	return m.Tablespace
}
