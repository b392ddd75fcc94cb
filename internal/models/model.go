package models

import (
	"fmt"
	"strconv"
	"strings"

	"sqlfixtables/internal/dialect"
)

// Model is one declared model and the table it maps to.
type Model struct {
	App            string
	Name           string
	Table          string
	Managed        bool
	Proxy          bool
	Tablespace     string
	Fields         []*Field
	ManyToMany     []*ManyToMany
	UniqueTogether [][]string
}

// Label returns "app.Model".
func (m *Model) Label() string {
	return m.App + "." + m.Name
}

// PK returns the primary key field.
func (m *Model) PK() *Field {
	for _, f := range m.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return nil
}

// Field returns the field with the given name or column.
func (m *Model) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name || f.Column == name {
			return f
		}
	}
	return nil
}

// Relation describes a foreign key or one-to-one link.
type Relation struct {
	To      string // "app.Model" or "Model" within the same app
	ToField string // target field name, defaults to the primary key
	Model   *Model // resolved target
}

// TargetField returns the referenced field of the resolved target.
func (r *Relation) TargetField() *Field {
	if r.Model == nil {
		return nil
	}
	if r.ToField == "" {
		return r.Model.PK()
	}
	return r.Model.Field(r.ToField)
}

// Field is one declared column of a model.
type Field struct {
	Name          string
	Column        string
	Type          string
	MaxLength     int
	MaxDigits     int
	DecimalPlaces int
	Null          bool
	Unique        bool
	PrimaryKey    bool
	DBIndex       bool
	Tablespace    string
	Rel           *Relation
}

// IsRelation reports whether the field points at another model.
func (f *Field) IsRelation() bool {
	return f.Rel != nil
}

// DBType resolves the declared column type through the dialect's type table.
func (f *Field) DBType(d dialect.Dialect) (string, error) {
	if f.Rel != nil {
		target := f.Rel.TargetField()
		if target == nil {
			return "", fmt.Errorf("field %s: relation to %s is not resolved", f.Name, f.Rel.To)
		}
		pk, err := target.DBType(d)
		if err != nil {
			return "", err
		}
		return d.RelDataType(pk), nil
	}
	tmpl, ok := d.DataType(f.Type)
	if !ok {
		return "", fmt.Errorf("field %s: unknown field type %q", f.Name, f.Type)
	}
	return dialect.ExpandType(tmpl, map[string]string{
		"max_length":     strconv.Itoa(f.MaxLength),
		"max_digits":     strconv.Itoa(f.MaxDigits),
		"decimal_places": strconv.Itoa(f.DecimalPlaces),
	}), nil
}

// ManyToMany is a many-to-many relation materialized as a join table.
type ManyToMany struct {
	Name    string
	To      string
	DBTable string
	Model   *Model // resolved target
	owner   *Model
}

// JoinTable returns the join table name.
func (m *ManyToMany) JoinTable() string {
	if m.DBTable != "" {
		return m.DBTable
	}
	return m.owner.Table + "_" + m.Name
}

// Columns returns the join table's source and target column names.
func (m *ManyToMany) Columns() (string, string) {
	from := strings.ToLower(m.owner.Name)
	to := strings.ToLower(m.Model.Name)
	if m.owner == m.Model {
		return "from_" + from + "_id", "to_" + to + "_id"
	}
	return from + "_id", to + "_id"
}

// Owner returns the model declaring the relation.
func (m *ManyToMany) Owner() *Model {
	return m.owner
}
