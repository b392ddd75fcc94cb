package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a model definitions file.
type File struct {
	Apps []AppSpec `yaml:"apps"`
}

type AppSpec struct {
	Label  string      `yaml:"label"`
	Models []ModelSpec `yaml:"models"`
}

type ModelSpec struct {
	Name           string      `yaml:"name"`
	DBTable        string      `yaml:"db_table,omitempty"`
	Managed        *bool       `yaml:"managed,omitempty"`
	Proxy          bool        `yaml:"proxy,omitempty"`
	Tablespace     string      `yaml:"db_tablespace,omitempty"`
	UniqueTogether [][]string  `yaml:"unique_together,omitempty"`
	Fields         []FieldSpec `yaml:"fields"`
	ManyToMany     []M2MSpec   `yaml:"many_to_many,omitempty"`
}

type FieldSpec struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	DBColumn      string `yaml:"db_column,omitempty"`
	MaxLength     int    `yaml:"max_length,omitempty"`
	MaxDigits     int    `yaml:"max_digits,omitempty"`
	DecimalPlaces int    `yaml:"decimal_places,omitempty"`
	Null          bool   `yaml:"null,omitempty"`
	Unique        bool   `yaml:"unique,omitempty"`
	PrimaryKey    bool   `yaml:"primary_key,omitempty"`
	DBIndex       *bool  `yaml:"db_index,omitempty"`
	Tablespace    string `yaml:"db_tablespace,omitempty"`
	To            string `yaml:"to,omitempty"`
	ToField       string `yaml:"to_field,omitempty"`
}

type M2MSpec struct {
	Name    string `yaml:"name"`
	To      string `yaml:"to"`
	DBTable string `yaml:"db_table,omitempty"`
}

// Default max_length per field type when none is given.
var defaultMaxLength = map[string]int{
	"EmailField":    75,
	"URLField":      200,
	"SlugField":     50,
	"FileField":     100,
	"ImageField":    100,
	"FilePathField": 100,
}

// Registry holds every declared model, grouped by app in declaration order.
type Registry struct {
	apps    []string
	byApp   map[string][]*Model
	byLabel map[string]*Model
}

// Load reads and parses a model definitions file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading models: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML and resolves every relation.
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing models: %w", err)
	}
	return Build(f)
}

// Build builds a registry from already decoded definitions.
func Build(f File) (*Registry, error) {
	r := &Registry{
		byApp:   make(map[string][]*Model),
		byLabel: make(map[string]*Model),
	}
	for _, app := range f.Apps {
		if app.Label == "" {
			return nil, fmt.Errorf("app without label")
		}
		if _, dup := r.byApp[app.Label]; dup {
			return nil, fmt.Errorf("duplicate app %q", app.Label)
		}
		r.apps = append(r.apps, app.Label)
		r.byApp[app.Label] = nil
		for _, ms := range app.Models {
			m, err := newModel(app.Label, ms)
			if err != nil {
				return nil, err
			}
			if _, dup := r.byLabel[m.Label()]; dup {
				return nil, fmt.Errorf("duplicate model %s", m.Label())
			}
			r.byApp[app.Label] = append(r.byApp[app.Label], m)
			r.byLabel[m.Label()] = m
		}
	}
	if err := r.resolve(); err != nil {
		return nil, err
	}
	return r, nil
}

func newModel(app string, ms ModelSpec) (*Model, error) {
	if ms.Name == "" {
		return nil, fmt.Errorf("app %s: model without name", app)
	}
	m := &Model{
		App:            app,
		Name:           ms.Name,
		Table:          ms.DBTable,
		Managed:        ms.Managed == nil || *ms.Managed,
		Proxy:          ms.Proxy,
		Tablespace:     ms.Tablespace,
		UniqueTogether: ms.UniqueTogether,
	}
	if m.Table == "" {
		m.Table = app + "_" + strings.ToLower(ms.Name)
	}

	seen := make(map[string]bool)
	hasPK := false
	for _, fs := range ms.Fields {
		f, err := newField(fs)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Label(), err)
		}
		if seen[f.Column] {
			return nil, fmt.Errorf("model %s: duplicate column %s", m.Label(), f.Column)
		}
		seen[f.Column] = true
		hasPK = hasPK || f.PrimaryKey
		m.Fields = append(m.Fields, f)
	}
	if !hasPK {
		id := &Field{Name: "id", Column: "id", Type: "AutoField", PrimaryKey: true, Unique: true}
		m.Fields = append([]*Field{id}, m.Fields...)
	}

	for _, s := range ms.ManyToMany {
		if s.Name == "" || s.To == "" {
			return nil, fmt.Errorf("model %s: many_to_many needs name and to", m.Label())
		}
		m.ManyToMany = append(m.ManyToMany, &ManyToMany{Name: s.Name, To: s.To, DBTable: s.DBTable, owner: m})
	}
	return m, nil
}

func newField(fs FieldSpec) (*Field, error) {
	if fs.Name == "" || fs.Type == "" {
		return nil, fmt.Errorf("field needs name and type")
	}
	f := &Field{
		Name:          fs.Name,
		Column:        fs.DBColumn,
		Type:          fs.Type,
		MaxLength:     fs.MaxLength,
		MaxDigits:     fs.MaxDigits,
		DecimalPlaces: fs.DecimalPlaces,
		Null:          fs.Null,
		Unique:        fs.Unique || fs.PrimaryKey,
		PrimaryKey:    fs.PrimaryKey,
		Tablespace:    fs.Tablespace,
	}

	switch fs.Type {
	case "ForeignKey", "OneToOneField":
		if fs.To == "" {
			return nil, fmt.Errorf("field %s: %s needs a target", fs.Name, fs.Type)
		}
		f.Rel = &Relation{To: fs.To, ToField: fs.ToField}
		f.DBIndex = true
		if fs.Type == "OneToOneField" {
			f.Unique = true
		}
		if f.Column == "" {
			f.Column = fs.Name + "_id"
		}
	case "SlugField":
		f.DBIndex = true
	case "CharField", "CommaSeparatedIntegerField":
		if fs.MaxLength <= 0 {
			return nil, fmt.Errorf("field %s: %s requires max_length", fs.Name, fs.Type)
		}
	case "DecimalField":
		if fs.MaxDigits <= 0 {
			return nil, fmt.Errorf("field %s: DecimalField requires max_digits", fs.Name)
		}
	}
	if f.MaxLength == 0 {
		f.MaxLength = defaultMaxLength[fs.Type]
	}
	if fs.DBIndex != nil {
		f.DBIndex = *fs.DBIndex
	}
	if f.Column == "" {
		f.Column = fs.Name
	}
	return f, nil
}

func (r *Registry) resolve() error {
	for _, app := range r.apps {
		for _, m := range r.byApp[app] {
			for _, f := range m.Fields {
				if f.Rel == nil {
					continue
				}
				target, err := r.lookupFrom(m, f.Rel.To)
				if err != nil {
					return fmt.Errorf("model %s field %s: %w", m.Label(), f.Name, err)
				}
				f.Rel.Model = target
				if f.Rel.TargetField() == nil {
					return fmt.Errorf("model %s field %s: %s has no field %q", m.Label(), f.Name, target.Label(), f.Rel.ToField)
				}
			}
			for _, mm := range m.ManyToMany {
				target, err := r.lookupFrom(m, mm.To)
				if err != nil {
					return fmt.Errorf("model %s many_to_many %s: %w", m.Label(), mm.Name, err)
				}
				mm.Model = target
			}
		}
	}
	return nil
}

// lookupFrom resolves "self", "Model" relative to from's app, or "app.Model".
func (r *Registry) lookupFrom(from *Model, ref string) (*Model, error) {
	if ref == "self" {
		return from, nil
	}
	label := ref
	if !strings.Contains(ref, ".") {
		label = from.App + "." + ref
	}
	m, ok := r.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", ref)
	}
	return m, nil
}

// Apps returns app labels in declaration order.
func (r *Registry) Apps() []string {
	return append([]string(nil), r.apps...)
}

// AppModels returns the models of one app in declaration order.
func (r *Registry) AppModels(app string) ([]*Model, error) {
	ms, ok := r.byApp[app]
	if !ok {
		return nil, fmt.Errorf("app %q is not defined", app)
	}
	return append([]*Model(nil), ms...), nil
}

// All returns every model of every app.
func (r *Registry) All() []*Model {
	var all []*Model
	for _, app := range r.apps {
		all = append(all, r.byApp[app]...)
	}
	return all
}

// Lookup returns a model by "app.Model" label.
func (r *Registry) Lookup(label string) *Model {
	return r.byLabel[label]
}

// ByTable returns the managed model owning a table, if any.
func (r *Registry) ByTable(table string) *Model {
	for _, m := range r.All() {
		if m.Table == table && !m.Proxy {
			return m
		}
	}
	return nil
}
