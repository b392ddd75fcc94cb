package fixer

import (
	"context"
	"sort"
	"testing"

	"sqlfixtables/internal/creation"
	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"
)

// fakeIntrospector serves table descriptions from memory. Tables absent
// from tables are reported as not found.
type fakeIntrospector struct {
	tables       map[string][]schema.LiveColumn
	describeErrs map[string]error
	tableErr     error
	described    []string
}

func (f *fakeIntrospector) DescribeTable(_ context.Context, table string) ([]schema.LiveColumn, error) {
	f.described = append(f.described, table)
	if err := f.describeErrs[table]; err != nil {
		return nil, err
	}
	cols, ok := f.tables[table]
	if !ok {
		return nil, schema.ErrTableNotFound
	}
	return cols, nil
}

func (f *fakeIntrospector) TableNames(_ context.Context) (map[string]bool, error) {
	if f.tableErr != nil {
		return nil, f.tableErr
	}
	names := make(map[string]bool, len(f.tables))
	for t := range f.tables {
		names[t] = true
	}
	return names, nil
}

func col(name, typ string, nullable bool, key string) schema.LiveColumn {
	return schema.LiveColumn{
		Name:     name,
		RawType:  typ,
		Type:     schema.ParseType(typ),
		Nullable: nullable,
		Key:      schema.ParseKeyKind(key),
	}
}

func mustRegistry(t *testing.T, src string) *models.Registry {
	t.Helper()
	reg, err := models.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parsing models: %v", err)
	}
	return reg
}

func newTestFixer(t *testing.T, reg *models.Registry, in Introspector, drop bool) *Fixer {
	t.Helper()
	d, err := dialect.GetDialect(dialect.MySQL)
	if err != nil {
		t.Fatal(err)
	}
	fx, err := New(Config{Backend: dialect.MySQL, DropColumns: drop}, in, creation.NewBuilder(d), reg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return fx
}

func model(t *testing.T, reg *models.Registry, label string) *models.Model {
	t.Helper()
	m := reg.Lookup(label)
	if m == nil {
		t.Fatalf("model %s not found", label)
	}
	return m
}

func equalLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d statements, got %d:\n%q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d:\n got: %s\nwant: %s", i, got[i], want[i])
		}
	}
}

func indexOf(lines []string, pred func(string) bool) int {
	for i, l := range lines {
		if pred(l) {
			return i
		}
	}
	return -1
}

func knownTables(names ...string) map[string]bool {
	k := make(map[string]bool, len(names))
	for _, n := range names {
		k[n] = true
	}
	return k
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
