// Package fixer computes the SQL that reconciles live MySQL tables with
// declared models. It only generates statements; nothing is executed.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"sqlfixtables/internal/creation"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"
)

// Introspector reads the live schema.
type Introspector interface {
	// DescribeTable returns schema.ErrTableNotFound for a missing table.
	DescribeTable(ctx context.Context, table string) ([]schema.LiveColumn, error)
	TableNames(ctx context.Context) (map[string]bool, error)
}

// SQLBuilder renders the DDL the reconciler does not build itself.
type SQLBuilder interface {
	QuoteName(name string) string
	ColumnType(f *models.Field) (string, error)
	TablespaceSQL(tablespace string, inline bool) string
	CreateTable(m *models.Model, known map[string]bool) ([]string, *creation.Pending, error)
	InlineForeignKey(f *models.Field, known map[string]bool) ([]string, bool)
	PendingReferences(target *models.Model, refs []creation.Ref) []string
	IndexesForField(m *models.Model, f *models.Field) []string
	ManyToManyTable(m *models.Model, mm *models.ManyToMany) ([]string, error)
}

// Fixer reconciles the models of one registry against a database.
type Fixer struct {
	cfg      Config
	in       Introspector
	sql      SQLBuilder
	registry *models.Registry
	logger   *slog.Logger
}

// New validates cfg and returns a Fixer. A nil logger discards logs.
func New(cfg Config, in Introspector, sql SQLBuilder, registry *models.Registry, logger *slog.Logger) (*Fixer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if in == nil || sql == nil || registry == nil {
		return nil, errors.New("fixer: introspector, sql builder and registry are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fixer{cfg: cfg, in: in, sql: sql, registry: registry, logger: logger}, nil
}

// AlterTable returns the statements for one model. A table that does not
// exist yet gets its full creation SQL instead of a diff. Introspection
// errors other than a missing table are returned.
func (fx *Fixer) AlterTable(ctx context.Context, m *models.Model, known map[string]bool) ([]string, *creation.Pending, error) {
	if !m.Managed || m.Proxy {
		fx.logger.Debug("skipping model", "model", m.Label(), "managed", m.Managed, "proxy", m.Proxy)
		return nil, creation.NewPending(), nil
	}

	live, err := fx.in.DescribeTable(ctx, m.Table)
	if errors.Is(err, schema.ErrTableNotFound) {
		fx.logger.Info("table does not exist, generating full creation", "model", m.Label(), "table", m.Table)
		return fx.sql.CreateTable(m, known)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("introspecting %s: %w", m.Label(), err)
	}

	fx.logger.Debug("reconciling columns", "model", m.Label(), "table", m.Table, "columns", len(live))
	return fx.ReconcileColumns(m, live, known)
}

// FixApp walks the models of app and returns every statement in order.
// Foreign keys to tables created later in the run are deferred and
// emitted right after their target model. progress, if set, is called once
// per model.
func (fx *Fixer) FixApp(ctx context.Context, app string, progress func(*models.Model)) ([]string, error) {
	appModels, err := fx.registry.AppModels(app)
	if err != nil {
		return nil, err
	}
	if fx.cfg.SortModels {
		appModels = models.SortByDependencies(appModels)
	}

	tables, err := fx.in.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(tables))
	for t := range tables {
		known[t] = true
	}
	joinTables := make(map[string]bool, len(tables))
	for t := range tables {
		joinTables[t] = true
	}

	pending := creation.NewPending()
	var out []string

	for _, m := range appModels {
		sql, refs, err := fx.AlterTable(ctx, m, known)
		if err != nil {
			return nil, err
		}
		pending = pending.Merge(refs)

		if m.Managed && !m.Proxy {
			known[m.Table] = true
			sql = append(sql, fx.resolvePending(m, pending)...)
		}

		m2m, err := fx.NewManyToManyTables(m, joinTables)
		if err != nil {
			return nil, err
		}
		for _, mm := range m.ManyToMany {
			joinTables[mm.JoinTable()] = true
		}
		sql = append(sql, m2m...)

		fx.logger.Debug("model done", "model", m.Label(), "statements", len(sql))
		out = append(out, sql...)
		if progress != nil {
			progress(m)
		}
	}

	for _, target := range pending.Unresolved() {
		for _, r := range pending.Refs(target) {
			out = append(out, fmt.Sprintf("-- Field %s.%s references table %s, which is not created by this run",
				r.Model.Name, r.Field.Name, target))
		}
		fx.logger.Warn("unresolved foreign keys", "table", target)
	}
	return out, nil
}

// resolvePending emits the deferred constraints waiting on m's table.
func (fx *Fixer) resolvePending(m *models.Model, pending *creation.Pending) []string {
	if !pending.Has(m.Table) {
		return nil
	}
	refs := pending.Take(m.Table)
	if len(refs) == 0 {
		return nil
	}
	fx.logger.Debug("resolving deferred foreign keys", "table", m.Table, "count", len(refs))
	return fx.sql.PendingReferences(m, refs)
}
