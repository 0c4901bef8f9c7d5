package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"jobmate/sync-service/internal/model"
)

// Stages and stage methods share the same table shape; the two method sets
// below only differ in the table they target.

// ─── Stages ──────────────────────────────────────────────────────────────────

func (p *Postgres) ListStages(ctx context.Context) ([]model.Stage, error) {
	rows, err := p.listRef(ctx, "stages")
	if err != nil {
		return nil, err
	}
	stages := make([]model.Stage, len(rows))
	for i, r := range rows {
		stages[i] = model.Stage(r)
	}
	return stages, nil
}

func (p *Postgres) StageByID(ctx context.Context, id int64) (*model.Stage, error) {
	r, err := p.refWhere(ctx, "stages", sq.Eq{"id": id})
	if r == nil || err != nil {
		return nil, err
	}
	s := model.Stage(*r)
	return &s, nil
}

func (p *Postgres) StageByRemoteID(ctx context.Context, remoteID int64) (*model.Stage, error) {
	r, err := p.refWhere(ctx, "stages", sq.Eq{"remote_id": remoteID})
	if r == nil || err != nil {
		return nil, err
	}
	s := model.Stage(*r)
	return &s, nil
}

func (p *Postgres) InsertStage(ctx context.Context, s *model.Stage) error {
	return p.insertRef(ctx, "stages", s.RemoteID, s.Name, &s.ID)
}

func (p *Postgres) UpdateStage(ctx context.Context, s *model.Stage) error {
	return p.updateRef(ctx, "stages", s.ID, s.RemoteID, s.Name)
}

func (p *Postgres) DeleteStage(ctx context.Context, id int64) error {
	return p.exec(ctx, psql.Delete("stages").Where(sq.Eq{"id": id}))
}

func (p *Postgres) CountStages(ctx context.Context) (int64, error) {
	return p.countRef(ctx, "stages")
}

// ─── Stage methods ───────────────────────────────────────────────────────────

func (p *Postgres) ListStageMethods(ctx context.Context) ([]model.StageMethod, error) {
	rows, err := p.listRef(ctx, "stage_methods")
	if err != nil {
		return nil, err
	}
	methods := make([]model.StageMethod, len(rows))
	for i, r := range rows {
		methods[i] = model.StageMethod(r)
	}
	return methods, nil
}

func (p *Postgres) StageMethodByID(ctx context.Context, id int64) (*model.StageMethod, error) {
	r, err := p.refWhere(ctx, "stage_methods", sq.Eq{"id": id})
	if r == nil || err != nil {
		return nil, err
	}
	m := model.StageMethod(*r)
	return &m, nil
}

func (p *Postgres) StageMethodByRemoteID(ctx context.Context, remoteID int64) (*model.StageMethod, error) {
	r, err := p.refWhere(ctx, "stage_methods", sq.Eq{"remote_id": remoteID})
	if r == nil || err != nil {
		return nil, err
	}
	m := model.StageMethod(*r)
	return &m, nil
}

func (p *Postgres) InsertStageMethod(ctx context.Context, m *model.StageMethod) error {
	return p.insertRef(ctx, "stage_methods", m.RemoteID, m.Name, &m.ID)
}

func (p *Postgres) UpdateStageMethod(ctx context.Context, m *model.StageMethod) error {
	return p.updateRef(ctx, "stage_methods", m.ID, m.RemoteID, m.Name)
}

func (p *Postgres) DeleteStageMethod(ctx context.Context, id int64) error {
	return p.exec(ctx, psql.Delete("stage_methods").Where(sq.Eq{"id": id}))
}

func (p *Postgres) CountStageMethods(ctx context.Context) (int64, error) {
	return p.countRef(ctx, "stage_methods")
}

// ─── Shared reference-table plumbing ─────────────────────────────────────────

type refRow struct {
	ID       int64
	RemoteID *int64
	Name     string
}

func (p *Postgres) listRef(ctx context.Context, table string) ([]refRow, error) {
	query, args, err := psql.Select("id", "remote_id", "name").From(table).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]refRow, 0)
	for rows.Next() {
		var r refRow
		if err := rows.Scan(&r.ID, &r.RemoteID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) refWhere(ctx context.Context, table string, pred sq.Eq) (*refRow, error) {
	query, args, err := psql.Select("id", "remote_id", "name").From(table).
		Where(pred).OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var r refRow
	err = p.db.QueryRow(ctx, query, args...).Scan(&r.ID, &r.RemoteID, &r.Name)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return &r, nil
}

func (p *Postgres) insertRef(ctx context.Context, table string, remoteID *int64, name string, id *int64) error {
	query, args, err := psql.Insert(table).
		Columns("remote_id", "name").
		Values(remoteID, name).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := p.db.QueryRow(ctx, query, args...).Scan(id); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (p *Postgres) updateRef(ctx context.Context, table string, id int64, remoteID *int64, name string) error {
	return p.exec(ctx, psql.Update(table).
		Set("remote_id", remoteID).
		Set("name", name).
		Where(sq.Eq{"id": id}))
}

func (p *Postgres) countRef(ctx context.Context, table string) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := p.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
