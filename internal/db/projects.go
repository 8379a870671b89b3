package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dori/iplan/internal/model"
)

// repo holds the queries shared by DB and Tx
type repo struct {
	q querier
}

func (r repo) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &WriteError{Op: op, Err: err}
	}
	return res, nil
}

// execOne is exec for statements addressing a single row by id
func (r repo) execOne(ctx context.Context, op, kind string, id int64, query string, args ...any) error {
	res, err := r.exec(ctx, op, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	if n == 0 {
		return model.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// Projects returns projects ordered by position. Archived projects are
// included only when archived is true.
func (r repo) Projects(ctx context.Context, archived bool) ([]model.Project, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT p.id, p.name, p.archived, p.position, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM lists WHERE project_id = p.id) AS list_count,
		       (SELECT COUNT(*) FROM tasks WHERE project_id = p.id AND suspended = 0) AS task_count
		FROM projects p
		WHERE ? OR p.archived = 0
		ORDER BY p.position, p.id
	`, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID, &p.Name, &p.Archived, &p.Position,
			&p.CreatedAt, &p.UpdatedAt, &p.ListCount, &p.TaskCount,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// GetProject returns a single project by ID
func (r repo) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project

	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, archived, position, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Archived, &p.Position, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError{Kind: "project", ID: id}
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// InsertProject stores p with the position already chosen by the caller
// and fills in its id and timestamps.
func (r repo) InsertProject(ctx context.Context, p *model.Project) error {
	now := time.Now()

	res, err := r.exec(ctx, "insert project", `
		INSERT INTO projects (name, archived, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Archived, p.Position, now, now)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &WriteError{Op: "insert project", Err: err}
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// UpdateProject overwrites every stored column of p
func (r repo) UpdateProject(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now()
	return r.execOne(ctx, "update project", "project", p.ID, `
		UPDATE projects SET name = ?, archived = ?, position = ?, updated_at = ? WHERE id = ?
	`, p.Name, p.Archived, p.Position, p.UpdatedAt, p.ID)
}

// DeleteProject deletes a project with its lists and tasks. Sibling
// positions are left alone; see package position.
func (r repo) DeleteProject(ctx context.Context, id int64) error {
	if _, err := r.exec(ctx, "delete project tasks", `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		return err
	}
	if _, err := r.exec(ctx, "delete project lists", `DELETE FROM lists WHERE project_id = ?`, id); err != nil {
		return err
	}
	return r.execOne(ctx, "delete project", "project", id, `DELETE FROM projects WHERE id = ?`, id)
}
