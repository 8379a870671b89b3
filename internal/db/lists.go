package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dori/iplan/internal/model"
)

// Lists returns the lists of a project ordered by position
func (r repo) Lists(ctx context.Context, projectID int64) ([]model.List, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, project_id, position, created_at, updated_at
		FROM lists
		WHERE project_id = ?
		ORDER BY position, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.Name, &l.ProjectID, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// GetList returns a single list by ID
func (r repo) GetList(ctx context.Context, id int64) (*model.List, error) {
	var l model.List
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, project_id, position, created_at, updated_at
		FROM lists WHERE id = ?
	`, id).Scan(&l.ID, &l.Name, &l.ProjectID, &l.Position, &l.CreatedAt, &l.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError{Kind: "list", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// InsertList stores l with the position already chosen by the caller
func (r repo) InsertList(ctx context.Context, l *model.List) error {
	now := time.Now()

	res, err := r.exec(ctx, "insert list", `
		INSERT INTO lists (name, project_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.Name, l.ProjectID, l.Position, now, now)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &WriteError{Op: "insert list", Err: err}
	}
	l.ID = id
	l.CreatedAt = now
	l.UpdatedAt = now
	return nil
}

// UpdateList overwrites every stored column of l
func (r repo) UpdateList(ctx context.Context, l *model.List) error {
	l.UpdatedAt = time.Now()
	return r.execOne(ctx, "update list", "list", l.ID, `
		UPDATE lists SET name = ?, project_id = ?, position = ?, updated_at = ? WHERE id = ?
	`, l.Name, l.ProjectID, l.Position, l.UpdatedAt, l.ID)
}

// DeleteList deletes a list and its tasks
func (r repo) DeleteList(ctx context.Context, id int64) error {
	if _, err := r.exec(ctx, "delete list tasks", `DELETE FROM tasks WHERE list_id = ?`, id); err != nil {
		return err
	}
	return r.execOne(ctx, "delete list", "list", id, `DELETE FROM lists WHERE id = ?`, id)
}
