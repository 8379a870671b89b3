package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dori/iplan/internal/model"
)

const taskColumns = `id, name, done, project_id, list_id, position, duration,
       suspended, suspended_at, undo_token, created_at, updated_at`

// TaskFilter narrows task listings. The zero value returns every task that
// is not suspended.
type TaskFilter struct {
	Done             *bool
	IncludeSuspended bool
}

func (f TaskFilter) where(base string, args []any) (string, []any) {
	clauses := []string{base}
	if f.Done != nil {
		clauses = append(clauses, "done = ?")
		args = append(args, *f.Done)
	}
	if !f.IncludeSuspended {
		clauses = append(clauses, "suspended = 0")
	}
	return strings.Join(clauses, " AND "), args
}

// Tasks returns the tasks of a list ordered by position
func (r repo) Tasks(ctx context.Context, listID int64, f TaskFilter) ([]model.Task, error) {
	where, args := f.where("list_id = ?", []any{listID})
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY position, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ProjectTasks returns the tasks of every list of a project
func (r repo) ProjectTasks(ctx context.Context, projectID int64, f TaskFilter) ([]model.Task, error) {
	where, args := f.where("project_id = ?", []any{projectID})
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY list_id, position, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// TimingTasks returns tasks whose log ends with an open session
func (r repo) TimingTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE duration LIKE '%,0;' AND suspended = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// SuspendedTasks returns every suspended task
func (r repo) SuspendedTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE suspended = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask returns a single task by ID
func (r repo) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError{Kind: "task", ID: id}
	}
	return t, err
}

// TaskByUndoToken finds the suspended task an undo token was issued for
func (r repo) TaskByUndoToken(ctx context.Context, token string) (*model.Task, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE undo_token = ? AND suspended = 1`, token)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUndoExpired
	}
	return t, err
}

// InsertTask stores t with the position already chosen by the caller
func (r repo) InsertTask(ctx context.Context, t *model.Task) error {
	now := time.Now()

	res, err := r.exec(ctx, "insert task", `
		INSERT INTO tasks (name, done, project_id, list_id, position, duration, suspended, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, t.Name, t.Done, t.ProjectID, t.ListID, t.Position, t.Duration, now, now)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &WriteError{Op: "insert task", Err: err}
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// UpdateTask overwrites every stored column of t
func (r repo) UpdateTask(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = time.Now()

	var token any
	if t.UndoToken != "" {
		token = t.UndoToken
	}
	return r.execOne(ctx, "update task", "task", t.ID, `
		UPDATE tasks SET
			name = ?, done = ?, project_id = ?, list_id = ?, position = ?,
			duration = ?, suspended = ?, suspended_at = ?, undo_token = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.Done, t.ProjectID, t.ListID, t.Position,
		t.Duration, t.Suspended, t.SuspendedAt, token, t.UpdatedAt,
		t.ID)
}

// DeleteTask deletes a task
func (r repo) DeleteTask(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete task", "task", id, `DELETE FROM tasks WHERE id = ?`, id)
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	var suspendedAt sql.NullTime
	var token sql.NullString

	err := s.Scan(
		&t.ID, &t.Name, &t.Done, &t.ProjectID, &t.ListID, &t.Position, &t.Duration,
		&t.Suspended, &suspendedAt, &token, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if suspendedAt.Valid {
		at := suspendedAt.Time
		t.SuspendedAt = &at
	}
	t.UndoToken = token.String

	return &t, nil
}
