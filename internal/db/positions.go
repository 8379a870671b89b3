package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/position"
)

// positionTable maps a kind to its table and parent column. Table names
// never come from input, only from this map.
var positionTable = map[position.Kind]struct {
	table  string
	parent string
}{
	position.KindProject: {"projects", ""},
	position.KindList:    {"lists", "project_id"},
	position.KindTask:    {"tasks", "list_id"},
}

func tableFor(kind position.Kind) (string, string, error) {
	t, ok := positionTable[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown kind %s", model.ErrInvalidScope, kind)
	}
	return t.table, t.parent, nil
}

// Slots implements position.Store
func (r repo) Slots(ctx context.Context, scope position.Scope) ([]position.Slot, error) {
	table, parent, err := tableFor(scope.Kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, position FROM ` + table
	var args []any
	if parent != "" {
		query += ` WHERE ` + parent + ` = ?`
		args = append(args, scope.Parent)
	}
	query += ` ORDER BY position, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []position.Slot
	for rows.Next() {
		var s position.Slot
		if err := rows.Scan(&s.ID, &s.Position); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// SetPosition implements position.Store
func (r repo) SetPosition(ctx context.Context, kind position.Kind, id int64, pos int) error {
	table, _, err := tableFor(kind)
	if err != nil {
		return err
	}
	return r.execOne(ctx, "set "+kind.String()+" position", kind.String(), id,
		`UPDATE `+table+` SET position = ?, updated_at = ? WHERE id = ?`, pos, time.Now(), id)
}

// SetParent implements position.Store. Only tasks change parents; the
// task's project follows the new list.
func (r repo) SetParent(ctx context.Context, kind position.Kind, id, parent int64, pos int) error {
	if kind != position.KindTask {
		return fmt.Errorf("%w: %s cannot change parent", model.ErrInvalidScope, kind)
	}

	var projectID int64
	err := r.q.QueryRowContext(ctx, `SELECT project_id FROM lists WHERE id = ?`, parent).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: list %d does not exist", model.ErrInvalidScope, parent)
	}
	if err != nil {
		return err
	}

	return r.execOne(ctx, "move task", "task", id, `
		UPDATE tasks SET list_id = ?, project_id = ?, position = ?, updated_at = ? WHERE id = ?
	`, parent, projectID, pos, time.Now(), id)
}

// Delete implements position.Store, cascading to dependent rows
func (r repo) Delete(ctx context.Context, kind position.Kind, id int64) error {
	switch kind {
	case position.KindProject:
		return r.DeleteProject(ctx, id)
	case position.KindList:
		return r.DeleteList(ctx, id)
	case position.KindTask:
		return r.DeleteTask(ctx, id)
	}
	return fmt.Errorf("%w: unknown kind %s", model.ErrInvalidScope, kind)
}

// Scopes lists every sibling scope that exists: all projects, the lists of
// each project and the tasks of each list.
func (r repo) Scopes(ctx context.Context) ([]position.Scope, error) {
	scopes := []position.Scope{position.Projects()}

	rows, err := r.q.QueryContext(ctx, `SELECT id FROM projects ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	var projectIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		projectIDs = append(projectIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range projectIDs {
		scopes = append(scopes, position.ListsOf(id))
	}

	rows, err = r.q.QueryContext(ctx, `SELECT id FROM lists ORDER BY project_id, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		scopes = append(scopes, position.TasksOf(id))
	}
	return scopes, rows.Err()
}

var (
	_ position.Store = (*DB)(nil)
	_ position.Store = (*Tx)(nil)
)
