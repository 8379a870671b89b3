package planner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/position"
	"github.com/dori/iplan/internal/timelog"
)

var errTaskMoved = errors.New("task moved while waiting for lock")

// Tasks returns the tasks of a list ordered by position
func (p *Planner) Tasks(ctx context.Context, listID int64, f db.TaskFilter) ([]model.Task, error) {
	if _, err := p.db.GetList(ctx, listID); err != nil {
		if model.IsNotFound(err) {
			return nil, scopeError("list", listID)
		}
		return nil, err
	}
	return p.db.Tasks(ctx, listID, f)
}

// Task returns a single task. Suspended tasks are reported as not found.
func (p *Planner) Task(ctx context.Context, id int64) (*model.Task, error) {
	t, err := p.db.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := live(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTask appends a task to a list. The task's project is the list's.
func (p *Planner) CreateTask(ctx context.Context, listID int64, name string) (*model.Task, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	t := &model.Task{Name: name, ListID: listID}
	scope := position.TasksOf(listID)
	err = p.write(ctx, func(tx *db.Tx) error {
		l, err := requireList(ctx, tx, listID)
		if err != nil {
			return err
		}
		pos, err := position.Next(ctx, tx, scope)
		if err != nil {
			return err
		}
		t.ProjectID = l.ProjectID
		t.Position = pos
		return tx.InsertTask(ctx, t)
	}, scope)
	if err != nil {
		return nil, err
	}

	p.logger.Info("created task",
		slog.Int64("id", t.ID),
		slog.Int64("list", listID),
		slog.Int("position", t.Position))
	return t, nil
}

// RenameTask changes a task's name
func (p *Planner) RenameTask(ctx context.Context, id int64, name string) (*model.Task, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return p.updateTask(ctx, id, func(t *model.Task) error {
		t.Name = name
		return nil
	})
}

// ToggleDone flips a task's done flag. Completing a task that is being
// timed stops its session first.
func (p *Planner) ToggleDone(ctx context.Context, id int64) (*model.Task, error) {
	return p.updateTask(ctx, id, func(t *model.Task) error {
		if !t.Done && t.IsTiming() {
			if err := p.stopSession(t); err != nil {
				return err
			}
		}
		t.Done = !t.Done
		return nil
	})
}

// MoveTask puts a task at target inside a list. Within the task's own list
// this is a reorder; into another list the old list closes its gap and the
// new one opens a slot. A negative target means last.
func (p *Planner) MoveTask(ctx context.Context, id, listID int64, target int) error {
	return p.writeTask(ctx, id, func(tx *db.Tx, t *model.Task) error {
		if err := live(t); err != nil {
			return err
		}
		if _, err := requireList(ctx, tx, listID); err != nil {
			return err
		}
		return p.idx.Move(ctx, tx, id, position.TasksOf(t.ListID), position.TasksOf(listID), target)
	}, position.TasksOf(listID))
}

// DeleteTask removes a task immediately and closes the gap in its list.
func (p *Planner) DeleteTask(ctx context.Context, id int64) error {
	err := p.writeTask(ctx, id, func(tx *db.Tx, t *model.Task) error {
		return p.idx.Remove(ctx, tx, position.TasksOf(t.ListID), id)
	})
	if err != nil {
		return err
	}
	p.logger.Info("deleted task", slog.Int64("id", id))
	return nil
}

// SuspendTask hides a task and returns the token that restores it. The
// task keeps its slot until PurgeSuspended removes it. A running session
// is stopped.
func (p *Planner) SuspendTask(ctx context.Context, id int64) (string, error) {
	token := uuid.NewString()
	_, err := p.updateTask(ctx, id, func(t *model.Task) error {
		if t.IsTiming() {
			if err := p.stopSession(t); err != nil {
				return err
			}
		}
		now := p.now()
		t.Suspended = true
		t.SuspendedAt = &now
		t.UndoToken = token
		return nil
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("suspended task", slog.Int64("id", id))
	return token, nil
}

// RestoreTask undoes a suspension while the grace period lasts.
func (p *Planner) RestoreTask(ctx context.Context, token string) (*model.Task, error) {
	found, err := p.db.TaskByUndoToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var t *model.Task
	err = p.writeTask(ctx, found.ID, func(tx *db.Tx, cur *model.Task) error {
		if !cur.Suspended || cur.UndoToken != token || cur.SuspendExpired(p.now(), p.grace) {
			return model.ErrUndoExpired
		}
		cur.Suspended = false
		cur.SuspendedAt = nil
		cur.UndoToken = ""
		t = cur
		return tx.UpdateTask(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("restored task", slog.Int64("id", t.ID))
	return t, nil
}

// PurgeSuspended deletes every suspended task whose grace period is over
// and closes the gaps they leave. It returns how many tasks were removed.
func (p *Planner) PurgeSuspended(ctx context.Context) (int, error) {
	suspended, err := p.db.SuspendedTasks(ctx)
	if err != nil {
		return 0, err
	}

	now := p.now()
	var expired []model.Task
	var scopes []position.Scope
	for _, t := range suspended {
		if t.SuspendExpired(now, p.grace) {
			expired = append(expired, t)
			scopes = append(scopes, position.TasksOf(t.ListID))
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	purged := 0
	err = p.write(ctx, func(tx *db.Tx) error {
		purged = 0
		for _, snap := range expired {
			t, err := tx.GetTask(ctx, snap.ID)
			if model.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			// Restored or re-suspended since the snapshot.
			if !t.SuspendExpired(now, p.grace) || t.ListID != snap.ListID {
				continue
			}
			if err := p.idx.Remove(ctx, tx, position.TasksOf(t.ListID), t.ID); err != nil {
				return err
			}
			purged++
		}
		return nil
	}, scopes...)
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		p.logger.Info("purged suspended tasks", slog.Int("count", purged))
	}
	return purged, nil
}

// updateTask applies change to a live task and writes the whole row.
func (p *Planner) updateTask(ctx context.Context, id int64, change func(*model.Task) error) (*model.Task, error) {
	var out *model.Task
	err := p.writeTask(ctx, id, func(tx *db.Tx, t *model.Task) error {
		if err := live(t); err != nil {
			return err
		}
		if err := change(t); err != nil {
			return err
		}
		out = t
		return tx.UpdateTask(ctx, t)
	})
	return out, err
}

// writeTask runs fn with the scope of the task's list locked. A task can
// change list between the first read and the lock, so the read is repeated
// under the lock and the whole step retried when they disagree.
func (p *Planner) writeTask(ctx context.Context, id int64, fn func(*db.Tx, *model.Task) error, extra ...position.Scope) error {
	for {
		snap, err := p.db.GetTask(ctx, id)
		if err != nil {
			return err
		}

		scopes := append([]position.Scope{position.TasksOf(snap.ListID)}, extra...)
		err = p.write(ctx, func(tx *db.Tx) error {
			t, err := tx.GetTask(ctx, id)
			if err != nil {
				return err
			}
			if t.ListID != snap.ListID {
				return errTaskMoved
			}
			return fn(tx, t)
		}, scopes...)
		if errors.Is(err, errTaskMoved) {
			p.logger.Debug("task moved, retrying", slog.Int64("id", id))
			continue
		}
		return err
	}
}

// stopSession closes t's open session at the current time.
func (p *Planner) stopSession(t *model.Task) error {
	log, err := timelog.Stop(t.Duration, p.now())
	if err != nil {
		return err
	}
	t.Duration = log
	return nil
}

func live(t *model.Task) error {
	if t.Suspended {
		return model.NotFoundError{Kind: "task", ID: t.ID}
	}
	return nil
}
