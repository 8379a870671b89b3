package planner

import (
	"context"
	"log/slog"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/position"
)

// Lists returns the lists of a project ordered by position
func (p *Planner) Lists(ctx context.Context, projectID int64) ([]model.List, error) {
	if _, err := p.db.GetProject(ctx, projectID); err != nil {
		if model.IsNotFound(err) {
			return nil, scopeError("project", projectID)
		}
		return nil, err
	}
	return p.db.Lists(ctx, projectID)
}

// List returns a single list
func (p *Planner) List(ctx context.Context, id int64) (*model.List, error) {
	return p.db.GetList(ctx, id)
}

// CreateList appends a list to a project
func (p *Planner) CreateList(ctx context.Context, projectID int64, name string) (*model.List, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	l := &model.List{Name: name, ProjectID: projectID}
	scope := position.ListsOf(projectID)
	err = p.write(ctx, func(tx *db.Tx) error {
		if _, err := requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		pos, err := position.Next(ctx, tx, scope)
		if err != nil {
			return err
		}
		l.Position = pos
		return tx.InsertList(ctx, l)
	}, scope)
	if err != nil {
		return nil, err
	}

	p.logger.Info("created list",
		slog.Int64("id", l.ID),
		slog.Int64("project", projectID),
		slog.Int("position", l.Position))
	return l, nil
}

// RenameList changes a list's name
func (p *Planner) RenameList(ctx context.Context, id int64, name string) (*model.List, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	cur, err := p.db.GetList(ctx, id)
	if err != nil {
		return nil, err
	}
	var l *model.List
	err = p.write(ctx, func(tx *db.Tx) error {
		var err error
		if l, err = tx.GetList(ctx, id); err != nil {
			return err
		}
		l.Name = name
		return tx.UpdateList(ctx, l)
	}, position.ListsOf(cur.ProjectID))
	return l, err
}

// DeleteList removes a list and its tasks and closes the gap among the
// project's remaining lists.
func (p *Planner) DeleteList(ctx context.Context, id int64) error {
	l, err := p.db.GetList(ctx, id)
	if err != nil {
		return err
	}
	err = p.write(ctx, func(tx *db.Tx) error {
		return p.idx.Remove(ctx, tx, position.ListsOf(l.ProjectID), id)
	}, position.ListsOf(l.ProjectID), position.TasksOf(id))
	if err != nil {
		return err
	}
	p.logger.Info("deleted list", slog.Int64("id", id), slog.Int64("project", l.ProjectID))
	return nil
}

// MoveList reorders a list inside its project. Lists never change project.
func (p *Planner) MoveList(ctx context.Context, id int64, target int) (bool, error) {
	l, err := p.db.GetList(ctx, id)
	if err != nil {
		return false, err
	}
	scope := position.ListsOf(l.ProjectID)

	var changed bool
	err = p.write(ctx, func(tx *db.Tx) error {
		var err error
		changed, err = p.idx.Reorder(ctx, tx, scope, id, target)
		return err
	}, scope)
	return changed, err
}
