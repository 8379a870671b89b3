package planner

import (
	"context"
	"log/slog"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/position"
)

// Projects returns projects ordered by position
func (p *Planner) Projects(ctx context.Context, archived bool) ([]model.Project, error) {
	return p.db.Projects(ctx, archived)
}

// Project returns a single project
func (p *Planner) Project(ctx context.Context, id int64) (*model.Project, error) {
	return p.db.GetProject(ctx, id)
}

// CreateProject appends a project after every existing one
func (p *Planner) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	proj := &model.Project{Name: name}
	err = p.write(ctx, func(tx *db.Tx) error {
		pos, err := position.Next(ctx, tx, position.Projects())
		if err != nil {
			return err
		}
		proj.Position = pos
		return tx.InsertProject(ctx, proj)
	}, position.Projects())
	if err != nil {
		return nil, err
	}

	p.logger.Info("created project", slog.Int64("id", proj.ID), slog.Int("position", proj.Position))
	return proj, nil
}

// RenameProject changes a project's name
func (p *Planner) RenameProject(ctx context.Context, id int64, name string) (*model.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return p.updateProject(ctx, id, func(proj *model.Project) { proj.Name = name })
}

// ArchiveProject sets or clears the archived flag. The project keeps its
// position either way.
func (p *Planner) ArchiveProject(ctx context.Context, id int64, archived bool) (*model.Project, error) {
	return p.updateProject(ctx, id, func(proj *model.Project) { proj.Archived = archived })
}

func (p *Planner) updateProject(ctx context.Context, id int64, change func(*model.Project)) (*model.Project, error) {
	var proj *model.Project
	err := p.write(ctx, func(tx *db.Tx) error {
		var err error
		proj, err = tx.GetProject(ctx, id)
		if err != nil {
			return err
		}
		change(proj)
		return tx.UpdateProject(ctx, proj)
	}, position.Projects())
	return proj, err
}

// DeleteProject removes a project with its lists and tasks and shifts every
// later project down by one.
func (p *Planner) DeleteProject(ctx context.Context, id int64) error {
	err := p.write(ctx, func(tx *db.Tx) error {
		return p.idx.Remove(ctx, tx, position.Projects(), id)
	}, position.Projects(), position.ListsOf(id))
	if err != nil {
		return err
	}
	p.logger.Info("deleted project", slog.Int64("id", id))
	return nil
}

// MoveProject reorders a project to target. It reports whether anything
// changed.
func (p *Planner) MoveProject(ctx context.Context, id int64, target int) (bool, error) {
	var changed bool
	err := p.write(ctx, func(tx *db.Tx) error {
		var err error
		changed, err = p.idx.Reorder(ctx, tx, position.Projects(), id, target)
		return err
	}, position.Projects())
	return changed, err
}
