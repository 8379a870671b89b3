package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/timelog"
)

// StartTimer opens a session on a task. If the task's log already ends
// with an open session, nothing is written and resumed is true.
func (p *Planner) StartTimer(ctx context.Context, id int64) (t *model.Task, resumed bool, err error) {
	err = p.writeTask(ctx, id, func(tx *db.Tx, cur *model.Task) error {
		if err := live(cur); err != nil {
			return err
		}
		if cur.Done {
			return model.ErrTaskDone
		}
		log, open, err := timelog.Start(cur.Duration, p.now())
		if err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		t, resumed = cur, open
		if open {
			return nil
		}
		cur.Duration = log
		return tx.UpdateTask(ctx, cur)
	})
	if err != nil {
		return nil, false, err
	}

	if resumed {
		p.logger.Info("resumed timer", slog.Int64("task", id))
	} else {
		p.logger.Info("started timer", slog.Int64("task", id))
	}
	return t, resumed, nil
}

// StopTimer closes the task's open session at the current time. Stopping
// at any instant leaves the log exactly as a regular stop would.
func (p *Planner) StopTimer(ctx context.Context, id int64) (*model.Task, error) {
	t, err := p.updateTask(ctx, id, func(t *model.Task) error {
		if err := p.stopSession(t); err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("stopped timer", slog.Int64("task", id))
	return t, nil
}

// Running returns every task with an open session
func (p *Planner) Running(ctx context.Context) ([]model.Task, error) {
	return p.db.TimingTasks(ctx)
}

// Elapsed reports how long the task's open session has been running. It
// only reads; the stored log is untouched.
func (p *Planner) Elapsed(ctx context.Context, id int64) (time.Duration, bool, error) {
	t, err := p.Task(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return timelog.Elapsed(t.Duration, p.now())
}

// TaskDuration returns the task's worked seconds including a running
// session. A malformed log counts as zero and its error is returned too.
func (p *Planner) TaskDuration(ctx context.Context, id int64) (int, error) {
	t, err := p.Task(ctx, id)
	if err != nil {
		return 0, err
	}
	return timelog.TotalAt(t.Duration, p.now())
}

// ProjectDuration sums the closed sessions of every task in a project.
// Tasks with malformed logs are skipped and logged.
func (p *Planner) ProjectDuration(ctx context.Context, projectID int64) (int, error) {
	tasks, err := p.projectTasks(ctx, projectID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, t := range tasks {
		secs, err := timelog.Total(t.Duration)
		if err != nil {
			p.warnMalformed(t, err)
			continue
		}
		total += secs
	}
	return total, nil
}

// ProjectDurationByDay buckets the closed sessions of a project's tasks by
// the local date they started on.
func (p *Planner) ProjectDurationByDay(ctx context.Context, projectID int64) (map[timelog.Date]int, error) {
	tasks, err := p.projectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	table := make(map[timelog.Date]int)
	for _, t := range tasks {
		days, err := timelog.ByDay(t.Duration, p.loc)
		if err != nil {
			p.warnMalformed(t, err)
			continue
		}
		timelog.Merge(table, days)
	}
	return table, nil
}

func (p *Planner) projectTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	if _, err := p.db.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return p.db.ProjectTasks(ctx, projectID, db.TaskFilter{})
}

func (p *Planner) warnMalformed(t model.Task, err error) {
	p.logger.Warn("skipping malformed duration log",
		slog.Int64("task", t.ID),
		slog.Any("err", err))
}
