package planner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/position"
	"github.com/dori/iplan/internal/timelog"
)

// MalformedLog is a task whose duration log does not parse
type MalformedLog struct {
	TaskID int64
	Err    error
}

// DoctorReport lists consistency problems found in the database
type DoctorReport struct {
	// Gaps holds every scope whose positions were not 0..n-1.
	Gaps []*position.DenseError
	// Fixed counts the entities renumbered when fixing was requested.
	Fixed int
	// Malformed logs are reported only. They are never rewritten.
	Malformed []MalformedLog
}

// OK reports whether nothing was found
func (r *DoctorReport) OK() bool {
	return len(r.Gaps) == 0 && len(r.Malformed) == 0
}

// Doctor checks that every sibling scope is dense and every duration log
// parses. With fix set, gappy scopes are renumbered in their current order.
func (p *Planner) Doctor(ctx context.Context, fix bool) (*DoctorReport, error) {
	report := &DoctorReport{}

	scopes, err := p.db.Scopes(ctx)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		err := position.Check(ctx, p.db, scope)
		var dense *position.DenseError
		if errors.As(err, &dense) {
			report.Gaps = append(report.Gaps, dense)
		} else if err != nil {
			return nil, err
		}
	}

	if fix {
		for _, gap := range report.Gaps {
			scope := gap.Scope
			err := p.write(ctx, func(tx *db.Tx) error {
				n, err := p.idx.Compact(ctx, tx, scope)
				report.Fixed += n
				return err
			}, scope)
			if err != nil {
				return report, err
			}
		}
	}

	projects, err := p.db.Projects(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, proj := range projects {
		tasks, err := p.db.ProjectTasks(ctx, proj.ID, db.TaskFilter{IncludeSuspended: true})
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if _, err := timelog.Parse(t.Duration); err != nil {
				report.Malformed = append(report.Malformed, MalformedLog{TaskID: t.ID, Err: err})
			}
		}
	}

	p.logger.Info("doctor finished",
		slog.Int("gaps", len(report.Gaps)),
		slog.Int("fixed", report.Fixed),
		slog.Int("malformed", len(report.Malformed)))
	return report, nil
}
