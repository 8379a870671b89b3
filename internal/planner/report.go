package planner

import (
	"context"

	"github.com/dori/iplan/internal/timelog"
)

// DayTotal is the time worked on one day, split by project name
type DayTotal struct {
	Date     timelog.Date
	Total    int
	Projects map[string]int
}

// Report returns the closed time of every project, archived ones
// included, for the last days days ending today. Days without time are
// left out; the newest day comes first.
func (p *Planner) Report(ctx context.Context, days int) ([]DayTotal, error) {
	if days < 1 {
		days = 1
	}
	now := p.now()
	since := timelog.DateOf(now.AddDate(0, 0, -(days - 1)), p.loc)
	today := timelog.DateOf(now, p.loc)

	projects, err := p.db.Projects(ctx, true)
	if err != nil {
		return nil, err
	}

	byDay := make(map[timelog.Date]*DayTotal)
	for _, proj := range projects {
		table, err := p.ProjectDurationByDay(ctx, proj.ID)
		if err != nil {
			return nil, err
		}
		for d, secs := range table {
			if d.Before(since) || today.Before(d) || secs == 0 {
				continue
			}
			row := byDay[d]
			if row == nil {
				row = &DayTotal{Date: d, Projects: make(map[string]int)}
				byDay[d] = row
			}
			row.Total += secs
			row.Projects[proj.Name] += secs
		}
	}

	table := make(map[timelog.Date]int, len(byDay))
	for d, row := range byDay {
		table[d] = row.Total
	}
	dates := timelog.Days(table)
	out := make([]DayTotal, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		out = append(out, *byDay[dates[i]])
	}
	return out, nil
}
