package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/timelog"
	"github.com/dori/iplan/internal/ui/theme"
)

// reversed returns a copy of xs in reverse order. Listings are stored
// ascending; --reverse shows the newest entry first.
func reversed[T any](xs []T) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

func renderProjects(w io.Writer, st theme.Styles, projects []model.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, st.Label.Render("no projects"))
		return
	}
	for _, p := range projects {
		name := st.Row.Render(p.Name)
		if p.Archived {
			name = st.Archived.Render(p.Name + " (archived)")
		}
		fmt.Fprintf(w, "%s%s %s\n",
			st.Position.Render(fmt.Sprint(p.Position)),
			name,
			st.Label.Render(fmt.Sprintf("#%d  %d lists, %d tasks", p.ID, p.ListCount, p.TaskCount)))
	}
}

func renderLists(w io.Writer, st theme.Styles, lists []model.List) {
	if len(lists) == 0 {
		fmt.Fprintln(w, st.Label.Render("no lists"))
		return
	}
	for _, l := range lists {
		fmt.Fprintf(w, "%s%s %s\n",
			st.Position.Render(fmt.Sprint(l.Position)),
			st.Row.Render(l.Name),
			st.Label.Render(fmt.Sprintf("#%d", l.ID)))
	}
}

func renderTasks(w io.Writer, st theme.Styles, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, st.Label.Render("no tasks"))
		return
	}
	for _, t := range tasks {
		box, name := "[ ]", st.Row.Render(t.Name)
		if t.Done {
			box, name = "[x]", st.RowDone.Render(t.Name)
		}
		fmt.Fprintf(w, "%s%s %s %s%s\n",
			st.Position.Render(fmt.Sprint(t.Position)),
			box,
			name,
			st.Label.Render(fmt.Sprintf("#%d", t.ID)),
			renderTaskTime(st, t, now))
	}
}

func renderTaskTime(st theme.Styles, t model.Task, now time.Time) string {
	total, err := timelog.TotalAt(t.Duration, now)
	if err != nil {
		return st.Warning.Render(" (unreadable time log)")
	}
	if t.IsTiming() {
		return st.Running.Render(timelog.Format(total) + " running")
	}
	if total == 0 {
		return ""
	}
	return st.Duration.Render(timelog.Format(total))
}

// renderDays prints one line per day, newest first
func renderDays(w io.Writer, st theme.Styles, table map[timelog.Date]int) {
	days := timelog.Days(table)
	if len(days) == 0 {
		fmt.Fprintln(w, st.Label.Render("no time recorded"))
		return
	}
	for _, d := range reversed(days) {
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render(d.String()), st.Duration.Render(timelog.Format(table[d])))
	}
}

// reportRow is one day of the report across projects
type reportRow struct {
	Date     string         `json:"date"`
	Total    int            `json:"total"`
	Projects map[string]int `json:"projects"`
}

func renderReport(w io.Writer, st theme.Styles, rows []reportRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, st.Label.Render("no time recorded"))
		return
	}
	for _, r := range rows {
		var parts []string
		for _, name := range slices.Sorted(maps.Keys(r.Projects)) {
			parts = append(parts, fmt.Sprintf("%s %s", name, timelog.Format(r.Projects[name])))
		}
		fmt.Fprintf(w, "%s %s  %s\n",
			st.Title.Render(r.Date),
			st.Duration.Render(timelog.Format(r.Total)),
			st.Label.Render(strings.Join(parts, ", ")))
	}
}
