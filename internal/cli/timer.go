package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/planner"
	"github.com/dori/iplan/internal/timelog"
	"github.com/dori/iplan/internal/ui"
)

func newTimerCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time tasks",
	}
	cmd.AddCommand(newTimerStartCmd(a))
	cmd.AddCommand(newTimerStopCmd(a))
	cmd.AddCommand(newTimerStatusCmd(a))
	cmd.AddCommand(newTimerWatchCmd(a))
	return cmd
}

func newTimerStartCmd(a *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start timing a task",
		Long: `Start a session on a task. If the task is already being timed the
running session is kept, so starting twice never loses time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, resumed, err := p.StartTimer(cmd.Context(), id)
			if err != nil {
				return err
			}

			if watch {
				return a.watch(cmd, p, t)
			}
			if a.JSON {
				return writeJSON(cmd, map[string]any{"task": t, "resumed": resumed})
			}
			if resumed {
				writeLine(cmd, "Timer already running on task #%d: %s", t.ID, t.Name)
			} else {
				writeLine(cmd, "Started timer on task #%d: %s", t.ID, t.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Show the live timer")
	return cmd
}

func newTimerStopCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <task-id>",
		Short: "Stop timing a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.StopTimer(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			total, err := timelog.Total(t.Duration)
			if err != nil {
				return err
			}
			writeLine(cmd, "Stopped timer on task #%d: %s (total %s)", t.ID, t.Name, timelog.Format(total))
			return nil
		},
	}
}

// timerStatus is one running task in `timer status`
type timerStatus struct {
	Task    int64  `json:"task"`
	Name    string `json:"name"`
	Elapsed int    `json:"elapsed"`
	Total   int    `json:"total"`
}

func newTimerStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the tasks being timed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			running, err := p.Running(cmd.Context())
			if err != nil {
				return err
			}

			now := p.Now()
			statuses := make([]timerStatus, 0, len(running))
			for _, t := range running {
				elapsed, _, err := timelog.Elapsed(t.Duration, now)
				if err != nil {
					return fmt.Errorf("task %d: %w", t.ID, err)
				}
				total, err := timelog.TotalAt(t.Duration, now)
				if err != nil {
					return fmt.Errorf("task %d: %w", t.ID, err)
				}
				statuses = append(statuses, timerStatus{
					Task:    t.ID,
					Name:    t.Name,
					Elapsed: int(elapsed / time.Second),
					Total:   total,
				})
			}

			if a.JSON {
				return writeJSON(cmd, statuses)
			}
			if len(statuses) == 0 {
				writeLine(cmd, "%s", a.styles.Label.Render("no timer running"))
				return nil
			}
			for _, s := range statuses {
				writeLine(cmd, "%s %s %s",
					a.styles.Label.Render(fmt.Sprintf("#%d", s.Task)),
					a.styles.Row.Render(s.Name),
					a.styles.Running.Render(fmt.Sprintf("%s (total %s)", timelog.Format(s.Elapsed), timelog.Format(s.Total))))
			}
			return nil
		},
	}
}

func newTimerWatchCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Show the live timer of a running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.watch(cmd, p, t)
		},
	}
}

// watch runs the timer view until the user stops or detaches
func (a *App) watch(cmd *cobra.Command, p *planner.Planner, t *model.Task) error {
	m, err := ui.NewTimerModel(p, t, a.cfg.Timer.TickInterval, a.styles)
	if err != nil {
		return err
	}
	res, err := ui.RunTimer(cmd.Context(), m)
	if err != nil {
		return err
	}

	switch res.State {
	case ui.TimerStopped:
		total, err := timelog.Total(res.Task.Duration)
		if err != nil {
			return err
		}
		writeLine(cmd, "Stopped timer on task #%d: %s (total %s)", res.Task.ID, res.Task.Name, timelog.Format(total))
	case ui.TimerDetached:
		writeLine(cmd, "Timer still running on task #%d", t.ID)
	}
	return nil
}
