package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/timelog"
	"github.com/dori/iplan/internal/ui/theme"
)

// TimerController is what the timer view needs from the planner
type TimerController interface {
	StopTimer(ctx context.Context, id int64) (*model.Task, error)
	Now() time.Time
}

// TimerModel shows the running time of one task. Ticks only read the
// clock; the stored log is written once, when the session is stopped.
type TimerModel struct {
	ctl      TimerController
	task     *model.Task
	interval time.Duration

	start  time.Time // start of the open session
	closed int       // seconds of earlier sessions
	now    time.Time

	state    TimerState
	canceled bool
	err      error

	keys   TimerKeys
	help   help.Model
	styles theme.Styles
	width  int
}

// NewTimerModel creates the view for a task whose log ends with an open
// session.
func NewTimerModel(ctl TimerController, task *model.Task, interval time.Duration, styles theme.Styles) (TimerModel, error) {
	rec, open, err := timelog.Open(task.Duration)
	if err != nil {
		return TimerModel{}, fmt.Errorf("task %d: %w", task.ID, err)
	}
	if !open {
		return TimerModel{}, fmt.Errorf("task %d: %w", task.ID, timelog.ErrNoOpenSession)
	}
	closed, _ := timelog.Total(task.Duration)

	h := help.New()
	h.Styles.ShortKey = styles.HelpKey
	h.Styles.ShortDesc = styles.HelpDesc
	h.Styles.FullKey = styles.HelpKey
	h.Styles.FullDesc = styles.HelpDesc

	return TimerModel{
		ctl:      ctl,
		task:     task,
		interval: interval,
		start:    rec.StartTime(),
		closed:   closed,
		now:      ctl.Now(),
		state:    TimerRunning,
		keys:     DefaultTimerKeys(),
		help:     h,
		styles:   styles,
	}, nil
}

// tickCmd schedules the next display refresh
func (m TimerModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg{At: t}
	})
}

// Init starts the refresh loop
func (m TimerModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.state != TimerRunning {
			return m, nil
		}
		m.now = m.ctl.Now()
		return m, m.tickCmd()

	case stoppedMsg:
		if msg.Err != nil {
			m.state = TimerFailed
			m.err = msg.Err
			return m, tea.Quit
		}
		m.state = TimerStopped
		m.task = msg.Task
		return m, tea.Quit

	case tea.KeyMsg:
		if m.state != TimerRunning {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m.stop()
		case key.Matches(msg, m.keys.Stop):
			return m.stop()
		case key.Matches(msg, m.keys.Detach):
			m.state = TimerDetached
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	return m, nil
}

// stop closes the session at this instant
func (m TimerModel) stop() (tea.Model, tea.Cmd) {
	m.state = TimerStopping
	m.now = m.ctl.Now()
	ctl, id := m.ctl, m.task.ID
	return m, func() tea.Msg {
		t, err := ctl.StopTimer(context.Background(), id)
		return stoppedMsg{Task: t, Err: err}
	}
}

// Elapsed is how long the open session has been running
func (m TimerModel) Elapsed() time.Duration {
	d := m.now.Sub(m.start)
	if d < 0 {
		return 0
	}
	return d
}

// View renders the timer
func (m TimerModel) View() string {
	var sections []string

	sections = append(sections, m.styles.Title.Render(m.task.Name))

	session := int(m.Elapsed() / time.Second)
	sections = append(sections, m.styles.Clock.Render(timelog.Format(session)))
	sections = append(sections, m.styles.Label.Render(
		fmt.Sprintf("total %s, started %s", timelog.Format(m.closed+session), m.start.Format("15:04:05"))))

	switch m.state {
	case TimerStopping:
		sections = append(sections, m.styles.Status.Render("stopping..."))
	case TimerStopped:
		sections = append(sections, m.styles.Status.Render("stopped"))
	case TimerDetached:
		sections = append(sections, m.styles.Warning.Render("still running, resume with: iplan timer watch "+fmt.Sprint(m.task.ID)))
	case TimerFailed:
		sections = append(sections, m.styles.Warning.Render("error: "+m.err.Error()))
	}

	sections = append(sections, m.help.View(m.keys))
	return m.styles.Panel.Render(strings.Join(sections, "\n"))
}

// TimerResult is the outcome of a finished timer view
type TimerResult struct {
	State    TimerState
	Canceled bool
	Task     *model.Task
	Err      error
}

// Result reports how the view ended
func (m TimerModel) Result() TimerResult {
	return TimerResult{State: m.state, Canceled: m.canceled, Task: m.task, Err: m.err}
}

// Interrupt stops the session at this instant, as ctrl+c does, for a view
// that was ended from outside (SIGTERM, or SIGINT sent to the process).
// A detached, stopped or failed view is returned unchanged.
func (m TimerModel) Interrupt(ctx context.Context) TimerModel {
	if m.state != TimerRunning && m.state != TimerStopping {
		return m
	}
	inFlight := m.state == TimerStopping
	m.canceled = true
	m.now = m.ctl.Now()

	t, err := m.ctl.StopTimer(ctx, m.task.ID)
	switch {
	case inFlight && errors.Is(err, timelog.ErrNoOpenSession):
		// The stop command already closed the session.
		m.state = TimerStopped
	case err != nil:
		m.state = TimerFailed
		m.err = err
	default:
		m.state = TimerStopped
		m.task = t
	}
	return m
}

// RunTimer shows the timer until the user stops or detaches. When ctx is
// cancelled the session is stopped at that instant.
func RunTimer(ctx context.Context, m TimerModel) (TimerResult, error) {
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		last, ok := final.(TimerModel)
		if !ok {
			last = m
		}
		res := last.Interrupt(context.WithoutCancel(ctx)).Result()
		return res, res.Err
	}
	if err != nil {
		return TimerResult{}, err
	}
	res := final.(TimerModel).Result()
	return res, res.Err
}
