package ui

import (
	"time"

	"github.com/dori/iplan/internal/model"
)

// TimerState is where the timer view ended up
type TimerState int

const (
	TimerRunning TimerState = iota
	// TimerStopping waits for the stop write to finish
	TimerStopping
	TimerStopped
	// TimerDetached left the session open; it resumes next time
	TimerDetached
	TimerFailed
)

// String returns the display name for a state
func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerStopping:
		return "stopping"
	case TimerStopped:
		return "stopped"
	case TimerDetached:
		return "detached"
	case TimerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Messages for the timer view

// tickMsg refreshes the display. It carries no state and writes nothing.
type tickMsg struct {
	At time.Time
}

// stoppedMsg carries the result of closing the session
type stoppedMsg struct {
	Task *model.Task
	Err  error
}
