package model

import (
	"strings"
	"time"
)

// Task represents a todo item inside a list
type Task struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Done      bool   `json:"done"`
	ProjectID int64  `json:"project_id"`
	ListID    int64  `json:"list_id"`
	Position  int    `json:"position"`

	// Duration is the serialized session log, see package timelog.
	Duration string `json:"duration"`

	// Suspended tasks are soft-deleted and wait for undo or purge.
	Suspended   bool       `json:"suspended"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	UndoToken   string     `json:"undo_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTiming reports whether the task's log ends with an open session.
// It only looks at the trailing record and never fails.
func (t *Task) IsTiming() bool {
	return strings.HasSuffix(t.Duration, ",0;")
}

// SuspendExpired reports whether a suspended task is past its undo window
func (t *Task) SuspendExpired(now time.Time, grace time.Duration) bool {
	if !t.Suspended {
		return false
	}
	if t.SuspendedAt == nil {
		return true
	}
	return !now.Before(t.SuspendedAt.Add(grace))
}
