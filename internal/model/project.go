package model

import (
	"time"
)

// Project is the top-level container. Projects are ordered by Position among
// all projects, archived ones included.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Archived  bool      `json:"archived"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	ListCount int `json:"list_count,omitempty"`
	TaskCount int `json:"task_count,omitempty"`
}

// List groups tasks inside a project
type List struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ProjectID int64     `json:"project_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
