// Package position keeps sibling positions dense.
//
// Every project, list and task has an integer position inside its scope:
// all projects, the lists of one project, or the tasks of one list. At rest
// the positions of a scope are exactly 0..n-1. The functions here compute
// the new positions for inserts, reorders, cross-scope moves and deletes
// and write them through a Store. Callers run each operation inside one
// storage transaction and hold the scope lock from Index.Lock while doing so.
package position

import (
	"context"
	"fmt"
	"sort"
)

// Kind is the entity kind a scope orders
type Kind int

const (
	KindProject Kind = iota
	KindList
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindList:
		return "list"
	case KindTask:
		return "task"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scope identifies a sibling set. Parent is the owning project for lists,
// the owning list for tasks and zero for projects.
type Scope struct {
	Kind   Kind
	Parent int64
}

// Projects is the scope holding every project
func Projects() Scope { return Scope{Kind: KindProject} }

// ListsOf is the scope of the lists of a project
func ListsOf(projectID int64) Scope { return Scope{Kind: KindList, Parent: projectID} }

// TasksOf is the scope of the tasks of a list
func TasksOf(listID int64) Scope { return Scope{Kind: KindTask, Parent: listID} }

func (s Scope) String() string {
	if s.Kind == KindProject {
		return "projects"
	}
	return fmt.Sprintf("%ss of %d", s.Kind, s.Parent)
}

// Slot is the ordering view of one entity
type Slot struct {
	ID       int64
	Position int
}

// Store is the storage the index reads and writes through
type Store interface {
	// Slots returns the members of scope ordered by position, then id.
	Slots(ctx context.Context, scope Scope) ([]Slot, error)
	SetPosition(ctx context.Context, kind Kind, id int64, pos int) error
	// SetParent moves an entity to another parent and position in one write.
	SetParent(ctx context.Context, kind Kind, id, parent int64, pos int) error
	Delete(ctx context.Context, kind Kind, id int64) error
}

// Next returns the position for a new member of scope: one past the
// highest existing position, or 0 when the scope is empty.
func Next(ctx context.Context, s Store, scope Scope) (int, error) {
	slots, err := s.Slots(ctx, scope)
	if err != nil {
		return 0, err
	}
	next := 0
	for _, sl := range slots {
		if sl.Position >= next {
			next = sl.Position + 1
		}
	}
	return next, nil
}

// DenseError reports a scope whose positions are not 0..n-1
type DenseError struct {
	Scope     Scope
	Positions []int
}

func (e *DenseError) Error() string {
	return fmt.Sprintf("%s: positions %v are not dense", e.Scope, e.Positions)
}

// Check verifies that scope holds each position 0..n-1 exactly once.
func Check(ctx context.Context, s Store, scope Scope) error {
	slots, err := s.Slots(ctx, scope)
	if err != nil {
		return err
	}
	sorted := sortSlots(slots)
	for i, sl := range sorted {
		if sl.Position != i {
			positions := make([]int, len(sorted))
			for j := range sorted {
				positions[j] = sorted[j].Position
			}
			return &DenseError{Scope: scope, Positions: positions}
		}
	}
	return nil
}

func sortSlots(slots []Slot) []Slot {
	out := append([]Slot(nil), slots...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func indexOf(slots []Slot, id int64) int {
	for i := range slots {
		if slots[i].ID == id {
			return i
		}
	}
	return -1
}

// renumber writes position i for the i-th slot of order, skipping slots
// that already hold it. It returns how many rows were written.
func renumber(ctx context.Context, s Store, kind Kind, order []Slot) (int, error) {
	written := 0
	for i, sl := range order {
		if sl.Position == i {
			continue
		}
		if err := s.SetPosition(ctx, kind, sl.ID, i); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
