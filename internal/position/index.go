package position

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dori/iplan/internal/model"
)

// Index serializes writers per scope and applies reorder operations.
// The zero value is not usable; call NewIndex.
type Index struct {
	mu     sync.Mutex
	scopes map[Scope]*sync.Mutex
	logger *slog.Logger
}

// NewIndex creates an index. A nil logger discards output.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Index{
		scopes: make(map[Scope]*sync.Mutex),
		logger: logger,
	}
}

// Lock acquires the writer lock of every given scope and returns the
// release function. Scopes are locked in a fixed order so two callers
// locking overlapping sets cannot deadlock.
func (x *Index) Lock(scopes ...Scope) (unlock func()) {
	uniq := make([]Scope, 0, len(scopes))
	seen := make(map[Scope]bool, len(scopes))
	for _, s := range scopes {
		if !seen[s] {
			seen[s] = true
			uniq = append(uniq, s)
		}
	}
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].Kind != uniq[j].Kind {
			return uniq[i].Kind < uniq[j].Kind
		}
		return uniq[i].Parent < uniq[j].Parent
	})

	locks := make([]*sync.Mutex, len(uniq))
	x.mu.Lock()
	for i, s := range uniq {
		m, ok := x.scopes[s]
		if !ok {
			m = &sync.Mutex{}
			x.scopes[s] = m
		}
		locks[i] = m
	}
	x.mu.Unlock()

	for _, m := range locks {
		m.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// Reorder moves entity id to position target inside scope. Every sibling
// between the old and the new position shifts one step toward the old
// position; adjacent entities simply swap. Moving to the current position
// changes nothing and reports false.
//
// A scope with gaps or duplicates is renumbered densely as a side effect.
func (x *Index) Reorder(ctx context.Context, s Store, scope Scope, id int64, target int) (bool, error) {
	slots, err := s.Slots(ctx, scope)
	if err != nil {
		return false, err
	}
	order := sortSlots(slots)

	from := indexOf(order, id)
	if from < 0 {
		return false, model.NotFoundError{Kind: scope.Kind.String(), ID: id}
	}
	if order[from].Position == target {
		return false, nil
	}
	if target < 0 || target >= len(order) {
		return false, fmt.Errorf("%w: %d not in 0..%d", model.ErrInvalidPosition, target, len(order)-1)
	}

	moved := order[from]
	rest := append(append([]Slot{}, order[:from]...), order[from+1:]...)
	final := make([]Slot, 0, len(order))
	final = append(final, rest[:target]...)
	final = append(final, moved)
	final = append(final, rest[target:]...)

	n, err := renumber(ctx, s, scope.Kind, final)
	if err != nil {
		return false, err
	}
	x.logger.Debug("reorder",
		slog.String("scope", scope.String()),
		slog.Int64("id", id),
		slog.Int("from", moved.Position),
		slog.Int("to", target),
		slog.Int("writes", n))
	return n > 0, nil
}

// Move transfers a task from one list to another. The old list closes the
// gap, the new list opens one at target and the task's parent and position
// are written together. A negative target appends.
func (x *Index) Move(ctx context.Context, s Store, id int64, from, to Scope, target int) error {
	if from.Kind != KindTask || to.Kind != KindTask {
		return fmt.Errorf("%w: only tasks move between parents", model.ErrInvalidScope)
	}
	if from == to {
		if target < 0 {
			slots, err := s.Slots(ctx, from)
			if err != nil {
				return err
			}
			target = len(slots) - 1
		}
		_, err := x.Reorder(ctx, s, from, id, target)
		return err
	}

	src, err := s.Slots(ctx, from)
	if err != nil {
		return err
	}
	srcOrder := sortSlots(src)
	i := indexOf(srcOrder, id)
	if i < 0 {
		return model.NotFoundError{Kind: from.Kind.String(), ID: id}
	}

	dst, err := s.Slots(ctx, to)
	if err != nil {
		return err
	}
	dstOrder := sortSlots(dst)
	if target < 0 {
		target = len(dstOrder)
	}
	if target > len(dstOrder) {
		return fmt.Errorf("%w: %d not in 0..%d", model.ErrInvalidPosition, target, len(dstOrder))
	}

	remaining := append(append([]Slot{}, srcOrder[:i]...), srcOrder[i+1:]...)
	if _, err := renumber(ctx, s, from.Kind, remaining); err != nil {
		return err
	}

	// Shift the destination with a hole at target.
	for j, sl := range dstOrder {
		want := j
		if j >= target {
			want = j + 1
		}
		if sl.Position == want {
			continue
		}
		if err := s.SetPosition(ctx, to.Kind, sl.ID, want); err != nil {
			return err
		}
	}

	if err := s.SetParent(ctx, to.Kind, id, to.Parent, target); err != nil {
		return err
	}
	x.logger.Debug("move",
		slog.Int64("id", id),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int("position", target))
	return nil
}

// Remove deletes entity id and closes the gap it leaves in scope.
func (x *Index) Remove(ctx context.Context, s Store, scope Scope, id int64) error {
	slots, err := s.Slots(ctx, scope)
	if err != nil {
		return err
	}
	order := sortSlots(slots)
	i := indexOf(order, id)
	if i < 0 {
		return model.NotFoundError{Kind: scope.Kind.String(), ID: id}
	}

	if err := s.Delete(ctx, scope.Kind, id); err != nil {
		return err
	}
	remaining := append(append([]Slot{}, order[:i]...), order[i+1:]...)
	n, err := renumber(ctx, s, scope.Kind, remaining)
	if err != nil {
		return err
	}
	x.logger.Debug("remove",
		slog.String("scope", scope.String()),
		slog.Int64("id", id),
		slog.Int("shifted", n))
	return nil
}

// Compact renumbers scope to 0..n-1 keeping the current order. It returns
// the number of entities whose position changed.
func (x *Index) Compact(ctx context.Context, s Store, scope Scope) (int, error) {
	slots, err := s.Slots(ctx, scope)
	if err != nil {
		return 0, err
	}
	n, err := renumber(ctx, s, scope.Kind, sortSlots(slots))
	if err != nil {
		return n, err
	}
	if n > 0 {
		x.logger.Info("compacted scope", slog.String("scope", scope.String()), slog.Int("changed", n))
	}
	return n, nil
}
