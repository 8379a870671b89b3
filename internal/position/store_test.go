package position

import (
	"context"
	"errors"
	"sort"
)

type memRow struct {
	kind   Kind
	parent int64
	pos    int
}

// memStore is an in-memory Store for tests. Writes are counted so tests can
// assert that no-ops touch nothing.
type memStore struct {
	rows   map[int64]*memRow
	nextID int64
	writes int
	failOn int // fail the n-th write when > 0
}

var errInjected = errors.New("injected write failure")

func newMemStore() *memStore {
	return &memStore{rows: map[int64]*memRow{}, nextID: 1}
}

func (m *memStore) add(scope Scope, pos int) int64 {
	id := m.nextID
	m.nextID++
	m.rows[id] = &memRow{kind: scope.Kind, parent: scope.Parent, pos: pos}
	return id
}

// fill appends n members to scope using Next, like an insert would.
func (m *memStore) fill(scope Scope, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		pos, _ := Next(context.Background(), m, scope)
		ids = append(ids, m.add(scope, pos))
	}
	return ids
}

func (m *memStore) Slots(_ context.Context, scope Scope) ([]Slot, error) {
	var out []Slot
	for id, r := range m.rows {
		if r.kind == scope.Kind && r.parent == scope.Parent {
			out = append(out, Slot{ID: id, Position: r.pos})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) write() error {
	m.writes++
	if m.failOn > 0 && m.writes == m.failOn {
		return errInjected
	}
	return nil
}

func (m *memStore) SetPosition(_ context.Context, _ Kind, id int64, pos int) error {
	if err := m.write(); err != nil {
		return err
	}
	m.rows[id].pos = pos
	return nil
}

func (m *memStore) SetParent(_ context.Context, _ Kind, id, parent int64, pos int) error {
	if err := m.write(); err != nil {
		return err
	}
	m.rows[id].parent = parent
	m.rows[id].pos = pos
	return nil
}

func (m *memStore) Delete(_ context.Context, _ Kind, id int64) error {
	if err := m.write(); err != nil {
		return err
	}
	delete(m.rows, id)
	return nil
}

// order returns the ids of scope by position
func (m *memStore) order(scope Scope) []int64 {
	slots, _ := m.Slots(context.Background(), scope)
	ids := make([]int64, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	return ids
}
