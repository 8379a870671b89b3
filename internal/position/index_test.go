package position

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/dori/iplan/internal/model"
)

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertDense(t *testing.T, s Store, scope Scope) {
	t.Helper()
	if err := Check(context.Background(), s, scope); err != nil {
		t.Fatalf("%s not dense: %v", scope, err)
	}
}

func TestNext(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := TasksOf(1)

	if pos, err := Next(ctx, s, scope); err != nil || pos != 0 {
		t.Fatalf("Next(empty) = %d, %v; want 0", pos, err)
	}

	s.fill(scope, 3)
	if pos, _ := Next(ctx, s, scope); pos != 3 {
		t.Errorf("Next() = %d, want 3", pos)
	}

	gappy := TasksOf(2)
	s.add(gappy, 0)
	s.add(gappy, 5)
	if pos, _ := Next(ctx, s, gappy); pos != 6 {
		t.Errorf("Next(gappy) = %d, want 6", pos)
	}
}

func TestReorder(t *testing.T) {
	cases := []struct {
		name   string
		from   int
		target int
		want   []int // indexes into the initial order
	}{
		{"down", 0, 3, []int{1, 2, 3, 0, 4}},
		{"up", 4, 1, []int{0, 4, 1, 2, 3}},
		{"to end", 1, 4, []int{0, 2, 3, 4, 1}},
		{"to start", 3, 0, []int{3, 0, 1, 2, 4}},
		{"adjacent down", 2, 3, []int{0, 1, 3, 2, 4}},
		{"adjacent up", 2, 1, []int{0, 2, 1, 3, 4}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := context.Background()
			s := newMemStore()
			scope := ListsOf(7)
			ids := s.fill(scope, 5)
			x := NewIndex(nil)

			changed, err := x.Reorder(ctx, s, scope, ids[c.from], c.target)
			if err != nil {
				t.Fatalf("Reorder() error: %v", err)
			}
			if !changed {
				t.Error("Reorder() reported no change")
			}

			want := make([]int64, len(c.want))
			for i, k := range c.want {
				want[i] = ids[k]
			}
			if got := s.order(scope); !equalIDs(got, want) {
				t.Errorf("order = %v, want %v", got, want)
			}
			assertDense(t, s, scope)
		})
	}
}

func TestReorderAdjacentIsSwap(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := Projects()
	ids := s.fill(scope, 4)

	if _, err := NewIndex(nil).Reorder(ctx, s, scope, ids[1], 2); err != nil {
		t.Fatalf("Reorder() error: %v", err)
	}
	if s.writes != 2 {
		t.Errorf("adjacent reorder wrote %d rows, want 2", s.writes)
	}
	if s.rows[ids[1]].pos != 2 || s.rows[ids[2]].pos != 1 {
		t.Errorf("positions after swap: %d, %d", s.rows[ids[1]].pos, s.rows[ids[2]].pos)
	}
}

func TestReorderSamePositionIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := TasksOf(3)
	ids := s.fill(scope, 3)

	changed, err := NewIndex(nil).Reorder(ctx, s, scope, ids[1], 1)
	if err != nil {
		t.Fatalf("Reorder() error: %v", err)
	}
	if changed {
		t.Error("Reorder() to own position reported a change")
	}
	if s.writes != 0 {
		t.Errorf("Reorder() to own position wrote %d rows", s.writes)
	}
}

func TestReorderErrors(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := TasksOf(3)
	ids := s.fill(scope, 3)
	x := NewIndex(nil)

	for _, target := range []int{-1, 3, 10} {
		_, err := x.Reorder(ctx, s, scope, ids[0], target)
		if !errors.Is(err, model.ErrInvalidPosition) {
			t.Errorf("Reorder(target=%d) error = %v, want ErrInvalidPosition", target, err)
		}
	}

	_, err := x.Reorder(ctx, s, scope, 999, 0)
	if !model.IsNotFound(err) {
		t.Errorf("Reorder(unknown id) error = %v, want NotFoundError", err)
	}
	if s.writes != 0 {
		t.Errorf("failed reorders wrote %d rows", s.writes)
	}
}

func TestReorderRepairsGaps(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := TasksOf(9)
	a := s.add(scope, 0)
	b := s.add(scope, 4)
	c := s.add(scope, 9)

	if _, err := NewIndex(nil).Reorder(ctx, s, scope, c, 0); err != nil {
		t.Fatalf("Reorder() error: %v", err)
	}
	if got, want := s.order(scope), []int64{c, a, b}; !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	assertDense(t, s, scope)
}

func TestMoveAcrossLists(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	listA, listB := TasksOf(1), TasksOf(2)
	a := s.fill(listA, 3)
	b := s.fill(listB, 2)

	if err := NewIndex(nil).Move(ctx, s, a[1], listA, listB, -1); err != nil {
		t.Fatalf("Move() error: %v", err)
	}

	if got, want := s.order(listA), []int64{a[0], a[2]}; !equalIDs(got, want) {
		t.Errorf("list A = %v, want %v", got, want)
	}
	if got, want := s.order(listB), []int64{b[0], b[1], a[1]}; !equalIDs(got, want) {
		t.Errorf("list B = %v, want %v", got, want)
	}
	if s.rows[a[1]].parent != 2 {
		t.Errorf("moved task parent = %d, want 2", s.rows[a[1]].parent)
	}
	assertDense(t, s, listA)
	assertDense(t, s, listB)
}

func TestMoveIntoPosition(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	listA, listB := TasksOf(1), TasksOf(2)
	a := s.fill(listA, 2)
	b := s.fill(listB, 3)

	if err := NewIndex(nil).Move(ctx, s, a[0], listA, listB, 1); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if got, want := s.order(listB), []int64{b[0], a[0], b[1], b[2]}; !equalIDs(got, want) {
		t.Errorf("list B = %v, want %v", got, want)
	}
	assertDense(t, s, listA)
	assertDense(t, s, listB)
}

func TestMoveIntoEmptyList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	listA, listB := TasksOf(1), TasksOf(2)
	a := s.fill(listA, 1)

	if err := NewIndex(nil).Move(ctx, s, a[0], listA, listB, -1); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if len(s.order(listA)) != 0 {
		t.Errorf("list A still has %v", s.order(listA))
	}
	if s.rows[a[0]].pos != 0 || s.rows[a[0]].parent != 2 {
		t.Errorf("moved task = %+v", *s.rows[a[0]])
	}
}

func TestMoveErrors(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	x := NewIndex(nil)
	ids := s.fill(ListsOf(1), 2)

	err := x.Move(ctx, s, ids[0], ListsOf(1), ListsOf(2), -1)
	if !errors.Is(err, model.ErrInvalidScope) {
		t.Errorf("Move(list) error = %v, want ErrInvalidScope", err)
	}

	tasks := s.fill(TasksOf(1), 1)
	s.fill(TasksOf(2), 2)
	err = x.Move(ctx, s, tasks[0], TasksOf(1), TasksOf(2), 3)
	if !errors.Is(err, model.ErrInvalidPosition) {
		t.Errorf("Move(target past end) error = %v, want ErrInvalidPosition", err)
	}
	err = x.Move(ctx, s, 999, TasksOf(1), TasksOf(2), 0)
	if !model.IsNotFound(err) {
		t.Errorf("Move(unknown) error = %v, want NotFoundError", err)
	}
	if s.writes != 0 {
		t.Errorf("failed moves wrote %d rows", s.writes)
	}
}

func TestMoveWithinSameListReorders(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	list := TasksOf(5)
	ids := s.fill(list, 3)

	if err := NewIndex(nil).Move(ctx, s, ids[0], list, list, -1); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if got, want := s.order(list), []int64{ids[1], ids[2], ids[0]}; !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRemoveClosesGap(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := Projects()
	ids := s.fill(scope, 4)

	if err := NewIndex(nil).Remove(ctx, s, scope, ids[1]); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if got, want := s.order(scope), []int64{ids[0], ids[2], ids[3]}; !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if s.rows[ids[0]].pos != 0 || s.rows[ids[2]].pos != 1 || s.rows[ids[3]].pos != 2 {
		t.Error("positions were not shifted down")
	}
	// one delete plus two shifts
	if s.writes != 3 {
		t.Errorf("Remove() wrote %d rows, want 3", s.writes)
	}
}

func TestRemoveStopsOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := Projects()
	ids := s.fill(scope, 3)
	s.failOn = 2

	err := NewIndex(nil).Remove(ctx, s, scope, ids[0])
	if !errors.Is(err, errInjected) {
		t.Fatalf("Remove() error = %v, want injected failure", err)
	}
	if s.writes != 2 {
		t.Errorf("Remove() kept writing after a failure: %d writes", s.writes)
	}
}

func TestCompactAndCheck(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	scope := ListsOf(4)
	a := s.add(scope, 3)
	b := s.add(scope, 3)
	c := s.add(scope, 10)

	var dense *DenseError
	if err := Check(ctx, s, scope); !errors.As(err, &dense) {
		t.Fatalf("Check() error = %v, want *DenseError", err)
	}

	n, err := NewIndex(nil).Compact(ctx, s, scope)
	if err != nil {
		t.Fatalf("Compact() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Compact() changed %d, want 3", n)
	}
	if got, want := s.order(scope), []int64{a, b, c}; !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	assertDense(t, s, scope)

	n, _ = NewIndex(nil).Compact(ctx, s, scope)
	if n != 0 {
		t.Errorf("Compact() on a dense scope changed %d", n)
	}
}

func TestDensityUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	s := newMemStore()
	x := NewIndex(nil)
	lists := []Scope{TasksOf(1), TasksOf(2), TasksOf(3)}

	for i := 0; i < 600; i++ {
		scope := lists[rng.Intn(len(lists))]
		ids := s.order(scope)

		switch op := rng.Intn(4); {
		case op == 0 || len(ids) == 0:
			pos, err := Next(ctx, s, scope)
			if err != nil {
				t.Fatal(err)
			}
			s.add(scope, pos)
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			if _, err := x.Reorder(ctx, s, scope, id, rng.Intn(len(ids))); err != nil {
				t.Fatalf("step %d: Reorder() error: %v", i, err)
			}
		case op == 2:
			id := ids[rng.Intn(len(ids))]
			to := lists[rng.Intn(len(lists))]
			target := rng.Intn(len(s.order(to))+2) - 1
			if to == scope && target >= len(ids) {
				target = -1
			}
			if err := x.Move(ctx, s, id, scope, to, target); err != nil {
				t.Fatalf("step %d: Move() error: %v", i, err)
			}
		default:
			id := ids[rng.Intn(len(ids))]
			if err := x.Remove(ctx, s, scope, id); err != nil {
				t.Fatalf("step %d: Remove() error: %v", i, err)
			}
		}

		for _, l := range lists {
			assertDense(t, s, l)
		}
	}
}

func TestLockOrderingDoesNotDeadlock(t *testing.T) {
	x := NewIndex(nil)
	a, b := TasksOf(1), TasksOf(2)

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := x.Lock(a, b)
			counter++
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := x.Lock(b, a, b)
			counter++
			unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Lock() deadlocked")
	}
	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}
