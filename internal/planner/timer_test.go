package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/timelog"
)

func TestStartStopTimer(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")
	id := ts[0].ID

	task, resumed, err := p.StartTimer(ctx, id)
	if err != nil || resumed {
		t.Fatalf("StartTimer() = %v, %v", resumed, err)
	}
	if task.Duration != "1000.0,0;" {
		t.Errorf("log after start = %q", task.Duration)
	}

	clock.Advance(30 * time.Second)
	if _, resumed, err := p.StartTimer(ctx, id); err != nil || !resumed {
		t.Fatalf("second StartTimer() = %v, %v; want resume", resumed, err)
	}
	elapsed, open, err := p.Elapsed(ctx, id)
	if err != nil || !open || elapsed != 30*time.Second {
		t.Errorf("Elapsed() = %v, %v, %v", elapsed, open, err)
	}

	clock.Advance(60 * time.Second)
	task, err = p.StopTimer(ctx, id)
	if err != nil {
		t.Fatalf("StopTimer() error: %v", err)
	}
	if task.Duration != "1000.0,90;" {
		t.Errorf("log after stop = %q, want %q", task.Duration, "1000.0,90;")
	}

	if _, err := p.StopTimer(ctx, id); !errors.Is(err, timelog.ErrNoOpenSession) {
		t.Errorf("StopTimer() without session error = %v", err)
	}
	secs, err := p.TaskDuration(ctx, id)
	if err != nil || secs != 90 {
		t.Errorf("TaskDuration() = %d, %v; want 90", secs, err)
	}
}

func TestElapsedIsReadOnly(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")
	if _, _, err := p.StartTimer(ctx, ts[0].ID); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		if _, _, err := p.Elapsed(ctx, ts[0].ID); err != nil {
			t.Fatal(err)
		}
	}
	stored, _ := p.db.GetTask(ctx, ts[0].ID)
	if stored.Duration != "1000.0,0;" {
		t.Errorf("ticks changed the stored log: %q", stored.Duration)
	}

	running, err := p.Running(ctx)
	if err != nil || len(running) != 1 || running[0].ID != ts[0].ID {
		t.Errorf("Running() = %+v, %v", running, err)
	}
}

func TestTimerRefusesDoneTask(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")

	if _, err := p.ToggleDone(ctx, ts[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.StartTimer(ctx, ts[0].ID); !errors.Is(err, model.ErrTaskDone) {
		t.Errorf("StartTimer(done) error = %v, want ErrTaskDone", err)
	}
}

func TestCompletingStopsTimer(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")

	if _, _, err := p.StartTimer(ctx, ts[0].ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(42 * time.Second)
	task, err := p.ToggleDone(ctx, ts[0].ID)
	if err != nil {
		t.Fatalf("ToggleDone() error: %v", err)
	}
	if !task.Done || task.Duration != "1000.0,42;" {
		t.Errorf("completed task = done %v log %q", task.Done, task.Duration)
	}

	task, _ = p.ToggleDone(ctx, ts[0].ID)
	if task.Done {
		t.Error("second ToggleDone() did not reopen the task")
	}
}

func TestSuspendStopsTimer(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")

	if _, _, err := p.StartTimer(ctx, ts[0].ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	if _, err := p.SuspendTask(ctx, ts[0].ID); err != nil {
		t.Fatal(err)
	}
	stored, _ := p.db.GetTask(ctx, ts[0].ID)
	if stored.Duration != "1000.0,10;" {
		t.Errorf("log of suspended task = %q", stored.Duration)
	}
}

func TestProjectDuration(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	proj, _, ts := fixture(t, p, "Work", "a", "b", "broken")

	day1 := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC).Unix()
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC).Unix()
	logs := []string{
		timelog.Encode([]timelog.Record{{Start: float64(day1), Duration: 30}, {Start: float64(day2), Duration: 45}}),
		timelog.Encode([]timelog.Record{{Start: float64(day2), Duration: 15}, {Start: float64(day2 + 100), Duration: 0}}),
		"garbage",
	}
	for i, log := range logs {
		ts[i].Duration = log
		if err := p.db.UpdateTask(ctx, ts[i]); err != nil {
			t.Fatal(err)
		}
	}

	total, err := p.ProjectDuration(ctx, proj.ID)
	if err != nil || total != 90 {
		t.Errorf("ProjectDuration() = %d, %v; want 90", total, err)
	}

	table, err := p.ProjectDurationByDay(ctx, proj.ID)
	if err != nil {
		t.Fatalf("ProjectDurationByDay() error: %v", err)
	}
	want := map[timelog.Date]int{
		{Year: 2024, Month: time.March, Day: 1}: 30,
		{Year: 2024, Month: time.March, Day: 2}: 60,
	}
	if len(table) != len(want) {
		t.Fatalf("table = %v, want %v", table, want)
	}
	for d, secs := range want {
		if table[d] != secs {
			t.Errorf("table[%s] = %d, want %d", d, table[d], secs)
		}
	}

	if _, err := p.ProjectDuration(ctx, 999); !model.IsNotFound(err) {
		t.Errorf("ProjectDuration(missing) error = %v", err)
	}
}

func TestDoctor(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	_, l, ts := fixture(t, p, "Work", "a", "b", "c")

	if _, err := p.db.Exec(`UPDATE tasks SET position = position * 2 WHERE list_id = ?`, l.ID); err != nil {
		t.Fatal(err)
	}
	ts[0].Duration = "1000.0,0;2000.0,5;"
	ts[0].Position = 0
	if err := p.db.UpdateTask(ctx, ts[0]); err != nil {
		t.Fatal(err)
	}

	report, err := p.Doctor(ctx, false)
	if err != nil {
		t.Fatalf("Doctor() error: %v", err)
	}
	if len(report.Gaps) != 1 || report.Fixed != 0 {
		t.Errorf("report gaps=%d fixed=%d, want 1 and 0", len(report.Gaps), report.Fixed)
	}
	if len(report.Malformed) != 1 || report.Malformed[0].TaskID != ts[0].ID {
		t.Errorf("malformed = %+v", report.Malformed)
	}

	report, err = p.Doctor(ctx, true)
	if err != nil {
		t.Fatalf("Doctor(fix) error: %v", err)
	}
	if report.Fixed != 2 {
		t.Errorf("Fixed = %d, want 2", report.Fixed)
	}
	if got := taskNames(t, p, l.ID); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Errorf("order after fix = %v", got)
	}
	assertDense(t, p)

	stored, _ := p.db.GetTask(ctx, ts[0].ID)
	if stored.Duration != "1000.0,0;2000.0,5;" {
		t.Errorf("doctor rewrote a malformed log: %q", stored.Duration)
	}
}

func TestReport(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	clock.now = time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	_, _, work := fixture(t, p, "Work", "a")
	_, _, home := fixture(t, p, "Home", "b")

	stamp := func(day, hour int) float64 {
		return float64(time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).Unix())
	}
	work[0].Duration = timelog.Encode([]timelog.Record{
		{Start: stamp(1, 9), Duration: 600}, // outside the window
		{Start: stamp(9, 9), Duration: 60},
		{Start: stamp(10, 9), Duration: 120},
	})
	home[0].Duration = timelog.Encode([]timelog.Record{{Start: stamp(10, 20), Duration: 30}})
	for _, task := range []*model.Task{work[0], home[0]} {
		if err := p.db.UpdateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := p.Report(ctx, 7)
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Report() = %+v, want 2 days", rows)
	}
	if rows[0].Date.Day != 10 || rows[0].Total != 150 || rows[0].Projects["Home"] != 30 || rows[0].Projects["Work"] != 120 {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[1].Date.Day != 9 || rows[1].Total != 60 {
		t.Errorf("second row = %+v", rows[1])
	}

	rows, err = p.Report(ctx, 1)
	if err != nil || len(rows) != 1 || rows[0].Date.Day != 10 {
		t.Errorf("Report(1) = %+v, %v", rows, err)
	}
}

func TestStopTimerLeavesNonCanonicalLogAlone(t *testing.T) {
	p, clock := newTestPlanner(t)
	ctx := context.Background()
	_, _, ts := fixture(t, p, "Work", "a")

	ts[0].Duration = "1000.0,00;"
	if err := p.db.UpdateTask(ctx, ts[0]); err != nil {
		t.Fatal(err)
	}
	clock.Advance(90 * time.Second)

	if _, err := p.StopTimer(ctx, ts[0].ID); !errors.Is(err, timelog.ErrMalformed) {
		t.Fatalf("StopTimer() error = %v, want ErrMalformed", err)
	}
	stored, err := p.db.GetTask(ctx, ts[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Duration != "1000.0,00;" {
		t.Errorf("stored log = %q, want it untouched", stored.Duration)
	}
}
