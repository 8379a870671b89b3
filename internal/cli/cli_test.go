package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/iplan/internal/model"
)

type env struct {
	dir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("IPLAN_CONFIG", "")
	return &env{dir: t.TempDir()}
}

// run executes one command line against the env's database
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	args = append(args,
		"--db", filepath.Join(e.dir, "data.db"),
		"--config", filepath.Join(e.dir, "config.yaml"))

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), "test", args, &stdout, &stderr)
	return stdout.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("iplan %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *env) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out := e.mustRun(t, append(args, "--json")...)
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("iplan %s: bad JSON %q: %v", strings.Join(args, " "), out, err)
	}
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "version"); out != "iplan vtest\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestProjectCommands(t *testing.T) {
	e := newEnv(t)

	var work model.Project
	e.runJSON(t, &work, "project", "add", "Deep", "Work")
	if work.Name != "Deep Work" || work.Position != 1 {
		t.Errorf("created project = %+v", work)
	}

	e.mustRun(t, "project", "mv", "2", "0")
	var projects []model.Project
	e.runJSON(t, &projects, "project", "ls")
	if len(projects) != 2 || projects[0].Name != "Deep Work" || projects[1].Name != "Personal" {
		t.Fatalf("projects after move = %+v", projects)
	}

	e.mustRun(t, "project", "archive", "2")
	e.runJSON(t, &projects, "project", "ls")
	if len(projects) != 1 {
		t.Errorf("archived project still listed: %+v", projects)
	}
	e.runJSON(t, &projects, "project", "ls", "--all")
	if len(projects) != 2 || !projects[0].Archived {
		t.Errorf("ls --all = %+v", projects)
	}

	out := e.mustRun(t, "project", "ls", "--all")
	if !strings.Contains(out, "Deep Work (archived)") {
		t.Errorf("text listing misses archived marker:\n%s", out)
	}

	e.mustRun(t, "project", "rm", "2")
	e.runJSON(t, &projects, "project", "ls", "--all")
	if len(projects) != 1 || projects[0].Position != 0 {
		t.Errorf("after delete = %+v", projects)
	}
}

func TestTaskCommands(t *testing.T) {
	e := newEnv(t)
	for _, name := range []string{"a", "b", "c"} {
		e.mustRun(t, "task", "add", "1", name)
	}

	var tasks []model.Task
	e.mustRun(t, "task", "mv", "3", "1", "0")
	e.runJSON(t, &tasks, "task", "ls", "1")
	if got := names(tasks); got != "c,a,b" {
		t.Errorf("order after move = %s", got)
	}

	e.runJSON(t, &tasks, "task", "ls", "1", "--reverse")
	if got := names(tasks); got != "b,a,c" {
		t.Errorf("reversed order = %s", got)
	}

	e.mustRun(t, "task", "done", "1")
	e.runJSON(t, &tasks, "task", "ls", "1", "--done")
	if got := names(tasks); got != "a" {
		t.Errorf("done tasks = %s", got)
	}
	e.runJSON(t, &tasks, "task", "ls", "1", "--open")
	if got := names(tasks); got != "c,b" {
		t.Errorf("open tasks = %s", got)
	}

	var suspended struct {
		ID        int64  `json:"id"`
		UndoToken string `json:"undo_token"`
	}
	e.runJSON(t, &suspended, "task", "rm", "2")
	if suspended.UndoToken == "" {
		t.Fatal("rm returned no undo token")
	}
	e.runJSON(t, &tasks, "task", "ls", "1")
	if got := names(tasks); got != "c,a" {
		t.Errorf("after rm = %s", got)
	}

	var restored model.Task
	e.runJSON(t, &restored, "task", "undo", suspended.UndoToken)
	if restored.ID != 2 || restored.Position != 2 {
		t.Errorf("restored = %+v", restored)
	}

	e.mustRun(t, "task", "rm", "--now", "3")
	e.runJSON(t, &tasks, "task", "ls", "1")
	if got := names(tasks); got != "a,b" || tasks[0].Position != 0 || tasks[1].Position != 1 {
		t.Errorf("after hard delete = %+v", tasks)
	}
}

func TestTaskMoveAcrossLists(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "list", "add", "1", "Later")
	e.mustRun(t, "task", "add", "1", "a")
	e.mustRun(t, "task", "add", "2", "b")

	var moved model.Task
	e.runJSON(t, &moved, "task", "mv", "1", "2")
	if moved.ListID != 2 || moved.Position != 1 {
		t.Errorf("moved task = %+v", moved)
	}

	out := e.mustRun(t, "doctor")
	if !strings.Contains(out, "no problems found") {
		t.Errorf("doctor after move:\n%s", out)
	}
}

func TestTimerCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "task", "add", "1", "write")

	var started struct {
		Resumed bool `json:"resumed"`
	}
	e.runJSON(t, &started, "timer", "start", "1")
	if started.Resumed {
		t.Error("first start reported resumed")
	}
	e.runJSON(t, &started, "timer", "start", "1")
	if !started.Resumed {
		t.Error("second start did not resume")
	}

	var status []timerStatus
	e.runJSON(t, &status, "timer", "status")
	if len(status) != 1 || status[0].Task != 1 {
		t.Errorf("status = %+v", status)
	}

	var stopped model.Task
	e.runJSON(t, &stopped, "timer", "stop", "1")
	if stopped.IsTiming() {
		t.Errorf("stopped log = %q", stopped.Duration)
	}

	e.runJSON(t, &status, "timer", "status")
	if len(status) != 0 {
		t.Errorf("status after stop = %+v", status)
	}

	if _, err := e.run(t, "timer", "stop", "1"); err == nil {
		t.Error("stopping twice should fail")
	}
}

func TestReportCommand(t *testing.T) {
	e := newEnv(t)
	var rows []reportRow
	e.runJSON(t, &rows, "report", "--days", "3")
	if len(rows) != 0 {
		t.Errorf("report on empty database = %+v", rows)
	}
	if out := e.mustRun(t, "report"); !strings.Contains(out, "no time recorded") {
		t.Errorf("empty report text = %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)

	if out := e.mustRun(t, "config", "path"); strings.TrimSpace(out) != filepath.Join(e.dir, "config.yaml") {
		t.Errorf("config path = %q", out)
	}
	e.mustRun(t, "config", "init")
	if _, err := e.run(t, "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	e.mustRun(t, "config", "init", "--force")

	out := e.mustRun(t, "config", "show")
	if !strings.Contains(out, "tick_interval: 100ms") || !strings.Contains(out, "db_path: "+filepath.Join(e.dir, "data.db")) {
		t.Errorf("config show:\n%s", out)
	}
}

func TestErrors(t *testing.T) {
	e := newEnv(t)

	if _, err := e.run(t, "task", "add", "99", "x"); !errors.Is(err, model.ErrInvalidScope) {
		t.Errorf("add to missing list: %v", err)
	}
	if _, err := e.run(t, "task", "rename", "42", "x"); !model.IsNotFound(err) {
		t.Errorf("rename missing task: %v", err)
	}
	if _, err := e.run(t, "project", "mv", "1", "5"); !errors.Is(err, model.ErrInvalidPosition) {
		t.Errorf("move past the end: %v", err)
	}
	if _, err := e.run(t, "project", "add", "  "); !errors.Is(err, model.ErrEmptyName) {
		t.Errorf("blank name: %v", err)
	}
	if _, err := e.run(t, "task", "undo", "nope"); !errors.Is(err, model.ErrUndoExpired) {
		t.Errorf("unknown token: %v", err)
	}
	if _, err := e.run(t, "project", "rm", "abc"); err == nil {
		t.Error("non-numeric id accepted")
	}
	if _, err := e.run(t, "task", "ls", "1", "--done", "--open"); err == nil {
		t.Error("--done with --open accepted")
	}
}

func names(tasks []model.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return strings.Join(out, ",")
}
