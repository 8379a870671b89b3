package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/iplan/internal/db"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTaskAddCmd(a))
	cmd.AddCommand(newTaskListCmd(a))
	cmd.AddCommand(newTaskRenameCmd(a))
	cmd.AddCommand(newTaskDoneCmd(a))
	cmd.AddCommand(newTaskRemoveCmd(a))
	cmd.AddCommand(newTaskUndoCmd(a))
	cmd.AddCommand(newTaskPurgeCmd(a))
	cmd.AddCommand(newTaskMoveCmd(a))
	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <list-id> <name>...",
		Short: "Create a task at the end of a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID(args[0], "list")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.CreateTask(cmd.Context(), listID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			writeLine(cmd, "Created task #%d: %s", t.ID, t.Name)
			return nil
		},
	}
}

func newTaskListCmd(a *App) *cobra.Command {
	var done, open, reverse bool

	cmd := &cobra.Command{
		Use:     "ls <list-id>",
		Aliases: []string{"list"},
		Short:   "List the tasks of a list by position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID(args[0], "list")
			if err != nil {
				return err
			}
			if done && open {
				return fmt.Errorf("--done and --open are mutually exclusive")
			}
			var filter db.TaskFilter
			if done || open {
				filter.Done = &done
			}

			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			tasks, err := p.Tasks(cmd.Context(), listID, filter)
			if err != nil {
				return err
			}
			if reverse {
				tasks = reversed(tasks)
			}
			if a.JSON {
				return writeJSON(cmd, tasks)
			}
			renderTasks(cmd.OutOrStdout(), a.styles, tasks, p.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&done, "done", false, "Only completed tasks")
	cmd.Flags().BoolVar(&open, "open", false, "Only open tasks")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Show the highest position first")
	return cmd
}

func newTaskRenameCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <task-id> <name>...",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.RenameTask(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			writeLine(cmd, "Renamed task #%d: %s", t.ID, t.Name)
			return nil
		},
	}
}

func newTaskDoneCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle a task's done flag; completing stops its timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.ToggleDone(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			if t.Done {
				writeLine(cmd, "Completed task #%d: %s", t.ID, t.Name)
			} else {
				writeLine(cmd, "Reopened task #%d: %s", t.ID, t.Name)
			}
			return nil
		},
	}
}

func newTaskRemoveCmd(a *App) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task, undoable until the grace period ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}

			if now {
				if err := p.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				writeLine(cmd, "Deleted task #%d", id)
				return nil
			}

			token, err := p.SuspendTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, map[string]any{"id": id, "undo_token": token})
			}
			writeLine(cmd, "Deleted task #%d", id)
			writeLine(cmd, "%s", a.styles.Label.Render(fmt.Sprintf("undo within %s: iplan task undo %s", a.cfg.Tasks.SuspendGrace, token)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Delete immediately without an undo window")
	return cmd
}

func newTaskUndoCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <token>",
		Short: "Restore a deleted task at its old position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			t, err := p.RestoreTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			writeLine(cmd, "Restored task #%d: %s", t.ID, t.Name)
			return nil
		},
	}
}

func newTaskPurgeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove deleted tasks whose undo window has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			n, err := p.PurgeSuspended(cmd.Context())
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, map[string]int{"purged": n})
			}
			writeLine(cmd, "Purged %d task(s)", n)
			return nil
		},
	}
}

func newTaskMoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <task-id> <list-id> [position]",
		Short: "Move a task within its list or to another list",
		Long: `Move a task to a position inside a list. The list may be the task's own
list, another list of the same project or a list of another project.
Without a position the task goes last.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			listID, err := parseID(args[1], "list")
			if err != nil {
				return err
			}
			pos := -1
			if len(args) == 3 {
				if pos, err = parsePosition(args[2]); err != nil {
					return err
				}
			}

			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			if err := p.MoveTask(cmd.Context(), id, listID, pos); err != nil {
				return err
			}
			t, err := p.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, t)
			}
			writeLine(cmd, "Moved task #%d to list #%d at %d", t.ID, t.ListID, t.Position)
			return nil
		},
	}
}
