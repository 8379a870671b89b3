package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"lists", "l"},
		Short:   "List commands",
	}
	cmd.AddCommand(newListAddCmd(a))
	cmd.AddCommand(newListListCmd(a))
	cmd.AddCommand(newListRenameCmd(a))
	cmd.AddCommand(newListRemoveCmd(a))
	cmd.AddCommand(newListMoveCmd(a))
	return cmd
}

func newListAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project-id> <name>...",
		Short: "Create a list at the end of a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			l, err := p.CreateList(cmd.Context(), projectID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, l)
			}
			writeLine(cmd, "Created list #%d: %s", l.ID, l.Name)
			return nil
		},
	}
}

func newListListCmd(a *App) *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:     "ls <project-id>",
		Aliases: []string{"list"},
		Short:   "List the lists of a project by position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			lists, err := p.Lists(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if reverse {
				lists = reversed(lists)
			}
			if a.JSON {
				return writeJSON(cmd, lists)
			}
			renderLists(cmd.OutOrStdout(), a.styles, lists)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Show the highest position first")
	return cmd
}

func newListRenameCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <list-id> <name>...",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "list")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			l, err := p.RenameList(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, l)
			}
			writeLine(cmd, "Renamed list #%d: %s", l.ID, l.Name)
			return nil
		},
	}
}

func newListRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <list-id>",
		Short: "Delete a list with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "list")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			if err := p.DeleteList(cmd.Context(), id); err != nil {
				return err
			}
			writeLine(cmd, "Deleted list #%d", id)
			return nil
		},
	}
}

func newListMoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <list-id> <position>",
		Short: "Move a list within its project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "list")
			if err != nil {
				return err
			}
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			changed, err := p.MoveList(cmd.Context(), id, pos)
			if err != nil {
				return err
			}
			if !changed {
				writeLine(cmd, "List #%d is already at %d", id, pos)
				return nil
			}
			writeLine(cmd, "Moved list #%d to %d", id, pos)
			return nil
		},
	}
}
