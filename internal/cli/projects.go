package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/iplan/internal/timelog"
)

func newProjectCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectAddCmd(a))
	cmd.AddCommand(newProjectListCmd(a))
	cmd.AddCommand(newProjectRenameCmd(a))
	cmd.AddCommand(newProjectArchiveCmd(a))
	cmd.AddCommand(newProjectRemoveCmd(a))
	cmd.AddCommand(newProjectMoveCmd(a))
	cmd.AddCommand(newProjectTimeCmd(a))
	return cmd
}

func newProjectAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Create a project after the existing ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			proj, err := p.CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, proj)
			}
			writeLine(cmd, "Created project #%d: %s", proj.ID, proj.Name)
			return nil
		},
	}
}

func newProjectListCmd(a *App) *cobra.Command {
	var all, reverse bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects by position",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			projects, err := p.Projects(cmd.Context(), all)
			if err != nil {
				return err
			}
			if reverse {
				projects = reversed(projects)
			}
			if a.JSON {
				return writeJSON(cmd, projects)
			}
			renderProjects(cmd.OutOrStdout(), a.styles, projects)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived projects")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Show the highest position first")
	return cmd
}

func newProjectRenameCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project-id> <name>...",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			proj, err := p.RenameProject(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, proj)
			}
			writeLine(cmd, "Renamed project #%d: %s", proj.ID, proj.Name)
			return nil
		},
	}
}

func newProjectArchiveCmd(a *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a project; it keeps its position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			proj, err := p.ArchiveProject(cmd.Context(), id, !undo)
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, proj)
			}
			if proj.Archived {
				writeLine(cmd, "Archived project #%d: %s", proj.ID, proj.Name)
			} else {
				writeLine(cmd, "Unarchived project #%d: %s", proj.ID, proj.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Unarchive instead")
	return cmd
}

func newProjectRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <project-id>",
		Short: "Delete a project with its lists and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			if err := p.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			writeLine(cmd, "Deleted project #%d", id)
			return nil
		},
	}
}

func newProjectMoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <project-id> <position>",
		Short: "Move a project to a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
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
			changed, err := p.MoveProject(cmd.Context(), id, pos)
			if err != nil {
				return err
			}
			if !changed {
				writeLine(cmd, "Project #%d is already at %d", id, pos)
				return nil
			}
			writeLine(cmd, "Moved project #%d to %d", id, pos)
			return nil
		},
	}
}

func newProjectTimeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "time <project-id>",
		Short: "Show the time worked on a project, per day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			p, err := a.planner(cmd)
			if err != nil {
				return err
			}
			proj, err := p.Project(cmd.Context(), id)
			if err != nil {
				return err
			}
			total, err := p.ProjectDuration(cmd.Context(), id)
			if err != nil {
				return err
			}
			table, err := p.ProjectDurationByDay(cmd.Context(), id)
			if err != nil {
				return err
			}

			if a.JSON {
				days := make(map[string]int, len(table))
				for d, secs := range table {
					days[d.String()] = secs
				}
				return writeJSON(cmd, map[string]any{"project": proj.ID, "total": total, "days": days})
			}
			writeLine(cmd, "%s %s", a.styles.Title.Render(proj.Name), a.styles.Duration.Render(timelog.Format(total)))
			renderDays(cmd.OutOrStdout(), a.styles, table)
			return nil
		},
	}
}
