package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/iplan/internal/app"
	"github.com/dori/iplan/internal/config"
	"github.com/dori/iplan/internal/planner"
	"github.com/dori/iplan/internal/ui/theme"
)

// App holds global flags and the lazily opened application
type App struct {
	ConfigPath string
	DBPath     string
	JSON       bool

	cfg    *config.Config
	app    *app.App
	styles theme.Styles
}

// Execute runs the command line in args and releases the database
// whether or not the command succeeded.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	a := &App{}
	cmd := newRootCmd(a, version)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *App, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "iplan",
		Short:         "Projects, lists and tasks with a built-in time log",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Add a task to the seeded "Tasks" list and time it
  iplan list ls 1
  iplan task add 1 "Write report"
  iplan timer start 1 --watch

  # Reorder and move
  iplan task mv 1 2 0

  # Where did the week go
  iplan report --days 7
`),
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.Close()
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "Config file (default $IPLAN_CONFIG or ~/.config/iplan/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.DBPath, "db", "", "Database file (overrides db_path)")
	cmd.PersistentFlags().BoolVar(&a.JSON, "json", false, "Print JSON instead of text")

	cmd.AddCommand(newProjectCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newTaskCmd(a))
	cmd.AddCommand(newTimerCmd(a))
	cmd.AddCommand(newReportCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

// config loads the configuration once, applying flag overrides
func (a *App) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	if a.DBPath != "" {
		cfg.DBPath = a.DBPath
	}
	styles, err := theme.Load(cfg.Theme)
	if err != nil {
		return nil, err
	}
	a.cfg, a.styles = cfg, styles
	return cfg, nil
}

// planner opens the database on first use and purges suspended tasks
// whose undo window has passed.
func (a *App) planner(cmd *cobra.Command) (*planner.Planner, error) {
	if a.app != nil {
		return a.app.Planner, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	opened, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	a.app = opened

	if _, err := opened.Planner.PurgeSuspended(cmd.Context()); err != nil {
		opened.Logger.Warn("purge suspended tasks", slog.Any("err", err))
	}
	return opened.Planner, nil
}

// Close releases the application if it was opened
func (a *App) Close() error {
	if a.app == nil {
		return nil
	}
	err := a.app.Close()
	a.app = nil
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLine(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return pos, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			writeLine(cmd, "iplan v%s", version)
		},
	}
}
