package cli

import (
	"github.com/spf13/cobra"

	"github.com/dori/iplan/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigPathCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	return cmd
}

func (a *App) configPath() string {
	if a.ConfigPath != "" {
		return a.ConfigPath
	}
	return config.Path()
}

func newConfigInitCmd(a *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath()
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			writeLine(cmd, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			writeLine(cmd, "%s", a.configPath())
		},
	}
}

func newConfigShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if a.JSON {
				return writeJSON(cmd, map[string]any{
					"data_dir":            cfg.DataDir,
					"db_path":             cfg.DatabasePath(),
					"log_level":           cfg.LogLevel,
					"theme":               cfg.Theme,
					"timer.tick_interval": cfg.Timer.TickInterval.String(),
					"tasks.suspend_grace": cfg.Tasks.SuspendGrace.String(),
					"report.days":         cfg.Report.Days,
				})
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
