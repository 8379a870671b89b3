// Package config loads iplan's settings from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dori/iplan/internal/db"
)

// Config represents the full iplan configuration
type Config struct {
	// Directory holding the database and the lock file
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// Database file; empty means data.db inside DataDir
	DBPath string `yaml:"db_path" mapstructure:"db_path"`

	// One of debug, info, warn, error
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// Color theme for the timer view and listings
	Theme string `yaml:"theme" mapstructure:"theme"`

	Timer  TimerConfig  `yaml:"timer" mapstructure:"timer"`
	Tasks  TasksConfig  `yaml:"tasks" mapstructure:"tasks"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

// TimerConfig configures the live timer display
type TimerConfig struct {
	// How often the display refreshes. Must be under one second.
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
}

// TasksConfig configures task lifecycle
type TasksConfig struct {
	// How long a suspended task can be restored before purge removes it
	SuspendGrace time.Duration `yaml:"suspend_grace" mapstructure:"suspend_grace"`
}

// ReportConfig configures the per-day report
type ReportConfig struct {
	Days int `yaml:"days" mapstructure:"days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:  db.DefaultDataDir(),
		LogLevel: "warn",
		Theme:    "nord",
		Timer: TimerConfig{
			TickInterval: 100 * time.Millisecond,
		},
		Tasks: TasksConfig{
			SuspendGrace: 10 * time.Minute,
		},
		Report: ReportConfig{
			Days: 7,
		},
	}
}

// DatabasePath returns the database file to open
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "data.db")
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.DataDir == "" && c.DBPath == "" {
		return fmt.Errorf("data_dir or db_path must be set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Timer.TickInterval <= 0 || c.Timer.TickInterval >= time.Second {
		return fmt.Errorf("timer.tick_interval must be between 0 and 1s, got %s", c.Timer.TickInterval)
	}
	if c.Tasks.SuspendGrace < 0 {
		return fmt.Errorf("tasks.suspend_grace must not be negative, got %s", c.Tasks.SuspendGrace)
	}
	if c.Report.Days < 1 {
		return fmt.Errorf("report.days must be at least 1, got %d", c.Report.Days)
	}
	return nil
}
