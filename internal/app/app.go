package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/dori/iplan/internal/config"
	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/planner"
)

// lockWait bounds how long a write waits for another iplan process
const lockWait = 5 * time.Second

// App holds the application state and dependencies
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *db.DB
	Planner *planner.Planner

	lockFile *flock.Flock
}

// NewLogger builds the text logger used on stderr
func NewLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// New opens the database named by cfg and builds the planner on top of it.
// Writes are serialized with other iplan processes through a lock file in
// the database's directory.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(os.Stderr, cfg)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DatabasePath()
	dir := filepath.Dir(dbPath)
	// Ensure data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "iplan.lock"))
	p := planner.New(database, logger,
		planner.WithSuspendGrace(cfg.Tasks.SuspendGrace),
		planner.WithProcessLock(lock, lockWait))

	logger.Debug("opened database", slog.String("path", dbPath))
	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       database,
		Planner:  p,
		lockFile: lock,
	}, nil
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if a.lockFile != nil {
		if err := a.lockFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close lock file: %w", err))
		}
	}

	return errors.Join(errs...)
}
