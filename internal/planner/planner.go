// Package planner is the application service behind the CLI and the timer
// view. It owns the write path: every mutation locks the sibling scopes it
// touches, then applies its position changes and row writes inside one
// database transaction.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dori/iplan/internal/db"
	"github.com/dori/iplan/internal/model"
	"github.com/dori/iplan/internal/position"
)

// DefaultSuspendGrace is how long a suspended task can be restored
const DefaultSuspendGrace = 5 * time.Second

// ErrBusy is returned when another process holds the write lock for
// longer than the planner is willing to wait.
var ErrBusy = errors.New("another iplan process is writing")

// Locker is a lock shared between processes, such as *flock.Flock.
type Locker interface {
	TryLockContext(ctx context.Context, retryDelay time.Duration) (bool, error)
	Unlock() error
}

// Planner runs operations on projects, lists and tasks
type Planner struct {
	db     *db.DB
	idx    *position.Index
	logger *slog.Logger

	now   func() time.Time
	grace time.Duration
	loc   *time.Location

	// proc is taken around every write; procMu keeps goroutines of this
	// process from sharing one hold of it.
	proc     Locker
	procMu   sync.Mutex
	lockWait time.Duration
}

// Option configures a Planner
type Option func(*Planner)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithSuspendGrace sets the undo window for suspended tasks.
func WithSuspendGrace(d time.Duration) Option {
	return func(p *Planner) { p.grace = d }
}

// WithLocation sets the time zone used to bucket sessions by day.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) { p.loc = loc }
}

// WithProcessLock makes every write hold l, waiting at most wait for it.
func WithProcessLock(l Locker, wait time.Duration) Option {
	return func(p *Planner) {
		p.proc = l
		p.lockWait = wait
	}
}

// New creates a planner over an open database. A nil logger discards output.
func New(database *db.DB, logger *slog.Logger, opts ...Option) *Planner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Planner{
		db:     database,
		idx:    position.NewIndex(logger),
		logger: logger,
		now:    time.Now,
		grace:  DefaultSuspendGrace,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the planner's current time
func (p *Planner) Now() time.Time {
	return p.now()
}

// write locks scopes and runs fn in one transaction
func (p *Planner) write(ctx context.Context, fn func(*db.Tx) error, scopes ...position.Scope) error {
	unlock := p.idx.Lock(scopes...)
	defer unlock()

	if p.proc != nil {
		release, err := p.lockProcess(ctx)
		if err != nil {
			return err
		}
		defer release()
	}
	return p.db.Batch(ctx, fn)
}

func (p *Planner) lockProcess(ctx context.Context) (func(), error) {
	p.procMu.Lock()

	lockCtx, cancel := context.WithTimeout(ctx, p.lockWait)
	defer cancel()
	ok, err := p.proc.TryLockContext(lockCtx, 20*time.Millisecond)
	if !ok {
		p.procMu.Unlock()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire write lock: %w", err)
		}
		return nil, ErrBusy
	}

	return func() {
		if err := p.proc.Unlock(); err != nil {
			p.logger.Warn("release write lock", slog.Any("err", err))
		}
		p.procMu.Unlock()
	}, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrEmptyName
	}
	return name, nil
}

// requireProject maps a missing project to ErrInvalidScope, as a parent
// reference rather than the addressed entity.
func requireProject(ctx context.Context, tx *db.Tx, id int64) (*model.Project, error) {
	proj, err := tx.GetProject(ctx, id)
	if model.IsNotFound(err) {
		return nil, scopeError("project", id)
	}
	return proj, err
}

func requireList(ctx context.Context, tx *db.Tx, id int64) (*model.List, error) {
	l, err := tx.GetList(ctx, id)
	if model.IsNotFound(err) {
		return nil, scopeError("list", id)
	}
	return l, err
}

func scopeError(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d does not exist", model.ErrInvalidScope, kind, id)
}
