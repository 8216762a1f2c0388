package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
)

// userSessions holds one user's open sessions, one per date. The mutex
// serialises every operation on them, so each request runs a ledger
// operation to completion.
type userSessions struct {
	mu     sync.Mutex
	byDate map[string]*fleet.Session
}

// Registry keeps editing sessions between requests. Unsaved ledger changes
// live here until the day is saved.
type Registry struct {
	store fleet.Persistence

	mu    sync.Mutex
	users map[string]*userSessions
}

// NewRegistry creates an empty registry over store.
func NewRegistry(store fleet.Persistence) *Registry {
	return &Registry{
		store: store,
		users: make(map[string]*userSessions),
	}
}

func (r *Registry) user(name string) *userSessions {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[name]
	if !ok {
		u = &userSessions{byDate: make(map[string]*fleet.Session)}
		r.users[name] = u
	}

	return u
}

func (u *userSessions) open(ctx context.Context, store fleet.Persistence, user string, date time.Time) (*fleet.Session, error) {
	key := model.DateKey(date)
	if s, ok := u.byDate[key]; ok {
		return s, nil
	}

	s, err := fleet.OpenSession(ctx, store, user, date)
	if err != nil {
		return nil, err
	}

	u.byDate[key] = s

	return s, nil
}

// WithDay runs fn on the session for (user, date) while holding the user's lock.
func (r *Registry) WithDay(ctx context.Context, user string, date time.Time, fn func(*fleet.Session) error) error {
	user = model.NormalizeUser(user)
	u := r.user(user)

	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.open(ctx, r.store, user, date)
	if err != nil {
		return err
	}

	return fn(s)
}

// WithUser runs fn for an operation on user-wide data (configuration or the
// repair set). Afterwards every other open session of the user reloads the
// shared data so that all dates see the change.
func (r *Registry) WithUser(ctx context.Context, user string, fn func(*fleet.Session) error) error {
	user = model.NormalizeUser(user)
	u := r.user(user)

	u.mu.Lock()
	defer u.mu.Unlock()

	today := model.Day(time.Now())

	s, err := u.open(ctx, r.store, user, today)
	if err != nil {
		return err
	}

	fnErr := fn(s)

	for key, other := range u.byDate {
		if other == s {
			continue
		}

		if err := other.ReloadShared(ctx); err != nil {
			slog.Warn("failed to refresh session", "user", user, "date", key, "error", err)
		}
	}

	return fnErr
}

// Forget drops the session for (user, date), discarding unsaved changes.
func (r *Registry) Forget(user string, date time.Time) {
	user = model.NormalizeUser(user)
	u := r.user(user)

	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.byDate, model.DateKey(date))
}

// DayDeleter removes a stored day record.
type DayDeleter interface {
	DeleteDay(ctx context.Context, user string, date time.Time) error
}

// Reset deletes the stored day for (user, date) and drops its session. When
// the delete fails the open session is left untouched.
func (r *Registry) Reset(ctx context.Context, store DayDeleter, user string, date time.Time) error {
	user = model.NormalizeUser(user)
	u := r.user(user)

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := store.DeleteDay(ctx, user, date); err != nil {
		return &fleet.PersistenceError{Op: "delete day", Err: err}
	}

	delete(u.byDate, model.DateKey(date))

	return nil
}
