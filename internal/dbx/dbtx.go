// Package dbx provides the small DB plumbing shared by repositories:
// a minimal query interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a transactional Session handle, and a SessionContext that scopes exactly
// one Session to one unit of work carried on a context.Context.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is the handle one unit of work holds on the database. It is
// released by exactly one Commit or Rollback. *sql.Tx satisfies it.
type Session interface {
	DBTX
	Commit() error
	Rollback() error
}

// Factory produces a fresh Session on demand.
type Factory func(ctx context.Context) (Session, error)

// NewFactory returns a Factory that begins a transaction on the shared pool.
func NewFactory(db *sql.DB) Factory {
	return func(ctx context.Context) (Session, error) {
		return db.BeginTx(ctx, nil)
	}
}

// ErrNoScope is returned by GetSession when the context carries no unit of
// work; callers must enter one via Begin or RunInTransaction first.
var ErrNoScope = errors.New("dbx: no active unit of work")

type scopeKey struct{}

// scope is the per-unit-of-work cell holding the lazily created session.
// The mutex guards against a handler spawning helpers that race on first use.
type scope struct {
	mu      sync.Mutex
	session Session
}

func scopeFrom(ctx context.Context) (*scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	return s, ok
}

// SessionContext owns session lifecycles: it hands every component inside
// one unit of work the same Session and guarantees release at scope exit.
// Scopes live on context.Context, so concurrent units of work are isolated
// by construction and no global mutable state is involved.
type SessionContext struct {
	factory Factory
}

func NewSessionContext(factory Factory) *SessionContext {
	return &SessionContext{factory: factory}
}

// Begin attaches a fresh, empty scope to ctx. The returned context must be
// used for every call belonging to this unit of work.
func (sc *SessionContext) Begin(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &scope{})
}

// GetSession returns the current unit of work's session, creating one via
// the factory on first use. Repeated calls within the same scope return the
// same handle; the factory runs at most once per scope.
func (sc *SessionContext) GetSession(ctx context.Context) (Session, error) {
	s, ok := scopeFrom(ctx)
	if !ok {
		return nil, ErrNoScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		session, err := sc.factory(ctx)
		if err != nil {
			return nil, err
		}
		s.session = session
	}
	return s.session, nil
}

// Current returns the session already stored in the scope, without creating
// one.
func (sc *SessionContext) Current(ctx context.Context) (Session, bool) {
	s, ok := scopeFrom(ctx)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.session != nil
}

// Reset detaches the stored handle so a later unit of work cannot observe a
// stale session. It does not release the handle.
func (sc *SessionContext) Reset(ctx context.Context) {
	if s, ok := scopeFrom(ctx); ok {
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
	}
}

// RunInTransaction runs fn inside a unit of work. If ctx already carries a
// scope this is a nested call: fn runs against the existing scope and the
// outer caller keeps ownership of commit/rollback/release. Otherwise a new
// scope is attached and on exit the session (if fn ever created one) is
// always detached and released: rolled back when fn returned an error or
// panicked, committed otherwise. Panics are rethrown.
//
// Typical use:
//
//	err := sessions.RunInTransaction(ctx, func(ctx context.Context) error {
//	    return store.Save(ctx, ...)
//	})
func (sc *SessionContext) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := scopeFrom(ctx); ok {
		return fn(ctx)
	}

	ctx = sc.Begin(ctx)

	defer func() {
		session, ok := sc.Current(ctx)
		sc.Reset(ctx)
		if p := recover(); p != nil {
			if ok {
				_ = session.Rollback()
			}
			panic(p)
		}
		if !ok {
			return
		}
		if err != nil {
			_ = session.Rollback()
			return
		}
		err = session.Commit()
	}()

	err = fn(ctx)
	return err
}
