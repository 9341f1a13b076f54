package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/rpggio/groupmeet/internal/domain/paint"
)

// DefaultIdleTimeout is how long an unused session is retained.
const DefaultIdleTimeout = 30 * time.Minute

type sessionKey struct {
	dataset string
	user    string
	client  string
}

type registryEntry struct {
	sess     *Session
	lastUsed time.Time
}

// Registry keeps one editing session per calendar, user and client instance
// so that pointer events arriving as separate requests share stroke state.
// Two open tabs of the same user get separate sessions. Sessions unused for
// the idle timeout are evicted, after their unsaved edits are stored.
type Registry struct {
	svc         *Service
	idleTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	sessions  map[sessionKey]*registryEntry
	lastSweep time.Time
}

// NewRegistry creates an empty registry over svc. A non-positive idleTimeout
// selects DefaultIdleTimeout.
func NewRegistry(svc *Service, idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		svc:         svc,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    map[sessionKey]*registryEntry{},
	}
}

// Service returns the underlying calendar service.
func (r *Registry) Service() *Service {
	return r.svc
}

// Open returns the user's session for key, opening it on first use.
// Anonymous viewers get a fresh read-only session that is not retained.
func (r *Registry) Open(ctx context.Context, key, userID, clientID string) (*Session, error) {
	r.mu.Lock()
	due := r.now().Sub(r.lastSweep) >= r.idleTimeout/4
	r.mu.Unlock()
	if due {
		r.Sweep(ctx)
	}

	if userID == "" {
		return r.svc.OpenSession(ctx, key, userID)
	}

	k := sessionKey{dataset: key, user: userID, client: clientID}
	r.mu.Lock()
	if e, ok := r.sessions[k]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.sess, nil
	}
	r.mu.Unlock()

	sess, err := r.svc.OpenSession(ctx, key, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[k]; ok {
		e.lastUsed = r.now()
		return e.sess, nil
	}
	r.sessions[k] = &registryEntry{sess: sess, lastUsed: r.now()}
	return sess, nil
}

// Close drops the session and reports whether one was open.
func (r *Registry) Close(key, userID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := sessionKey{dataset: key, user: userID, client: clientID}
	_, ok := r.sessions[k]
	delete(r.sessions, k)
	return ok
}

// Len returns the number of retained sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns how
// many were dropped. An abandoned stroke is committed and unsaved edits are
// flushed first; a session whose edits cannot be stored is kept for the next
// sweep.
func (r *Registry) Sweep(ctx context.Context) int {
	type candidate struct {
		key   sessionKey
		entry *registryEntry
		seen  time.Time
	}

	r.mu.Lock()
	now := r.now()
	r.lastSweep = now
	var idle []candidate
	for k, e := range r.sessions {
		if now.Sub(e.lastUsed) >= r.idleTimeout {
			idle = append(idle, candidate{key: k, entry: e, seen: e.lastUsed})
		}
	}
	r.mu.Unlock()

	evicted := 0
	for _, c := range idle {
		if !r.retire(ctx, c.entry.sess) {
			continue
		}
		r.mu.Lock()
		if e, ok := r.sessions[c.key]; ok && e == c.entry && e.lastUsed.Equal(c.seen) {
			delete(r.sessions, c.key)
			evicted++
		}
		r.mu.Unlock()
	}
	if evicted > 0 {
		r.svc.logger.Debug("evicted idle sessions", "count", evicted)
	}
	return evicted
}

// retire stores whatever the session still holds and reports whether it is
// safe to drop.
func (r *Registry) retire(ctx context.Context, sess *Session) bool {
	if sess.State() != paint.Idle {
		if _, err := sess.PointerUp(ctx); err != nil {
			r.svc.logger.Warn("idle session stroke not saved; keeping session",
				"dataset", sess.Key(), "user", sess.UserID(), "error", err)
			return false
		}
	}
	if sess.Dirty() {
		if _, err := sess.Flush(ctx); err != nil {
			r.svc.logger.Warn("idle session flush failed; keeping session",
				"dataset", sess.Key(), "user", sess.UserID(), "error", err)
			return false
		}
	}
	return !sess.Dirty()
}
