package calendar

import (
	"context"
	"sync"

	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/grid"
	"github.com/rpggio/groupmeet/internal/domain/paint"
)

// Update is what the interaction surface re-renders after an event.
type Update struct {
	State   paint.State         `json:"state"`
	Changed []int               `json:"changed"`
	Vector  availability.Vector `json:"vector"`
	Saved   bool                `json:"saved"`
	Dirty   bool                `json:"dirty"`
}

// Session is one user's editing state for one calendar.
type Session struct {
	mu       sync.Mutex
	svc      *Service
	key      string
	userID   string
	machine  *paint.Machine
	clock    versionClock
	inflight int
	dirty    bool
}

// OpenSession loads (or initializes) the calendar and prepares the user's
// editing state. An anonymous user gets a read-only session.
func (s *Service) OpenSession(ctx context.Context, key, userID string) (*Session, error) {
	ds, err := s.LoadOrInit(ctx, key, userID)
	if err != nil {
		return nil, err
	}
	sess := &Session{svc: s, key: key, userID: userID}
	if userID != "" {
		sess.machine = paint.NewMachine(ds.Record(userID, s.cfg.Grid.SlotCount(), s.cfg.Policy))
	}
	return sess, nil
}

// Key returns the dataset key.
func (s *Session) Key() string { return s.key }

// UserID returns the editing user, empty for anonymous viewers.
func (s *Session) UserID() string { return s.userID }

// Grid returns the session's grid.
func (s *Session) Grid() grid.Grid { return s.svc.cfg.Grid }

// ReadOnly reports whether the session cannot edit.
func (s *Session) ReadOnly() bool { return s.machine == nil }

// Dirty reports whether in-memory edits are not known to be stored.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// State returns the stroke state; read-only sessions are always idle.
func (s *Session) State() paint.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return paint.Idle
	}
	return s.machine.State()
}

// Vector returns the current in-memory vector, nil for read-only sessions.
func (s *Session) Vector() availability.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return nil
	}
	return s.machine.Vector()
}

// PointerDown starts a stroke at cell.
func (s *Session) PointerDown(cell int) (Update, error) {
	return s.edit(cell, (*paint.Machine).PointerDown)
}

// PointerOver extends the stroke over cell.
func (s *Session) PointerOver(cell int) (Update, error) {
	return s.edit(cell, (*paint.Machine).PointerOver)
}

func (s *Session) edit(cell int, apply func(*paint.Machine, int) (bool, error)) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return Update{}, ErrUnauthenticated
	}
	changed, err := apply(s.machine, cell)
	if err != nil {
		return Update{}, err
	}
	if changed {
		// Loads issued before this edit must not replace it.
		s.clock.issue()
	}
	update := s.updateLocked()
	if changed {
		update.Changed = []int{cell}
	}
	return update, nil
}

// PointerUp ends the stroke and persists the full vector once. On storage
// failure the edit stays in memory, the session is marked dirty and the
// error is returned.
func (s *Session) PointerUp(ctx context.Context) (Update, error) {
	s.mu.Lock()
	if s.machine == nil {
		s.mu.Unlock()
		return Update{}, ErrUnauthenticated
	}
	commit, ok := s.machine.PointerUp()
	if !ok {
		update := s.updateLocked()
		s.mu.Unlock()
		return update, nil
	}
	tok := s.beginSaveLocked()
	s.svc.metrics.ObserveStroke(len(commit.Stroke))
	s.mu.Unlock()

	err := s.persist(ctx, tok, commit.Vector)

	s.mu.Lock()
	defer s.mu.Unlock()
	update := s.updateLocked()
	update.Changed = commit.Stroke
	update.Saved = err == nil
	return update, err
}

// Flush rewrites the current vector if an earlier save did not land.
func (s *Session) Flush(ctx context.Context) (Update, error) {
	s.mu.Lock()
	if s.machine == nil {
		s.mu.Unlock()
		return Update{}, ErrUnauthenticated
	}
	if !s.dirty || s.machine.State() != paint.Idle {
		update := s.updateLocked()
		s.mu.Unlock()
		return update, nil
	}
	v := s.machine.Vector()
	tok := s.beginSaveLocked()
	s.mu.Unlock()

	err := s.persist(ctx, tok, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	update := s.updateLocked()
	update.Saved = err == nil
	return update, err
}

// Refresh reloads the user's stored vector. The result is dropped if a save
// is still in flight, local edits are unsaved, or a newer operation was issued
// while loading, so stale data never replaces fresher in-memory state.
func (s *Session) Refresh(ctx context.Context) (Update, error) {
	s.mu.Lock()
	tok := s.clock.issue()
	s.mu.Unlock()

	ds, err := s.svc.LoadOrInit(ctx, s.key, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.updateLocked(), err
	}
	if s.machine == nil {
		s.clock.complete(tok)
		return s.updateLocked(), nil
	}
	if !s.clock.newest(tok) || s.inflight > 0 || s.dirty || !s.clock.complete(tok) {
		s.svc.metrics.ObserveStale("load")
		s.svc.logger.Debug("discarding stale load", "dataset", s.key, "user", s.userID, "version", tok)
		return s.updateLocked(), nil
	}
	s.machine.Reset(ds.Record(s.userID, s.svc.cfg.Grid.SlotCount(), s.svc.cfg.Policy))
	return s.updateLocked(), nil
}

// beginSaveLocked registers a save of the vector just snapshotted. Call with
// s.mu held, in the same critical section as the snapshot.
func (s *Session) beginSaveLocked() uint64 {
	s.inflight++
	return s.clock.issue()
}

func (s *Session) persist(ctx context.Context, tok uint64, v availability.Vector) error {
	err := s.svc.Save(ctx, s.key, s.userID, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if !s.clock.complete(tok) {
		// A newer save already landed; a late success may have overwritten it.
		s.svc.metrics.ObserveStale("save")
		s.svc.logger.Debug("stale save completion", "dataset", s.key, "user", s.userID, "version", tok)
		if err == nil {
			s.dirty = true
		}
		return err
	}
	if err != nil {
		s.dirty = true
		return err
	}
	if s.clock.newest(tok) {
		s.dirty = false
	}
	return nil
}

func (s *Session) updateLocked() Update {
	if s.machine == nil {
		return Update{}
	}
	return Update{
		State:  s.machine.State(),
		Vector: s.machine.Vector(),
		Dirty:  s.dirty,
	}
}
