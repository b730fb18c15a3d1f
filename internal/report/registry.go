package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/metrics"
)

// MaxSessionsPerOwner bounds the open sessions of one user. Opening another
// closes that user's least recently used session.
const MaxSessionsPerOwner = 5

// maxSweepInterval bounds how often Open and Get scan for expired sessions.
const maxSweepInterval = time.Minute

// Registry holds the open report sessions of all users.
//
// Sessions idle for longer than the TTL are closed and forgotten. Expired
// sessions are found by a full scan at most once per sweep interval; Get
// also checks the requested session on its own, so expiry never depends on
// when the last scan ran.
type Registry struct {
	parent    context.Context
	submitter Submitter
	ttl       time.Duration
	now       func() time.Time

	mu        sync.Mutex
	sessions  map[uuid.UUID]*entry
	byOwner   map[int]map[uuid.UUID]*entry
	lastSweep time.Time
}

type entry struct {
	session *Session
	touched time.Time
}

// NewRegistry creates a Registry. Sessions are children of parent, so
// cancelling parent cancels every in-flight submission.
func NewRegistry(parent context.Context, s Submitter, ttl time.Duration) *Registry {
	return &Registry{
		parent:    parent,
		submitter: s,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*entry),
		byOwner:   make(map[int]map[uuid.UUID]*entry),
	}
}

// SetClock overrides the registry's time source.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Open starts a session for target on behalf of reporter.
//
// A reporter has at most one session per resolvable target: an earlier
// session for the same subject is closed. Beyond MaxSessionsPerOwner the
// reporter's least recently used session is closed as well.
func (r *Registry) Open(target domain.ReportTarget, reporter domain.User) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.maybeSweepLocked(now)

	owned := r.byOwner[reporter.ID]
	if key, ok := targetKey(target); ok {
		for _, e := range owned {
			if k, ok := targetKey(e.session.Target()); ok && k == key {
				r.removeLocked(e)
			}
		}
	}
	for len(r.byOwner[reporter.ID]) >= MaxSessionsPerOwner {
		r.removeLocked(oldest(r.byOwner[reporter.ID]))
	}

	s := NewSession(r.parent, uuid.New(), target, reporter, r.submitter)
	e := &entry{session: s, touched: now}
	r.sessions[s.ID()] = e
	if r.byOwner[reporter.ID] == nil {
		r.byOwner[reporter.ID] = make(map[uuid.UUID]*entry)
	}
	r.byOwner[reporter.ID][s.ID()] = e
	r.publishLocked()
	return s
}

// Get returns the session with the given id if it belongs to ownerID.
// Sessions of other users are reported as not found.
func (r *Registry) Get(id uuid.UUID, ownerID int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.maybeSweepLocked(now)

	e, ok := r.sessions[id]
	if !ok || e.session.Reporter().ID != ownerID {
		return nil, fmt.Errorf("report.Registry.Get: %w", domain.ErrNotFound)
	}
	if r.expired(e, now) {
		r.removeLocked(e)
		r.publishLocked()
		return nil, fmt.Errorf("report.Registry.Get: %w", domain.ErrNotFound)
	}
	e.touched = now
	return e.session, nil
}

// Close closes and forgets the session with the given id.
func (r *Registry) Close(id uuid.UUID, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || e.session.Reporter().ID != ownerID {
		return fmt.Errorf("report.Registry.Close: %w", domain.ErrNotFound)
	}
	r.removeLocked(e)
	r.publishLocked()
	return nil
}

// CloseAll closes every session. Used on server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.sessions {
		r.removeLocked(e)
	}
	r.publishLocked()
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// LenOwner returns the number of open sessions of one user.
func (r *Registry) LenOwner(ownerID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOwner[ownerID])
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.touched) > r.ttl
}

func (r *Registry) maybeSweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < min(r.ttl, maxSweepInterval) {
		return
	}
	r.lastSweep = now
	for _, e := range r.sessions {
		if r.expired(e, now) {
			r.removeLocked(e)
		}
	}
	r.publishLocked()
}

func (r *Registry) removeLocked(e *entry) {
	e.session.Close()
	id := e.session.ID()
	owner := e.session.Reporter().ID
	delete(r.sessions, id)
	delete(r.byOwner[owner], id)
	if len(r.byOwner[owner]) == 0 {
		delete(r.byOwner, owner)
	}
}

func (r *Registry) publishLocked() {
	metrics.SetOpenReportSessions(len(r.sessions))
}

func oldest(owned map[uuid.UUID]*entry) *entry {
	var out *entry
	for _, e := range owned {
		if out == nil || e.touched.Before(out.touched) {
			out = e
		}
	}
	return out
}

// targetKey identifies the subject of a report. ok is false when the
// target does not resolve to an id.
func targetKey(t domain.ReportTarget) (string, bool) {
	id, ok := ResolveReportableID(t.Type, t.Data)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s:%d", t.Type, id), true
}
