// Package memory provides the in-process onboarding session store
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
)

// SessionRepository keeps sessions in a map. Stored sessions are copies so
// callers cannot mutate them without Save.
type SessionRepository struct {
	sessions map[string]onboarding.Session
	ttl      time.Duration
	now      func() time.Time
	mutex    sync.RWMutex
}

var _ outbound.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a store whose sessions expire after ttl of
// inactivity. A zero ttl keeps sessions forever.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]onboarding.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save stores a copy of the session
func (r *SessionRepository) Save(ctx context.Context, session *onboarding.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *session
	stored.Draft.Restrictions = append(stored.Draft.Restrictions[:0:0], session.Draft.Restrictions...)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[session.ID] = stored
	return nil
}

// Find returns a copy of the session
func (r *SessionRepository) Find(ctx context.Context, id string) (*onboarding.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	stored, ok := r.sessions[id]
	r.mutex.RUnlock()

	if !ok || stored.Expired(r.ttl, r.now()) {
		return nil, onboarding.ErrSessionNotFound
	}
	return &stored, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed
func (r *SessionRepository) Sweep() int {
	now := r.now()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.Expired(r.ttl, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done
func (r *SessionRepository) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of stored sessions, expired ones included
func (r *SessionRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
