package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edwarnicke/genericsync"

	"github.com/matzehuels/topoviz/pkg/selection"
)

// Registry is an in-memory session table with sliding expiry.
type Registry struct {
	sessions genericsync.Map[string, *Session]
	ttl      time.Duration
	now      func() time.Time

	// mu serializes deadline updates against cleanup.
	mu sync.Mutex
}

// NewRegistry creates a registry. A non-positive ttl uses [DefaultTTL].
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{ttl: ttl, now: time.Now}
}

// TTL returns the idle lifetime of sessions.
func (r *Registry) TTL() time.Duration { return r.ttl }

// Create registers a new session for controller.
func (r *Registry) Create(collection string, controller *selection.Controller) (*Session, error) {
	if controller == nil {
		return nil, fmt.Errorf("create session: nil controller")
	}
	id, err := GenerateID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	now := r.now()
	sess := &Session{
		ID:         id,
		Collection: collection,
		Controller: controller,
		CreatedAt:  now,
		ExpiresAt:  now.Add(r.ttl),
	}
	if _, loaded := r.sessions.LoadOrStore(id, sess); loaded {
		return nil, fmt.Errorf("session id collision")
	}
	return sess, nil
}

// Get returns a live session and extends its deadline. An expired session
// is removed and reported as [ErrExpired].
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if sess.IsExpired(now) {
		r.sessions.Delete(id)
		return nil, ErrExpired
	}
	sess.ExpiresAt = now.Add(r.ttl)
	return sess, nil
}

// Delete removes a session. Deleting an unknown id reports [ErrNotFound].
func (r *Registry) Delete(id string) error {
	if _, ok := r.sessions.LoadAndDelete(id); !ok {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of registered sessions, expired ones included.
func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(string, *Session) bool {
		n++
		return true
	})
	return n
}

// Cleanup removes expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	r.sessions.Range(func(id string, sess *Session) bool {
		if sess.IsExpired(now) {
			r.sessions.Delete(id)
			removed++
		}
		return true
	})
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}
