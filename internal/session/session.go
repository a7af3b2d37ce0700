// Package session keeps per-client report context between requests so a
// dashboard client can set the property, URL set and period selection once and
// omit them on follow-up calls. Sessions live in memory only and expire after
// a configurable idle TTL.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultTTL is used when the configured TTL is missing or nonsensical.
const defaultTTL = 30 * time.Minute

// SessionNotFoundError represents an error when a session is absent or expired
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// NewSessionNotFoundError creates a new SessionNotFoundError
func NewSessionNotFoundError(id string) *SessionNotFoundError {
	return &SessionNotFoundError{ID: id}
}

// TimeProvider abstracts the clock so expiry can be tested deterministically
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider is the default implementation that uses the system clock
type DefaultTimeProvider struct{}

// Now returns the current time
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Session is the report context one dashboard client accumulates.
type Session struct {
	ID          string    `json:"id"`
	Property    string    `json:"property,omitempty"`
	URLs        []string  `json:"urls,omitempty"`
	Selector    string    `json:"period,omitempty"`
	PeriodCount int       `json:"periods,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (s *Session) clone() *Session {
	c := *s
	c.URLs = append([]string(nil), s.URLs...)
	return &c
}

// Registry holds the live sessions. All access goes through the mutex; the
// structs handed out are copies, so callers never share memory with the map.
type Registry struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	ttl          time.Duration
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewRegistry creates a session registry with the given idle TTL.
func NewRegistry(ttl time.Duration, logger *slog.Logger, timeProvider ...TimeProvider) *Registry {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}

	return &Registry{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		timeProvider: provider,
		logger:       logger,
	}
}

// Create registers a new empty session and returns it.
func (r *Registry) Create() *Session {
	now := r.timeProvider.Now()
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastSeenAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Debug("Session created", slog.String("session_id", s.ID))
	return s.clone()
}

// Get returns the session with the given id and refreshes its idle timer.
// Absent and expired sessions both report SessionNotFoundError; an expired
// session is removed on the spot rather than waiting for the sweeper.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	s.LastSeenAt = r.timeProvider.Now()
	return s.clone(), nil
}

// Update applies fn to the session with the given id under the registry lock
// and returns the updated copy.
func (r *Registry) Update(id string, fn func(*Session)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	fn(s)
	s.LastSeenAt = r.timeProvider.Now()
	return s.clone(), nil
}

// Sweep removes every expired session and returns how many were pruned.
func (r *Registry) Sweep() int {
	now := r.timeProvider.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeenAt) > r.ttl {
			delete(r.sessions, id)
			pruned++
		}
	}

	if pruned > 0 {
		r.logger.Info("Swept expired sessions", slog.Int("pruned", pruned), slog.Int("remaining", len(r.sessions)))
	}
	return pruned
}

// Count returns the number of live sessions, expired ones included until the
// next sweep touches them.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// lookup finds a live session by id. Callers must hold the mutex.
func (r *Registry) lookup(id string) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, NewSessionNotFoundError(id)
	}
	if r.timeProvider.Now().Sub(s.LastSeenAt) > r.ttl {
		delete(r.sessions, id)
		return nil, NewSessionNotFoundError(id)
	}
	return s, nil
}
