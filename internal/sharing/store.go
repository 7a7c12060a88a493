package sharing

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

const (
	maxDurationHours = 24
	tokenBytes       = 16
)

var (
	ErrInvalidDuration = errors.New("duration must be between 1 and 24 hours")
	ErrSessionNotFound = errors.New("tracking session not found")
	ErrSessionExpired  = errors.New("tracking session has expired")
	ErrNotOwner        = errors.New("tracking session belongs to another user")
)

// Store holds live tracking sessions keyed by token. All operations are safe
// for concurrent use; expiry is checked lazily on access, so correctness does
// not depend on the background sweeper.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: map[string]Session{},
		now:      time.Now,
	}
}

// Create registers a new session for ownerID lasting durationHours and
// returns it with a freshly generated unguessable token.
func (s *Store) Create(ownerID string, durationHours int) (Session, error) {
	if durationHours <= 0 || durationHours > maxDurationHours {
		return Session{}, ErrInvalidDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.newTokenLocked()
	if err != nil {
		return Session{}, err
	}

	createdAt := s.now()
	session := Session{
		Token:     token,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(time.Duration(durationHours) * time.Hour),
	}
	s.sessions[token] = session
	return session, nil
}

// Get returns the session for token. An expired session is evicted and
// reported as ErrSessionExpired once; later lookups see ErrSessionNotFound.
func (s *Store) Get(token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Stop removes the session for token if callerID owns it.
func (s *Store) Stop(token, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return ErrSessionExpired
	}
	if session.OwnerID != callerID {
		return ErrNotOwner
	}
	delete(s.sessions, token)
	return nil
}

// ListActive returns all non-expired sessions owned by ownerID without
// mutating the store.
func (s *Store) ListActive(ownerID string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var active []Session
	for _, session := range s.sessions {
		if session.OwnerID == ownerID && session.ExpiresAt.After(now) {
			active = append(active, session)
		}
	}
	return active
}

// Sweep removes all expired sessions and reports how many were evicted.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			evicted++
		}
	}
	return evicted
}

// RunSweeper periodically evicts expired sessions until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// newTokenLocked generates a URL-safe random token, regenerating on the
// unlikely collision with a live session. Caller must hold s.mu.
func (s *Store) newTokenLocked() (string, error) {
	for {
		buf := make([]byte, tokenBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		token := base64.RawURLEncoding.EncodeToString(buf)
		if _, exists := s.sessions[token]; !exists {
			return token, nil
		}
	}
}
