// Package authstate holds the client's belief about who is signed in.
//
// A Store moves between two states, anonymous and authenticated. It is built from whatever
// token was persisted last time, and every transition keeps the persisted token in step with
// the in-memory state: IsAuthenticated is true exactly when a token is held that was not
// expired at the last check.
package authstate

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatherguru/pkg/claims"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type Session struct {
	Token           string
	Role            claims.Role
	IsAuthenticated bool
	User            User
	Loading         bool
	Error           string
}

type Store struct {
	mu     sync.Mutex
	state  Session
	tokens Tokens
	now    func() time.Time
	logger *slog.Logger

	nextID int
	subs   map[int]func(Session)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New hydrates a store from the persisted token, if any is still usable.
func New(tokens Tokens, opts ...Option) *Store {
	s := &Store{
		tokens: tokens,
		now:    time.Now,
		logger: slog.Default(),
		subs:   make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw := tokens.Load()
	if raw == "" {
		return s
	}
	id, err := Restore(tokens, raw, s.now())
	if err != nil {
		s.logger.Info("stored session discarded", "reason", err)
		return s
	}
	s.state = Session{
		Token:           raw,
		Role:            id.Role,
		IsAuthenticated: true,
		User:            User{ID: id.ID, Name: id.Name, Email: id.Email},
	}
	return s
}

func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive the state after every transition.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and notifies subscribers once it is released. Token
// persistence happens inside fn so storage and state change together.
func (s *Store) update(fn func(*Session) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	snapshot := s.state
	subs := make([]func(Session), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub(snapshot)
		}
	}
	return changed
}

// Login stores token and marks the session authenticated. A token that is expired, malformed
// or issued for another role is refused and leaves the state untouched.
func (s *Store) Login(token string, role claims.Role, u User) error {
	id, err := Decode(token, s.now())
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if id.Role != role {
		return fmt.Errorf("login: %w: token is for role %s", ErrMalformed, id.Role)
	}
	if u.ID == "" {
		u = User{ID: id.ID, Name: id.Name, Email: id.Email}
	}

	s.update(func(st *Session) bool {
		if err := s.tokens.Save(token); err != nil {
			s.logger.Warn("token not persisted", "error", err)
		}
		*st = Session{
			Token:           token,
			Role:            role,
			IsAuthenticated: true,
			User:            u,
		}
		return true
	})
	return nil
}

// Logout clears both persisted tokens and resets every field. It reports whether the store
// was authenticated, so only the first of several concurrent calls sees true.
func (s *Store) Logout() bool {
	return s.logout(func(Session) bool { return true })
}

// LogoutIfCurrent logs out only while token is still the one held. A late 401 for a token
// that has since been replaced by a new login leaves the new session alone.
func (s *Store) LogoutIfCurrent(token string) bool {
	return s.logout(func(st Session) bool { return st.Token == token })
}

func (s *Store) logout(match func(Session) bool) bool {
	return s.update(func(st *Session) bool {
		if !match(*st) {
			return false
		}
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warn("token not cleared", "error", err)
		}
		was := st.IsAuthenticated
		*st = Session{}
		return was
	})
}

// ValidateSession re-decodes the held token and logs out if it has expired or is unreadable.
// It reports whether the session is still authenticated.
func (s *Store) ValidateSession() bool {
	st := s.Snapshot()
	if !st.IsAuthenticated {
		return false
	}
	if _, err := Decode(st.Token, s.now()); err != nil {
		s.logger.Info("session ended", "reason", err)
		s.LogoutIfCurrent(st.Token)
		return false
	}
	return true
}

// SetUser merges the non-empty fields of partial into the profile without touching auth status.
func (s *Store) SetUser(partial User) {
	s.update(func(st *Session) bool {
		if !st.IsAuthenticated {
			return false
		}
		if partial.Name != "" {
			st.User.Name = partial.Name
		}
		if partial.Email != "" {
			st.User.Email = partial.Email
		}
		if partial.ProfileImage != "" {
			st.User.ProfileImage = partial.ProfileImage
		}
		return true
	})
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(st *Session) bool {
		st.Loading = loading
		return true
	})
}

func (s *Store) SetError(err error) {
	s.update(func(st *Session) bool {
		st.Error = ""
		if err != nil {
			st.Error = err.Error()
		}
		return true
	})
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired)
}
