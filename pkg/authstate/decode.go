package authstate

import (
	"errors"
	"time"

	jwt "github.com/dgrijalva/jwt-go"

	"gatherguru/pkg/claims"
)

var (
	ErrNoToken   = errors.New("no token")
	ErrMalformed = errors.New("malformed token")
	ErrExpired   = errors.New("token expired")
)

// Identity is what a token claims about its holder. It is read without checking the
// signature and only drives what the client shows; the API re-checks every request.
type Identity struct {
	ID        string
	Role      claims.Role
	Name      string
	Email     string
	ExpiresAt time.Time
}

var parser = &jwt.Parser{}

// Decode reads the payload of raw. A token whose exp lies before now is ErrExpired;
// a token with no exp, no user id or an unknown role is ErrMalformed.
func Decode(raw string, now time.Time) (*Identity, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	c := &claims.Claims{}
	if _, _, err := parser.ParseUnverified(raw, c); err != nil {
		return nil, ErrMalformed
	}
	if c.User.ID == "" || !c.User.Role.Valid() || c.ExpiresAt == 0 {
		return nil, ErrMalformed
	}
	if c.ExpiresAt*1000 < now.UnixMilli() {
		return nil, ErrExpired
	}

	return &Identity{
		ID:        c.User.ID,
		Role:      c.User.Role,
		Name:      c.User.Name,
		Email:     c.User.Email,
		ExpiresAt: time.Unix(c.ExpiresAt, 0),
	}, nil
}

// Tokens is where the client keeps its bearer token between runs.
type Tokens interface {
	Save(token string) error
	Load() string
	Clear() error
}

// Restore decodes raw and, when it is expired or malformed, wipes the persisted token.
func Restore(tokens Tokens, raw string, now time.Time) (*Identity, error) {
	id, err := Decode(raw, now)
	if err != nil {
		if clearErr := tokens.Clear(); clearErr != nil {
			return nil, errors.Join(err, clearErr)
		}
		return nil, err
	}
	return id, nil
}

// FromToken builds a read-only session for a token presented by someone else, such as the
// cookie on a page request. Nothing is persisted.
func FromToken(raw string, now time.Time) (Session, error) {
	id, err := Decode(raw, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:           raw,
		Role:            id.Role,
		IsAuthenticated: true,
		User:            User{ID: id.ID, Name: id.Name, Email: id.Email},
	}, nil
}
