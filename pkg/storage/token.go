package storage

import (
	"errors"
	"time"
)

const (
	TokenKey  = "token"
	CookieTTL = 7 * 24 * time.Hour
)

// TokenStore writes the bearer token to both local storage and the token cookie.
type TokenStore struct {
	Local   *LocalStore
	Cookies *CookieStore
}

func NewTokenStore(local *LocalStore, cookies *CookieStore) *TokenStore {
	return &TokenStore{Local: local, Cookies: cookies}
}

// NewMemoryTokenStore keeps the token only for the life of the process.
func NewMemoryTokenStore() *TokenStore {
	local, _ := NewLocalStore("")
	cookies, _ := NewCookieStore("")
	return NewTokenStore(local, cookies)
}

func (t *TokenStore) Save(token string) error {
	return errors.Join(
		t.Local.Set(TokenKey, token),
		t.Cookies.Set(TokenKey, token, CookieTTL),
	)
}

// Load prefers local storage and falls back to the cookie.
func (t *TokenStore) Load() string {
	if v, ok := t.Local.Get(TokenKey); ok && v != "" {
		return v
	}
	v, _ := t.Cookies.Get(TokenKey)
	return v
}

func (t *TokenStore) Clear() error {
	return errors.Join(
		t.Local.Remove(TokenKey),
		t.Cookies.Remove(TokenKey),
	)
}
