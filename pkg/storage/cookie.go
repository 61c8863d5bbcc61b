package storage

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

type cookieRecord struct {
	Value    string    `json:"value"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	SameSite string    `json:"sameSite"`
}

// CookieStore keeps named cookies with their expiry; an expired cookie reads as absent.
type CookieStore struct {
	mu      sync.Mutex
	path    string
	cookies map[string]cookieRecord
	now     func() time.Time
}

func NewCookieStore(path string) (*CookieStore, error) {
	s := &CookieStore{path: path, cookies: make(map[string]cookieRecord), now: time.Now}
	if path == "" {
		return s, nil
	}
	if err := readJSON(path, &s.cookies); err != nil {
		return nil, fmt.Errorf("load cookie store: %w", err)
	}
	if s.cookies == nil {
		s.cookies = make(map[string]cookieRecord)
	}
	return s, nil
}

// Set stores a Secure, SameSite=Strict cookie living for ttl.
func (s *CookieStore) Set(name, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[name] = cookieRecord{
		Value:    value,
		Expires:  s.now().Add(ttl).UTC(),
		Secure:   true,
		SameSite: "Strict",
	}
	return s.flush()
}

func (s *CookieStore) Get(name string) (string, bool) {
	c := s.Cookie(name)
	if c == nil {
		return "", false
	}
	return c.Value, true
}

// Cookie returns the stored cookie as it would be sent by a browser, or nil if absent or expired.
func (s *CookieStore) Cookie(name string) *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.cookies[name]
	if !ok || !rec.Expires.After(s.now()) {
		return nil
	}
	c := &http.Cookie{
		Name:    name,
		Value:   rec.Value,
		Path:    "/",
		Expires: rec.Expires,
		Secure:  rec.Secure,
	}
	if rec.SameSite == "Strict" {
		c.SameSite = http.SameSiteStrictMode
	}
	return c
}

func (s *CookieStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cookies[name]; !ok {
		return nil
	}
	delete(s.cookies, name)
	return s.flush()
}

func (s *CookieStore) flush() error {
	if s.path == "" {
		return nil
	}
	return writeJSON(s.path, s.cookies)
}
