package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// LoginLimiter blocks a client address after too many login attempts within a window.
type LoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptInfo
	maxAttempts int
	window      time.Duration
	blockTime   time.Duration
	now         func() time.Time
}

type attemptInfo struct {
	count     int
	firstTry  time.Time
	blockedAt time.Time
}

func NewLoginLimiter(maxAttempts int, window, blockTime time.Duration) *LoginLimiter {
	return &LoginLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: maxAttempts,
		window:      window,
		blockTime:   blockTime,
		now:         time.Now,
	}
}

// DefaultLoginLimiter allows 5 attempts per 15 minutes, then blocks for 15 minutes.
func DefaultLoginLimiter() *LoginLimiter {
	return NewLoginLimiter(5, 15*time.Minute, 15*time.Minute)
}

func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	info, ok := l.attempts[key]
	if !ok {
		l.attempts[key] = &attemptInfo{count: 1, firstTry: now}
		return true
	}

	if !info.blockedAt.IsZero() {
		if now.Sub(info.blockedAt) < l.blockTime {
			return false
		}
		*info = attemptInfo{count: 1, firstTry: now}
		return true
	}

	if now.Sub(info.firstTry) > l.window {
		*info = attemptInfo{count: 1, firstTry: now}
		return true
	}

	info.count++
	if info.count > l.maxAttempts {
		info.blockedAt = now
		return false
	}
	return true
}

func (l *LoginLimiter) prune(now time.Time) {
	for k, info := range l.attempts {
		expired := now.Sub(info.firstTry) > l.window
		if !info.blockedAt.IsZero() {
			expired = now.Sub(info.blockedAt) >= l.blockTime
		}
		if expired {
			delete(l.attempts, k)
		}
	}
}

func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.blockTime.Seconds())))
			deny(w, http.StatusTooManyRequests, envelope{Message: "too many login attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
