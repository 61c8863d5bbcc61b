package authstate_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherguru/pkg/authstate"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/storage"
)

var now = time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func issue(t *testing.T, id string, role claims.Role, issuedAt time.Time) string {
	t.Helper()
	token, err := claims.NewToken(claims.UserClaims{ID: id, Role: role, Name: "Ada", Email: "ada@example.com"}, []byte("any"), issuedAt)
	require.NoError(t, err)
	return token
}

func assertCleared(t *testing.T, tokens *storage.TokenStore) {
	t.Helper()
	_, ok := tokens.Local.Get(storage.TokenKey)
	assert.False(t, ok, "local token")
	_, ok = tokens.Cookies.Get(storage.TokenKey)
	assert.False(t, ok, "cookie token")
}

func TestDecode(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.Claims{
		User: claims.UserClaims{ID: "u1", Role: claims.RoleUser},
	}).SignedString([]byte("any"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{name: "empty", token: "", err: authstate.ErrNoToken},
		{name: "garbage", token: "not.a.jwt", err: authstate.ErrMalformed},
		{name: "missing exp", token: noExp, err: authstate.ErrMalformed},
		{name: "expired", token: issue(t, "u1", claims.RoleUser, now.Add(-claims.TokenTTL-time.Second)), err: authstate.ErrExpired},
		{name: "valid", token: issue(t, "u1", claims.RoleOrganizer, now)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := authstate.Decode(tt.token, now)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", id.ID)
			assert.Equal(t, claims.RoleOrganizer, id.Role)
			assert.Equal(t, "Ada", id.Name)
			assert.Equal(t, now.Add(claims.TokenTTL).Unix(), id.ExpiresAt.Unix())
		})
	}
}

func TestHydrate(t *testing.T) {
	t.Run("valid token from cookie", func(t *testing.T) {
		tokens := storage.NewMemoryTokenStore()
		token := issue(t, "u1", claims.RoleUser, now)
		require.NoError(t, tokens.Cookies.Set(storage.TokenKey, token, storage.CookieTTL))

		s := authstate.New(tokens, authstate.WithClock(clock)).Snapshot()
		assert.True(t, s.IsAuthenticated)
		assert.Equal(t, claims.RoleUser, s.Role)
		assert.Equal(t, "u1", s.User.ID)
		assert.Equal(t, token, s.Token)
	})

	t.Run("expired token is wiped", func(t *testing.T) {
		tokens := storage.NewMemoryTokenStore()
		require.NoError(t, tokens.Save(issue(t, "u1", claims.RoleUser, now.Add(-30*24*time.Hour))))

		s := authstate.New(tokens, authstate.WithClock(clock)).Snapshot()
		assert.False(t, s.IsAuthenticated)
		assert.Empty(t, s.Token)
		assertCleared(t, tokens)
	})

	t.Run("malformed token is wiped", func(t *testing.T) {
		tokens := storage.NewMemoryTokenStore()
		require.NoError(t, tokens.Save("garbage"))

		s := authstate.New(tokens, authstate.WithClock(clock)).Snapshot()
		assert.False(t, s.IsAuthenticated)
		assertCleared(t, tokens)
	})
}

func TestLogin(t *testing.T) {
	tokens := storage.NewMemoryTokenStore()
	store := authstate.New(tokens, authstate.WithClock(clock))
	store.SetError(errors.New("previous failure"))

	token := issue(t, "o1", claims.RoleOrganizer, now)
	require.NoError(t, store.Login(token, claims.RoleOrganizer, authstate.User{ID: "o1", Name: "Org"}))

	s := store.Snapshot()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, claims.RoleOrganizer, s.Role)
	assert.Equal(t, "Org", s.User.Name)
	assert.Empty(t, s.Error)
	assert.Equal(t, token, tokens.Load())

	c := tokens.Cookies.Cookie(storage.TokenKey)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
}

func TestLoginRefusesBadTokens(t *testing.T) {
	tokens := storage.NewMemoryTokenStore()
	store := authstate.New(tokens, authstate.WithClock(clock))

	err := store.Login(issue(t, "u1", claims.RoleUser, now), claims.RoleAdmin, authstate.User{})
	assert.ErrorIs(t, err, authstate.ErrMalformed)

	err = store.Login(issue(t, "u1", claims.RoleUser, now.Add(-claims.TokenTTL-time.Minute)), claims.RoleUser, authstate.User{})
	assert.ErrorIs(t, err, authstate.ErrExpired)
	assert.True(t, authstate.IsExpired(err))

	assert.False(t, store.Snapshot().IsAuthenticated)
	assert.Empty(t, tokens.Load())
}

func TestLogoutAlwaysClears(t *testing.T) {
	t.Run("from authenticated", func(t *testing.T) {
		tokens := storage.NewMemoryTokenStore()
		store := authstate.New(tokens, authstate.WithClock(clock))
		require.NoError(t, store.Login(issue(t, "u1", claims.RoleUser, now), claims.RoleUser, authstate.User{}))

		assert.True(t, store.Logout())
		assert.Equal(t, authstate.Session{}, store.Snapshot())
		assertCleared(t, tokens)
	})

	t.Run("from anonymous with stray cookie", func(t *testing.T) {
		tokens := storage.NewMemoryTokenStore()
		store := authstate.New(tokens, authstate.WithClock(clock))
		require.NoError(t, tokens.Cookies.Set(storage.TokenKey, "stray", time.Hour))

		assert.False(t, store.Logout())
		assert.False(t, store.Snapshot().IsAuthenticated)
		assertCleared(t, tokens)
	})
}

func TestConcurrentLogoutReportsOnce(t *testing.T) {
	store := authstate.New(storage.NewMemoryTokenStore(), authstate.WithClock(clock))
	token := issue(t, "u1", claims.RoleUser, now)
	require.NoError(t, store.Login(token, claims.RoleUser, authstate.User{}))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.LogoutIfCurrent(token) {
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, count)
}

func TestStorageFollowsStateUnderRace(t *testing.T) {
	tokens := storage.NewMemoryTokenStore()
	store := authstate.New(tokens, authstate.WithClock(clock))

	issued := make([]string, 8)
	for i := range issued {
		issued[i] = issue(t, "u1", claims.RoleUser, now.Add(-time.Duration(i)*time.Minute))
	}

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for i, token := range issued {
			wg.Add(2)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Login(token, claims.RoleUser, authstate.User{}))
			}()
			go func() {
				defer wg.Done()
				if i%2 == 0 {
					store.LogoutIfCurrent(token)
				} else {
					store.Logout()
				}
			}()
		}
		wg.Wait()

		st := store.Snapshot()
		if st.IsAuthenticated {
			assert.Equal(t, st.Token, tokens.Load())
		} else {
			assert.Empty(t, tokens.Load())
		}
	}
}

func TestLogoutIfCurrentKeepsNewerSession(t *testing.T) {
	tokens := storage.NewMemoryTokenStore()
	store := authstate.New(tokens, authstate.WithClock(clock))
	old := issue(t, "u1", claims.RoleUser, now.Add(-time.Hour))
	fresh := issue(t, "u1", claims.RoleUser, now)
	require.NoError(t, store.Login(old, claims.RoleUser, authstate.User{}))
	require.NoError(t, store.Login(fresh, claims.RoleUser, authstate.User{}))

	assert.False(t, store.LogoutIfCurrent(old))
	assert.True(t, store.Snapshot().IsAuthenticated)
	assert.Equal(t, fresh, tokens.Load())
}

func TestValidateSession(t *testing.T) {
	current := now
	tokens := storage.NewMemoryTokenStore()
	store := authstate.New(tokens, authstate.WithClock(func() time.Time { return current }))
	require.NoError(t, store.Login(issue(t, "u1", claims.RoleUser, now), claims.RoleUser, authstate.User{}))

	assert.True(t, store.ValidateSession())

	current = now.Add(claims.TokenTTL + time.Minute)
	assert.False(t, store.ValidateSession())
	assert.False(t, store.Snapshot().IsAuthenticated)
	assertCleared(t, tokens)
}

func TestSetUserMerges(t *testing.T) {
	store := authstate.New(storage.NewMemoryTokenStore(), authstate.WithClock(clock))

	store.SetUser(authstate.User{Name: "ignored"})
	assert.Empty(t, store.Snapshot().User.Name, "anonymous sessions have no profile")

	require.NoError(t, store.Login(issue(t, "u1", claims.RoleUser, now), claims.RoleUser,
		authstate.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	store.SetUser(authstate.User{ProfileImage: "https://img/1.png"})

	s := store.Snapshot()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Ada", s.User.Name)
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, "https://img/1.png", s.User.ProfileImage)
}

func TestSubscribe(t *testing.T) {
	store := authstate.New(storage.NewMemoryTokenStore(), authstate.WithClock(clock))

	var seen []bool
	unsubscribe := store.Subscribe(func(s authstate.Session) {
		seen = append(seen, s.IsAuthenticated)
	})

	require.NoError(t, store.Login(issue(t, "u1", claims.RoleUser, now), claims.RoleUser, authstate.User{}))
	store.Logout()
	store.Logout()
	unsubscribe()
	store.SetLoading(true)

	assert.Equal(t, []bool{true, false}, seen)
}
