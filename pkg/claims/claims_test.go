package claims

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestNewTokenRoundTrip(t *testing.T) {
	u := UserClaims{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: RoleOrganizer}
	now := time.Now()

	raw, err := NewToken(u, secret, now)
	require.NoError(t, err)

	c, err := Parse(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, u, c.User)
	assert.Equal(t, now.Add(TokenTTL).Unix(), c.ExpiresAt)
}

func TestParseRejects(t *testing.T) {
	u := UserClaims{ID: "u1", Role: RoleUser}

	wrongKey, err := NewToken(u, []byte("other"), time.Now())
	require.NoError(t, err)

	expired, err := NewToken(u, secret, time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)

	noID, err := NewToken(UserClaims{Role: RoleUser}, secret, time.Now())
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: u}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong key": wrongKey,
		"expired":   expired,
		"no id":     noID,
		"alg none":  none,
		"garbage":   "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRoleText(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleOrganizer, RoleAdmin} {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
	assert.False(t, RoleUnknown.Valid())

	data, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"admin"}`, string(data))

	var out struct {
		Role Role `json:"role"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &out))
}

func TestRolePaths(t *testing.T) {
	assert.Equal(t, "/admin-login", RoleAdmin.LoginPath())
	assert.Equal(t, "/organizer/login", RoleOrganizer.LoginPath())
	assert.Equal(t, "/login", RoleUser.LoginPath())
	assert.Equal(t, "/login", RoleUnknown.LoginPath())

	assert.Equal(t, "/admin/dashboard", RoleAdmin.DashboardPath())
	assert.Equal(t, "/organizer/dashboard", RoleOrganizer.DashboardPath())
	assert.Equal(t, "/user/dashboard", RoleUser.DashboardPath())
	assert.Equal(t, "/", RoleUnknown.DashboardPath())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithClaims(context.Background(), &Claims{}))
	assert.False(t, ok, "claims without a user id")

	c := &Claims{User: UserClaims{ID: "u1", Role: RoleUser}}
	got, ok := FromContext(WithClaims(context.Background(), c))
	assert.True(t, ok)
	assert.Same(t, c, got)
}
