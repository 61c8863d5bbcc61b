package claims

import (
	"errors"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// TokenTTL matches the lifetime of the client-side token cookie.
const TokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

func NewToken(u UserClaims, secret []byte, now time.Time) (string, error) {
	c := Claims{
		User: u,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.UTC().Unix(),
			ExpiresAt: now.Add(TokenTTL).UTC().Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// Parse verifies an HS256 token and returns its claims.
func Parse(raw string, secret []byte) (*Claims, error) {
	c := &Claims{}
	t, err := jwt.ParseWithClaims(raw, c, func(token *jwt.Token) (interface{}, error) {
		method, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok || method.Alg() != "HS256" {
			return nil, errors.New("bad sign method")
		}
		return secret, nil
	})
	if err != nil || !t.Valid || c.User.ID == "" || !c.User.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return c, nil
}
