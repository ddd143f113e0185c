package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec issues and verifies signed, time-limited identity tokens.
// Tokens are self-contained: validation needs only the shared secret
// and the wall clock, never server-side session state.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// TokenUser is the identity carried inside the token payload. The
// nested {"user":{"id":...}} shape is the wire contract clients and
// older deployments expect.
type TokenUser struct {
	ID string `json:"id"`
}

type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// Issue signs a token asserting userID, expiring at now + ttl.
func (c *TokenCodec) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.ttl)
	claims := &Claims{
		User: TokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.secret)
	return s, exp, err
}

// Verify returns the embedded claims only when the signature checks
// out against the shared secret and the token has not expired. Expired
// and forged tokens fail the same way; callers cannot tell them apart.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.User.ID == "" {
		return nil, errors.New("token carries no identity")
	}
	return claims, nil
}
