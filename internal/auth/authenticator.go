// Package auth verifies session tokens presented by connecting clients.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	svcErr "github.com/oggyb/muzz-social/internal/errors"
)

var errNoSubject = errors.New("token carries no user id")

// Claims is the session token payload.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies HS256 session tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a token for id.
func (a *Authenticator) Issue(id uint64) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify returns the identity bound to token, or an auth error.
func (a *Authenticator) Verify(token string) (uint64, error) {
	if token == "" {
		return 0, svcErr.Auth(errors.New("missing token"))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return 0, svcErr.Auth(err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return 0, svcErr.Auth(errNoSubject)
	}
	return claims.UserID, nil
}
