package session

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCredential = errors.New("no credential")
	ErrMalformed    = errors.New("malformed credential")
	ErrExpired      = errors.New("credential expired")
)

// Claims is the subset of the backend's token payload the client reads.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Decode reads the claims without verifying the signature; the client never
// holds the signing key and the backend re-verifies every request anyway.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoCredential
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Expiry returns the embedded expiry, or the zero time when the token has none.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *Claims) ExpiredAt(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

func (c *Claims) Session() Session {
	return Session{Username: c.Subject, Role: ParseRole(c.Role)}
}

// CheckCredential reports why a freshly issued credential cannot be adopted.
func CheckCredential(token string, now time.Time) error {
	claims, err := Decode(token)
	if err != nil {
		return err
	}
	if claims.ExpiredAt(now) {
		return ErrExpired
	}
	return nil
}
