package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when there is nothing to inspect.
var ErrNoToken = errors.New("no access token")

// TokenInfo is the unverified content of a bearer token.
// The client never verifies signatures; the room server does.
type TokenInfo struct {
	Algorithm string
	KeyID     string
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect decodes a JWT access token without verifying it.
func Inspect(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, ErrNoToken
	}

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}

	info := TokenInfo{}
	if alg, ok := parsed.Header["alg"].(string); ok {
		info.Algorithm = alg
	}
	if kid, ok := parsed.Header["kid"].(string); ok {
		info.KeyID = kid
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// WithTokenEmail fills a missing display identity from the token's email claim.
func WithTokenEmail(id Identity) Identity {
	if id.DisplayEmail != "" || id.AccessToken == "" {
		return id
	}
	if info, err := Inspect(id.AccessToken); err == nil && info.Email != "" {
		id.DisplayEmail = info.Email
	}
	return id
}
