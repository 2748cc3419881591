package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the expiry claim from an access token without
// verifying its signature. The store is the verifier of record; locally we
// only need "is this worth presenting at all". Returns the zero time when
// the token cannot be parsed or carries no expiry.
func TokenExpiry(accessToken string) time.Time {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// TokenAlive reports whether the access token's expiry lies after now.
func TokenAlive(accessToken string, now time.Time) bool {
	exp := TokenExpiry(accessToken)
	return !exp.IsZero() && exp.After(now)
}
