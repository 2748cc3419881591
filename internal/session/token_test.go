package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("irrelevant-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiry_ReadsClaimWithoutVerification(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got := TokenExpiry(signedToken(t, exp))
	require.Equal(t, exp.Unix(), got.Unix())
}

func TestTokenExpiry_GarbageReturnsZero(t *testing.T) {
	require.True(t, TokenExpiry("not-a-jwt").IsZero())
	require.True(t, TokenExpiry("").IsZero())
}

func TestTokenAlive(t *testing.T) {
	now := time.Now()

	fresh := signedToken(t, now.Add(time.Hour))
	stale := signedToken(t, now.Add(-time.Hour))

	require.True(t, TokenAlive(fresh, now))
	require.False(t, TokenAlive(stale, now))
	require.False(t, TokenAlive("junk", now))
}
