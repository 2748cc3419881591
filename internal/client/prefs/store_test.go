package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	v, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestPrivacyAccepted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	accepted, err := s.PrivacyAccepted(ctx)
	require.NoError(t, err)
	assert.False(t, accepted)

	require.NoError(t, s.SetPrivacyAccepted(ctx))

	accepted, err = s.PrivacyAccepted(ctx)
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestRefreshTokenVault(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRefreshToken(ctx, "rt-1"))

	tok, err := s.LoadRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rt-1", tok)

	require.NoError(t, s.ClearRefreshToken(ctx))

	tok, err = s.LoadRefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestWalletAddress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWalletAddress(ctx, "0xabc"))

	addr, err := s.WalletAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", addr)

	require.NoError(t, s.ClearWalletAddress(ctx))
	addr, err = s.WalletAddress(ctx)
	require.NoError(t, err)
	assert.Empty(t, addr)
}
