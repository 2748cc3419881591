package auth

import "context"

// TokenVault persists the refresh token between runs so a session can be
// silently re-established at startup. Implementations: the CLI prefs store,
// or nothing (nil vault means sessions die with the process).
type TokenVault interface {
	LoadRefreshToken(ctx context.Context) (string, error)
	SaveRefreshToken(ctx context.Context, token string) error
	ClearRefreshToken(ctx context.Context) error
}
