// Package prefs is the CLI's local key/value store: the privacy-policy
// acceptance flag, the persisted refresh token and the last connected
// wallet address. Backed by sqlite so state survives restarts.
package prefs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mkurbatov/landledger/internal/client/migrations"
)

const (
	keyPrivacyAccepted = "privacy_accepted"
	keyRefreshToken    = "refresh_token"
	keyWalletAddress   = "wallet_address"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preferences database at path and
// migrates it to the current schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate prefs db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key, or "" when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get prefs[%s]: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set prefs[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete prefs[%s]: %w", key, err)
	}
	return nil
}

// PrivacyAccepted reports whether the user has accepted the privacy policy.
func (s *Store) PrivacyAccepted(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, keyPrivacyAccepted)
	return v == "true", err
}

func (s *Store) SetPrivacyAccepted(ctx context.Context) error {
	return s.Set(ctx, keyPrivacyAccepted, "true")
}

// LoadRefreshToken, SaveRefreshToken and ClearRefreshToken make the store a
// token vault for the auth service.
func (s *Store) LoadRefreshToken(ctx context.Context) (string, error) {
	return s.Get(ctx, keyRefreshToken)
}

func (s *Store) SaveRefreshToken(ctx context.Context, token string) error {
	return s.Set(ctx, keyRefreshToken, token)
}

func (s *Store) ClearRefreshToken(ctx context.Context) error {
	return s.Delete(ctx, keyRefreshToken)
}

// WalletAddress returns the last connected wallet address, or "".
func (s *Store) WalletAddress(ctx context.Context) (string, error) {
	return s.Get(ctx, keyWalletAddress)
}

func (s *Store) SetWalletAddress(ctx context.Context, address string) error {
	return s.Set(ctx, keyWalletAddress, address)
}

func (s *Store) ClearWalletAddress(ctx context.Context) error {
	return s.Delete(ctx, keyWalletAddress)
}
