package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure provisions the row for a session-store user, refreshing the profile
// columns when it already exists. Wallet address and last-login columns are
// never touched here.
func (r *PostgresRepository) Ensure(ctx context.Context, userID, name, email string, role common.Role) error {
	query :=
		`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, name, email, string(role)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateWalletAddress(ctx context.Context, userID string, address *string) error {
	query :=
		`UPDATE users SET wallet_address = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, address)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetWalletAddress(ctx context.Context, userID string) (*string, error) {
	query :=
		`SELECT wallet_address FROM users
		 WHERE id = $1
		 `

	var address *string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return address, nil
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID string, ip string) error {
	query :=
		`UPDATE users SET last_login_at = now(), last_login_ip = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, ip)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetLastLogin(ctx context.Context, userID string) (*time.Time, string, error) {
	query :=
		`SELECT last_login_at, last_login_ip FROM users
		 WHERE id = $1
		 `

	var at *time.Time
	var ip *string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&at, &ip)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", common.ErrNotFound
		}
		return nil, "", fmt.Errorf("db error: %w", err)
	}
	if ip == nil {
		return at, "", nil
	}
	return at, *ip, nil
}
