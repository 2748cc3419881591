package users

import (
	"context"
	"time"

	"github.com/mkurbatov/landledger/internal/common"
)

// Repository persists per-user registry data that the session store does not
// own: the linked wallet address and last-login bookkeeping. Accounts are
// created by the session store, so rows are provisioned lazily via Ensure
// whenever a store user is resolved.
type Repository interface {
	Ensure(ctx context.Context, userID, name, email string, role common.Role) error
	UpdateWalletAddress(ctx context.Context, userID string, address *string) error
	GetWalletAddress(ctx context.Context, userID string) (*string, error)
	TouchLastLogin(ctx context.Context, userID string, ip string) error
	GetLastLogin(ctx context.Context, userID string) (*time.Time, string, error)
}
