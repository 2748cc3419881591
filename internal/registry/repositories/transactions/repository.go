package transactions

import (
	"context"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/registry/models"
)

// Repository stores the append-only transaction audit log. Rows are inserted
// once after a chain confirmation and never modified afterwards.
type Repository interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, role common.Role, walletAddress string, propertyID string) ([]*models.Transaction, error)
	Recent(ctx context.Context, role common.Role, walletAddress string, limit int) ([]*models.Transaction, error)
}
