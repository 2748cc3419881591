package properties

import (
	"context"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/registry/models"
)

// Repository reads and writes the cached property rows. Officials see every
// property; owners only rows whose owner column equals their wallet address.
type Repository interface {
	List(ctx context.Context, role common.Role, walletAddress string) ([]*models.Property, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	Insert(ctx context.Context, p *models.Property) error
	UpdateOwner(ctx context.Context, id string, newOwner string) error
}
