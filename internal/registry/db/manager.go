// Package db wires the registry repositories to a concrete database and
// owns schema migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/mkurbatov/landledger/internal/registry/repositories/properties"
	"github.com/mkurbatov/landledger/internal/registry/repositories/transactions"
	"github.com/mkurbatov/landledger/internal/registry/repositories/users"
)

// RepositoryManager hands out repositories bound to the shared connection
// and can migrate the schema to the current version.
type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Properties() properties.Repository
	Transactions() transactions.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
