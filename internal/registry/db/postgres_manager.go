package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mkurbatov/landledger/internal/registry/migrations"
	"github.com/mkurbatov/landledger/internal/registry/repositories/properties"
	"github.com/mkurbatov/landledger/internal/registry/repositories/transactions"
	"github.com/mkurbatov/landledger/internal/registry/repositories/users"
)

type PostgresRepositoryManager struct {
	db           *sql.DB
	users        users.Repository
	properties   properties.Repository
	transactions transactions.Repository
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &PostgresRepositoryManager{
		db:           db,
		users:        users.NewPostgresRepository(db),
		properties:   properties.NewPostgresRepository(db),
		transactions: transactions.NewPostgresRepository(db),
	}, nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Properties() properties.Repository {
	return m.properties
}

func (m *PostgresRepositoryManager) Transactions() transactions.Repository {
	return m.transactions
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
