package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/dbx"
	"github.com/mkurbatov/landledger/internal/registry/models"
)

const columns = `id, title, location, size, price, owner, document_hash,
	 image_url, description, latitude, longitude, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProperty(row interface{ Scan(dest ...any) error }) (*models.Property, error) {
	p := &models.Property{}
	err := row.Scan(&p.ID, &p.Title, &p.Location, &p.Size, &p.Price, &p.Owner,
		&p.DocumentHash, &p.ImageURL, &p.Description, &p.Latitude, &p.Longitude, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, role common.Role, walletAddress string) ([]*models.Property, error) {
	query := `SELECT ` + columns + ` FROM properties`
	args := []any{}

	// non-officials only see their own rows
	if role != common.RoleOfficial && walletAddress != "" {
		query += ` WHERE owner = $1`
		args = append(args, walletAddress)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + columns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Property) error {
	query :=
		`INSERT INTO properties (id, title, location, size, price, owner, document_hash,
		     image_url, description, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Location, p.Size, p.Price, p.Owner, p.DocumentHash,
		p.ImageURL, p.Description, p.Latitude, p.Longitude)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateOwner(ctx context.Context, id string, newOwner string) error {
	query :=
		`UPDATE properties SET owner = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, newOwner); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
