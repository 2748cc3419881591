package transactions

import (
	"context"
	"fmt"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/dbx"
	"github.com/mkurbatov/landledger/internal/registry/models"
)

const columns = `id, type, property_id, property_title, from_address, to_address,
	 tx_hash, block_number, status, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, tx *models.Transaction) error {
	query :=
		`INSERT INTO transactions (type, property_id, property_title, from_address,
		     to_address, tx_hash, block_number, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		tx.Type, tx.PropertyID, tx.PropertyTitle, tx.FromAddress,
		tx.ToAddress, tx.TxHash, tx.BlockNumber, tx.Status).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, role common.Role, walletAddress, propertyID string, limit int) ([]*models.Transaction, error) {
	query := `SELECT ` + columns + ` FROM transactions`
	args := []any{}
	where := ""

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if propertyID != "" {
		args = append(args, propertyID)
		and(fmt.Sprintf("property_id = $%d", len(args)))
	}
	// non-officials only see transactions touching their own wallet
	if role != common.RoleOfficial && walletAddress != "" {
		cond := fmt.Sprintf("(from_address = %s OR to_address = %s)", next(), next())
		args = append(args, walletAddress)
		and(cond)
	}

	query += where + ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(&tx.ID, &tx.Type, &tx.PropertyID, &tx.PropertyTitle,
			&tx.FromAddress, &tx.ToAddress, &tx.TxHash, &tx.BlockNumber,
			&tx.Status, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, role common.Role, walletAddress string, propertyID string) ([]*models.Transaction, error) {
	return r.query(ctx, role, walletAddress, propertyID, 0)
}

func (r *PostgresRepository) Recent(ctx context.Context, role common.Role, walletAddress string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 3
	}
	return r.query(ctx, role, walletAddress, "", limit)
}
