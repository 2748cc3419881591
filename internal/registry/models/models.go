// Package models defines the rows the registry cache stores for properties
// and their transaction audit log. On-chain state is authoritative; these
// rows exist for fast listing and search.
package models

import "time"

// TransactionType enumerates audit-row kinds.
type TransactionType string

const (
	TxRegistration TransactionType = "registration"
	TxTransfer     TransactionType = "transfer"
	TxVerification TransactionType = "verification"
	TxMortgage     TransactionType = "mortgage"
)

// TransactionStatus mirrors the chain receipt outcome for an audit row.
type TransactionStatus string

const (
	StatusConfirmed TransactionStatus = "confirmed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Property is a cached registry record. Owner is always a hex wallet address.
type Property struct {
	ID           string
	Title        string
	Location     string
	Size         float64
	Price        string
	Owner        string
	DocumentHash string
	ImageURL     *string
	Description  *string
	Latitude     *float64
	Longitude    *float64
	CreatedAt    time.Time
}

// Transaction is an append-only audit row mirroring a confirmed on-chain
// transaction. Rows are never updated or deleted by this application.
type Transaction struct {
	ID            string
	Type          TransactionType
	PropertyID    *string
	PropertyTitle string
	FromAddress   *string
	ToAddress     *string
	TxHash        string
	BlockNumber   int64
	Status        TransactionStatus
	CreatedAt     time.Time
}
