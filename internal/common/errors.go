// Package common defines shared constants and sentinel errors used across
// the landledger client, gateway, and services. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Session errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")

	// Wallet errors.
	ErrNoWalletAccount    = errors.New("no wallet account available")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrWalletMismatch     = errors.New("wallet account does not match stored address")

	// Chain errors.
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrPropertyMortgaged   = errors.New("property is mortgaged")
	ErrInvalidHexAddress   = errors.New("invalid hex address")
	ErrContractUnavailable = errors.New("blockchain connection not established")
)
