// Package web3 bridges the wallet keystore and the LandRegistry contract,
// and mirrors confirmed chain operations into the registry cache as an
// append-only audit log.
package web3

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/mkurbatov/landledger/internal/auth"
	"github.com/mkurbatov/landledger/internal/chain"
	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/notify"
	"github.com/mkurbatov/landledger/internal/registry/models"
	"github.com/mkurbatov/landledger/internal/registry/repositories/properties"
	"github.com/mkurbatov/landledger/internal/registry/repositories/transactions"
)

// Contract is the LandRegistry surface the service drives. Satisfied by
// chain.BoundRegistry.
type Contract interface {
	RegisterProperty(ctx context.Context, id, owner, location, documentHash string, priceWei *big.Int) (*chain.Receipt, error)
	TransferProperty(ctx context.Context, propertyID, newOwner string) (*chain.Receipt, error)
	CreateMortgage(ctx context.Context, propertyID, lender string, amountWei *big.Int) (*chain.Receipt, error)
	ReleaseMortgage(ctx context.Context, propertyID string) (*chain.Receipt, error)
	PropertyOwner(ctx context.Context, propertyID string) (string, error)
	PropertyDetails(ctx context.Context, propertyID string) (*chain.PropertyDetails, error)
	MortgageStatus(ctx context.Context, propertyID string) (*chain.MortgageStatus, error)
	VerificationStatus(ctx context.Context, propertyID string) (bool, error)
	TransactionHistory(ctx context.Context, propertyID string) ([]chain.HistoryEntry, error)
}

// Wallet is the signing-key store. Satisfied by chain.KeystoreWallet.
type Wallet interface {
	Connect(passphrase string) (string, error)
	Reconnect(address, passphrase string) (string, error)
	Disconnect()
	Address() (string, bool)
}

// Binder attaches the wallet's connected account to the contract.
type Binder interface {
	Bind(ctx context.Context) (Contract, error)
}

// ChainBinder adapts a chain.Client plus keystore wallet to Binder.
type ChainBinder struct {
	Client *chain.Client
	Wallet *chain.KeystoreWallet
}

func (b ChainBinder) Bind(ctx context.Context) (Contract, error) {
	if b.Client == nil {
		return nil, common.ErrContractUnavailable
	}
	return b.Client.Bind(b.Wallet)
}

// Auth is the slice of the auth service the wallet layer needs.
type Auth interface {
	CurrentUser() *auth.User
	UpdateUserWallet(ctx context.Context, address *string)
}

// VerificationResult is the outcome of a property verification lookup.
type VerificationResult struct {
	IsVerified bool
	Owner      string
}

// MortgageInfo is a mortgage lookup with the amount rendered as a
// decimal ether string.
type MortgageInfo struct {
	IsMortgaged bool
	Lender      string
	Amount      string
}

// Service owns the wallet connection state and every contract-facing
// operation. Constructed once at application start.
type Service struct {
	wallet   Wallet
	binder   Binder
	authsvc  Auth
	props    properties.Repository
	txs      transactions.Repository
	notifier notify.Notifier
	logger   logging.Logger

	mu       sync.Mutex
	contract Contract
	account  string
}

func NewService(wallet Wallet, binder Binder, authsvc Auth,
	props properties.Repository, txs transactions.Repository,
	notifier notify.Notifier, logger logging.Logger) *Service {
	return &Service{
		wallet:   wallet,
		binder:   binder,
		authsvc:  authsvc,
		props:    props,
		txs:      txs,
		notifier: notifier,
		logger:   logger,
	}
}

// IsConnected reports whether a signing account is bound to the contract.
func (s *Service) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contract != nil
}

// ConnectedAccount returns the bound signing address, if any.
func (s *Service) ConnectedAccount() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contract == nil {
		return "", false
	}
	return s.account, true
}

// ConnectWallet unlocks the wallet and binds it to the contract. When a
// user is logged in, the connected address is persisted to their profile.
// Calling it while already connected rebinds to the current account.
func (s *Service) ConnectWallet(ctx context.Context, passphrase string) bool {
	address, err := s.wallet.Connect(passphrase)
	if err != nil {
		s.logger.Warn(ctx, "wallet connect failed", "error", err)
		s.notifier.Error(connectErrorMessage(err))
		return false
	}
	return s.finishConnect(ctx, address)
}

// ReconnectStored re-establishes a previous wallet connection. The live
// keystore account must match the address stored on the user's profile;
// a mismatch means the stored connection is stale and is rejected.
func (s *Service) ReconnectStored(ctx context.Context, passphrase string) bool {
	user := s.authsvc.CurrentUser()
	if user == nil || user.WalletAddress == nil {
		return false
	}

	address, err := s.wallet.Reconnect(*user.WalletAddress, passphrase)
	if err != nil {
		s.logger.Warn(ctx, "wallet reconnect failed", "address", *user.WalletAddress, "error", err)
		s.notifier.Error(connectErrorMessage(err))
		return false
	}
	return s.finishConnect(ctx, address)
}

func (s *Service) finishConnect(ctx context.Context, address string) bool {
	contract, err := s.binder.Bind(ctx)
	if err != nil {
		s.wallet.Disconnect()
		s.logger.Error(ctx, "contract bind failed", "error", err)
		s.notifier.Error("Failed to connect wallet")
		return false
	}

	s.mu.Lock()
	s.contract = contract
	s.account = address
	s.mu.Unlock()

	if s.authsvc.CurrentUser() != nil {
		s.authsvc.UpdateUserWallet(ctx, &address)
	}
	s.notifier.Success("Wallet connected")
	return true
}

// DisconnectWallet clears the local connection unconditionally and, when
// a user is logged in, clears their stored wallet address. It cannot
// remove keys from the keystore itself.
func (s *Service) DisconnectWallet(ctx context.Context) bool {
	s.mu.Lock()
	s.contract = nil
	s.account = ""
	s.mu.Unlock()
	s.wallet.Disconnect()

	if s.authsvc.CurrentUser() != nil {
		s.authsvc.UpdateUserWallet(ctx, nil)
	}
	return true
}

// RegisterProperty records a new property on chain. Only officials may
// register; preconditions fail fast without touching the node. On a
// confirmed receipt an audit row is written best-effort.
func (s *Service) RegisterProperty(ctx context.Context, id, location string, size float64, price, documentHash string) bool {
	contract, account, ok := s.bound()
	if !ok {
		s.notifier.Error("Wallet not connected")
		return false
	}
	user := s.authsvc.CurrentUser()
	if user == nil || user.Role != common.RoleOfficial {
		s.notifier.Error("Only officials can register properties")
		return false
	}

	priceWei, err := chain.ToWei(price)
	if err != nil {
		s.logger.Warn(ctx, "invalid property price", "price", price, "error", err)
		s.notifier.Error("Invalid price")
		return false
	}

	receipt, err := contract.RegisterProperty(ctx, id, account, location, documentHash, priceWei)
	if !s.confirmed(ctx, receipt, err, "Failed to register property") {
		return false
	}

	s.audit(ctx, &models.Transaction{
		Type:          models.TxRegistration,
		PropertyID:    &id,
		PropertyTitle: id,
		ToAddress:     &account,
		TxHash:        receipt.TxHash,
		BlockNumber:   receipt.BlockNumber,
		Status:        models.StatusConfirmed,
	})

	s.notifier.Success("Property registered successfully")
	return true
}

// TransferProperty moves a property to a new owner. The mortgage
// pre-check blocks transfers of mortgaged properties, but a failure of
// the check itself does not block the transfer. On a confirmed receipt
// the audit row and the cached owner are updated independently,
// best-effort.
func (s *Service) TransferProperty(ctx context.Context, propertyID, newOwner string) bool {
	contract, account, ok := s.bound()
	if !ok {
		s.notifier.Error("Wallet not connected")
		return false
	}

	if status, err := contract.MortgageStatus(ctx, propertyID); err != nil {
		s.logger.Warn(ctx, "mortgage pre-check failed, proceeding", "property_id", propertyID, "error", err)
	} else if status.IsMortgaged {
		s.logger.Info(ctx, "transfer blocked", "property_id", propertyID, "reason", "mortgaged")
		s.notifier.Error("Cannot transfer a mortgaged property")
		return false
	}

	receipt, err := contract.TransferProperty(ctx, propertyID, newOwner)
	if !s.confirmed(ctx, receipt, err, "Failed to transfer property") {
		return false
	}

	s.audit(ctx, &models.Transaction{
		Type:        models.TxTransfer,
		PropertyID:  &propertyID,
		FromAddress: &account,
		ToAddress:   &newOwner,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		Status:      models.StatusConfirmed,
	})
	if err := s.props.UpdateOwner(ctx, propertyID, newOwner); err != nil {
		s.logger.Warn(ctx, "cached owner update failed", "property_id", propertyID, "error", err)
	}

	s.notifier.Success("Property transferred successfully")
	return true
}

// CreateMortgage records a mortgage against a property on chain.
func (s *Service) CreateMortgage(ctx context.Context, propertyID, lender, amount string) bool {
	contract, account, ok := s.bound()
	if !ok {
		s.notifier.Error("Wallet not connected")
		return false
	}

	amountWei, err := chain.ToWei(amount)
	if err != nil {
		s.logger.Warn(ctx, "invalid mortgage amount", "amount", amount, "error", err)
		s.notifier.Error("Invalid amount")
		return false
	}

	receipt, err := contract.CreateMortgage(ctx, propertyID, lender, amountWei)
	if !s.confirmed(ctx, receipt, err, "Failed to create mortgage") {
		return false
	}

	s.audit(ctx, &models.Transaction{
		Type:        models.TxMortgage,
		PropertyID:  &propertyID,
		FromAddress: &account,
		ToAddress:   &lender,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		Status:      models.StatusConfirmed,
	})

	s.notifier.Success("Mortgage created successfully")
	return true
}

// ReleaseMortgage lifts a mortgage from a property on chain.
func (s *Service) ReleaseMortgage(ctx context.Context, propertyID string) bool {
	contract, account, ok := s.bound()
	if !ok {
		s.notifier.Error("Wallet not connected")
		return false
	}

	receipt, err := contract.ReleaseMortgage(ctx, propertyID)
	if !s.confirmed(ctx, receipt, err, "Failed to release mortgage") {
		return false
	}

	s.audit(ctx, &models.Transaction{
		Type:        models.TxMortgage,
		PropertyID:  &propertyID,
		FromAddress: &account,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		Status:      models.StatusConfirmed,
	})

	s.notifier.Success("Mortgage released successfully")
	return true
}

// GetPropertyOwner looks up the on-chain owner of a property.
func (s *Service) GetPropertyOwner(ctx context.Context, propertyID string) (string, chain.Outcome) {
	contract, _, ok := s.bound()
	if !ok {
		return "", chain.TransientError
	}

	owner, err := contract.PropertyOwner(ctx, propertyID)
	if outcome := s.readOutcome(ctx, "getPropertyOwner", propertyID, err); outcome != chain.Found {
		return "", outcome
	}
	return owner, chain.Found
}

// VerifyProperty reports whether a property is registered on chain and
// who owns it. NotFound means the chain has no such record;
// TransientError means the answer could not be determined.
func (s *Service) VerifyProperty(ctx context.Context, propertyID string) (VerificationResult, chain.Outcome) {
	contract, _, ok := s.bound()
	if !ok {
		return VerificationResult{}, chain.TransientError
	}

	details, err := contract.PropertyDetails(ctx, propertyID)
	if outcome := s.readOutcome(ctx, "getPropertyDetails", propertyID, err); outcome != chain.Found {
		return VerificationResult{}, outcome
	}
	return VerificationResult{IsVerified: details.IsRegistered, Owner: details.Owner}, chain.Found
}

// GetMortgageStatus looks up a property's mortgage record; the amount is
// rendered as a decimal ether string.
func (s *Service) GetMortgageStatus(ctx context.Context, propertyID string) (MortgageInfo, chain.Outcome) {
	contract, _, ok := s.bound()
	if !ok {
		return MortgageInfo{}, chain.TransientError
	}

	status, err := contract.MortgageStatus(ctx, propertyID)
	if outcome := s.readOutcome(ctx, "getMortgageStatus", propertyID, err); outcome != chain.Found {
		return MortgageInfo{}, outcome
	}
	return MortgageInfo{
		IsMortgaged: status.IsMortgaged,
		Lender:      status.Lender,
		Amount:      chain.FromWei(status.AmountWei),
	}, chain.Found
}

// GetPropertyVerificationStatus looks up the official verification flag.
func (s *Service) GetPropertyVerificationStatus(ctx context.Context, propertyID string) (bool, chain.Outcome) {
	contract, _, ok := s.bound()
	if !ok {
		return false, chain.TransientError
	}

	verified, err := contract.VerificationStatus(ctx, propertyID)
	if outcome := s.readOutcome(ctx, "getVerificationStatus", propertyID, err); outcome != chain.Found {
		return false, outcome
	}
	return verified, chain.Found
}

// GetTransactionHistory lists a property's on-chain transaction log.
func (s *Service) GetTransactionHistory(ctx context.Context, propertyID string) ([]chain.HistoryEntry, chain.Outcome) {
	contract, _, ok := s.bound()
	if !ok {
		return nil, chain.TransientError
	}

	entries, err := contract.TransactionHistory(ctx, propertyID)
	if outcome := s.readOutcome(ctx, "getTransactionHistory", propertyID, err); outcome != chain.Found {
		return nil, outcome
	}
	return entries, chain.Found
}

func (s *Service) bound() (Contract, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contract == nil {
		return nil, "", false
	}
	return s.contract, s.account, true
}

// confirmed reports whether the transaction reached the chain with a
// success status, surfacing the revert reason when the node supplied one.
func (s *Service) confirmed(ctx context.Context, receipt *chain.Receipt, err error, fallback string) bool {
	if err != nil {
		s.logger.Error(ctx, "chain transaction failed", "error", err)
		if reason := chain.RevertReason(err); reason != "" {
			s.notifier.Error(reason)
		} else {
			s.notifier.Error(fallback)
		}
		return false
	}
	if !receipt.Succeeded {
		s.logger.Error(ctx, "chain transaction reverted", "tx_hash", receipt.TxHash)
		s.notifier.Error(fallback)
		return false
	}
	return true
}

// audit writes a transaction-log row. The chain receipt is authoritative,
// so a failed write is logged and swallowed.
func (s *Service) audit(ctx context.Context, tx *models.Transaction) {
	if err := s.txs.Insert(ctx, tx); err != nil {
		s.logger.Warn(ctx, "audit row write failed", "tx_hash", tx.TxHash, "error", err)
	}
}

func (s *Service) readOutcome(ctx context.Context, method, propertyID string, err error) chain.Outcome {
	outcome := chain.Classify(err)
	if outcome == chain.TransientError {
		s.logger.Warn(ctx, "chain read failed", "method", method, "property_id", propertyID, "error", err)
	}
	return outcome
}

func connectErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrNoWalletAccount):
		return "No wallet account available"
	case errors.Is(err, common.ErrWalletMismatch):
		return "Stored wallet address no longer matches the keystore"
	default:
		return "Failed to connect wallet"
	}
}
