package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/mkurbatov/landledger/internal/common"
)

// KeystoreWallet holds signing keys in an encrypted on-disk keystore.
// At most one account is connected (unlocked) at a time.
type KeystoreWallet struct {
	ks *keystore.KeyStore

	mu      sync.Mutex
	account *accounts.Account
}

func NewKeystoreWallet(dir string) *KeystoreWallet {
	return &KeystoreWallet{
		ks: keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
	}
}

// Accounts lists the addresses of all keys in the keystore.
func (w *KeystoreWallet) Accounts() []string {
	accs := w.ks.Accounts()
	addrs := make([]string, 0, len(accs))
	for _, acc := range accs {
		addrs = append(addrs, acc.Address.Hex())
	}
	return addrs
}

// CreateAccount generates a new key protected by passphrase and returns
// its address.
func (w *KeystoreWallet) CreateAccount(passphrase string) (string, error) {
	acc, err := w.ks.NewAccount(passphrase)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return acc.Address.Hex(), nil
}

// Connect unlocks the first keystore account and makes it the signing
// account. Returns the connected address.
func (w *KeystoreWallet) Connect(passphrase string) (string, error) {
	accs := w.ks.Accounts()
	if len(accs) == 0 {
		return "", common.ErrNoWalletAccount
	}
	return w.unlock(accs[0], passphrase)
}

// Reconnect unlocks the account with the given address. It is used to
// re-authorize a previously connected wallet; if the keystore no longer
// holds that address the stored connection is considered stale and
// ErrWalletMismatch is returned.
func (w *KeystoreWallet) Reconnect(address, passphrase string) (string, error) {
	accs := w.ks.Accounts()
	if len(accs) == 0 {
		return "", common.ErrNoWalletAccount
	}
	for _, acc := range accs {
		if strings.EqualFold(acc.Address.Hex(), address) {
			return w.unlock(acc, passphrase)
		}
	}
	return "", common.ErrWalletMismatch
}

func (w *KeystoreWallet) unlock(acc accounts.Account, passphrase string) (string, error) {
	if err := w.ks.Unlock(acc, passphrase); err != nil {
		return "", fmt.Errorf("unlock %s: %w", acc.Address.Hex(), err)
	}

	w.mu.Lock()
	w.account = &acc
	w.mu.Unlock()
	return acc.Address.Hex(), nil
}

// Disconnect locks the signing account and forgets it. Safe to call when
// nothing is connected.
func (w *KeystoreWallet) Disconnect() {
	w.mu.Lock()
	acc := w.account
	w.account = nil
	w.mu.Unlock()

	if acc != nil {
		_ = w.ks.Lock(acc.Address)
	}
}

// Address reports the connected signing address, if any.
func (w *KeystoreWallet) Address() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.account == nil {
		return "", false
	}
	return w.account.Address.Hex(), true
}

// Account returns the connected signing account for transaction binding.
func (w *KeystoreWallet) Account() (accounts.Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.account == nil {
		return accounts.Account{}, common.ErrWalletNotConnected
	}
	return *w.account, nil
}
