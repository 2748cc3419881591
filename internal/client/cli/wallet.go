package cli

import (
	"context"
	"fmt"

	"github.com/mkurbatov/landledger/internal/common"
)

// Connect unlocks the wallet and binds it to the contract. A wallet address
// stored on the profile is re-authorized explicitly: the passphrase must
// unlock that exact account.
func (a *App) Connect(ctx context.Context) {
	passphrase, err := GetPassword(a.out, "Enter wallet passphrase: ")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(passphrase)

	user := a.authService.CurrentUser()

	var ok bool
	if user != nil && user.WalletAddress != nil {
		ok = a.web3Service.ReconnectStored(ctx, string(passphrase))
	} else {
		ok = a.web3Service.ConnectWallet(ctx, string(passphrase))
	}
	if !ok {
		return
	}

	if account, connected := a.web3Service.ConnectedAccount(); connected {
		if err := a.prefs.SetWalletAddress(ctx, account); err != nil {
			a.logger.Warn(ctx, "wallet address not persisted locally", "error", err)
		}
		fmt.Fprintf(a.out, "Connected as %s\n", account)
	}
}

func (a *App) Disconnect(ctx context.Context) {
	a.web3Service.DisconnectWallet(ctx)
	if err := a.prefs.ClearWalletAddress(ctx); err != nil {
		a.logger.Warn(ctx, "stored wallet address not cleared", "error", err)
	}
	fmt.Fprintln(a.out, "Wallet disconnected")
}
