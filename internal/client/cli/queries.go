package cli

import (
	"context"
	"fmt"

	"github.com/mkurbatov/landledger/internal/chain"
)

func (a *App) Verify(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	res, outcome := a.web3Service.VerifyProperty(ctx, propertyID)
	switch outcome {
	case chain.Found:
		if res.IsVerified {
			fmt.Fprintf(a.out, "Property %s is registered, owner %s\n", propertyID, res.Owner)
		} else {
			fmt.Fprintf(a.out, "Property %s is not verified\n", propertyID)
		}
	case chain.NotFound:
		fmt.Fprintf(a.out, "Property %s is not on the registry\n", propertyID)
	default:
		fmt.Fprintln(a.out, "Could not reach the registry, try again later")
	}
}

func (a *App) Mortgage(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	lender, err := GetSimpleText(a.reader, "Lender wallet address", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	amount, err := GetSimpleText(a.reader, "Amount (ETH)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	a.web3Service.CreateMortgage(ctx, propertyID, lender, amount)
}

func (a *App) MortgageStatus(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	info, outcome := a.web3Service.GetMortgageStatus(ctx, propertyID)
	switch outcome {
	case chain.Found:
		if info.IsMortgaged {
			fmt.Fprintf(a.out, "Mortgaged for %s ETH, lender %s\n", info.Amount, info.Lender)
		} else {
			fmt.Fprintln(a.out, "Not mortgaged")
		}
	case chain.NotFound:
		fmt.Fprintf(a.out, "Property %s is not on the registry\n", propertyID)
	default:
		fmt.Fprintln(a.out, "Could not reach the registry, try again later")
	}
}

func (a *App) Release(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	a.web3Service.ReleaseMortgage(ctx, propertyID)
}

func (a *App) History(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	entries, outcome := a.web3Service.GetTransactionHistory(ctx, propertyID)
	switch outcome {
	case chain.Found:
		if len(entries) == 0 {
			fmt.Fprintln(a.out, "No on-chain history")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(a.out, "%s  %-12s %s → %s  %s wei\n",
				e.Timestamp.Format("2006-01-02 15:04"), e.Type,
				shortAddress(e.From), shortAddress(e.To), e.ValueWei)
		}
	case chain.NotFound:
		fmt.Fprintf(a.out, "Property %s is not on the registry\n", propertyID)
	default:
		fmt.Fprintln(a.out, "Could not reach the registry, try again later")
	}
}

// Transactions lists the cached audit log visible to the current user.
func (a *App) Transactions(ctx context.Context) {
	user := a.authService.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	wallet := ""
	if user.WalletAddress != nil {
		wallet = *user.WalletAddress
	}

	rows, err := a.repos.Transactions().List(ctx, user.Role, wallet, "")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No transactions recorded")
		return
	}

	for _, tx := range rows {
		property := tx.PropertyTitle
		if property == "" && tx.PropertyID != nil {
			property = *tx.PropertyID
		}
		fmt.Fprintf(a.out, "%s  %-12s %-24s %s  %s\n",
			tx.CreatedAt.Format("2006-01-02 15:04"), tx.Type, property, tx.Status, tx.TxHash)
	}
}
