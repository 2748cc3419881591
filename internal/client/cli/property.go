package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/mkurbatov/landledger/internal/registry/models"
)

// Properties lists the registry rows visible to the current user: officials
// see everything, owners only their own properties.
func (a *App) Properties(ctx context.Context) {
	user := a.authService.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	wallet := ""
	if user.WalletAddress != nil {
		wallet = *user.WalletAddress
	}

	props, err := a.repos.Properties().List(ctx, user.Role, wallet)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if len(props) == 0 {
		fmt.Fprintln(a.out, "No properties found")
		return
	}

	for _, p := range props {
		fmt.Fprintf(a.out, "%s  %-24s %-24s %8.1f m²  %s ETH  owner %s\n",
			p.ID, p.Title, p.Location, p.Size, p.Price, shortAddress(p.Owner))
	}
}

// RegisterProperty walks an official through a full registration: upload the
// deed document, record the property on chain, then cache the row for
// listing. The chain transaction is the authoritative step; the cache row is
// best-effort after it.
func (a *App) RegisterProperty(ctx context.Context) {
	title, err := GetSimpleText(a.reader, "Property title", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	location, err := GetSimpleText(a.reader, "Location", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	sizeStr, err := GetSimpleText(a.reader, "Size (m²)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	size, err := strconv.ParseFloat(sizeStr, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Size must be a number")
		return
	}
	price, err := GetSimpleText(a.reader, "Price (ETH)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	deedPath, err := GetSimpleText(a.reader, "Path to the deed document", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	deed, err := os.Open(deedPath)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer deed.Close()

	_, documentHash, err := a.docs.Upload(ctx, deed)
	if err != nil {
		fmt.Fprintf(a.out, "Document upload failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Document stored, sha256 %s\n", documentHash)

	id := uuid.NewString()
	if !a.web3Service.RegisterProperty(ctx, id, location, size, price, documentHash) {
		return
	}

	account, _ := a.web3Service.ConnectedAccount()
	prop := &models.Property{
		ID:           id,
		Title:        title,
		Location:     location,
		Size:         size,
		Price:        price,
		Owner:        account,
		DocumentHash: documentHash,
	}
	if err := a.repos.Properties().Insert(ctx, prop); err != nil {
		a.logger.Warn(ctx, "property cache row not written", "property_id", id, "error", err)
	}
	fmt.Fprintf(a.out, "Property id: %s\n", id)
}

func (a *App) Transfer(ctx context.Context) {
	propertyID, err := GetSimpleText(a.reader, "Property id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	newOwner, err := GetSimpleText(a.reader, "New owner wallet address", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	a.web3Service.TransferProperty(ctx, propertyID, newOwner)
}
