package gateway

import (
	"context"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/session"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated caller of a request, resolved once by
// RequireSession and carried in the request context.
type Identity struct {
	UserID        string      `json:"user_id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          common.Role `json:"role"`
	WalletAddress *string     `json:"wallet_address,omitempty"`
}

// identityFromStoreUser maps a store user onto the caller identity. A nil
// user (a token grant without a user record) yields an empty identity rather
// than failing the request.
func identityFromStoreUser(su *session.StoreUser) *Identity {
	if su == nil {
		return &Identity{}
	}
	name := su.Metadata.Name
	if name == "" {
		name = su.Email
	}
	role := common.Role(su.Metadata.Role)
	if !common.ValidRole(role) {
		role = common.RoleOwner
	}
	return &Identity{
		UserID: su.ID,
		Name:   name,
		Email:  su.Email,
		Role:   role,
	}
}

// IdentityFromContext returns the caller identity stored by RequireSession,
// or nil when the request never passed it.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
