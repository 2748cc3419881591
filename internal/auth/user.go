package auth

import (
	"strings"
	"time"

	"github.com/mkurbatov/landledger/internal/common"
	"github.com/mkurbatov/landledger/internal/session"
)

// LoginInfo records when and from where the user last signed in.
type LoginInfo struct {
	Time time.Time
	IP   string
}

// User is the authenticated identity held for the lifetime of a session.
// Name and Role are immutable metadata set at sign-up; WalletAddress is the
// only field this application mutates.
type User struct {
	ID            string
	Name          string
	Email         string
	Role          common.Role
	WalletAddress *string
	LastLogin     *LoginInfo
}

// clone returns a shallow copy so callers never alias service-owned state.
func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// userFromStore maps the session store's account record onto our User.
// Missing metadata falls back the way the store's dashboard does: name from
// the email local part, role owner.
func userFromStore(su *session.StoreUser) *User {
	name := su.Metadata.Name
	if name == "" {
		if i := strings.IndexByte(su.Email, '@'); i > 0 {
			name = su.Email[:i]
		} else {
			name = "User"
		}
	}

	role := common.Role(su.Metadata.Role)
	if !common.ValidRole(role) {
		role = common.RoleOwner
	}

	return &User{
		ID:    su.ID,
		Name:  name,
		Email: su.Email,
		Role:  role,
	}
}
