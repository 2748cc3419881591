package cli

import (
	"context"
	"fmt"

	"github.com/mkurbatov/landledger/internal/common"
)

func (a *App) Register(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter your full name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	roleStr, err := GetSimpleText(a.reader, "Account role (owner/official)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	role := common.Role(roleStr)
	if !common.ValidRole(role) {
		fmt.Fprintln(a.out, "Role must be 'owner' or 'official'")
		return
	}

	password, err := GetPassword(a.out, "Choose a password: ")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	a.authService.Register(ctx, name, email, string(password), role)
}

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	if a.authService.Login(ctx, email, string(password)) {
		fmt.Fprintln(a.out, "Login successful")
	}
}

func (a *App) Logout(ctx context.Context) {
	a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) privacyAccepted(ctx context.Context) bool {
	accepted, err := a.prefs.PrivacyAccepted(ctx)
	if err != nil {
		a.logger.Warn(ctx, "privacy flag lookup failed", "error", err)
		return false
	}
	return accepted
}

// Privacy shows the policy and records acceptance.
func (a *App) Privacy(ctx context.Context) {
	if a.privacyAccepted(ctx) {
		fmt.Fprintln(a.out, "Privacy policy already accepted.")
		return
	}

	fmt.Fprintln(a.out, "The land registry stores your email, role, wallet address and")
	fmt.Fprintln(a.out, "property records you submit. Registry transactions are recorded")
	fmt.Fprintln(a.out, "on a public blockchain and cannot be removed.")

	answer, err := GetSimpleText(a.reader, "Accept the privacy policy? (yes/no)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if answer != "yes" && answer != "y" {
		fmt.Fprintln(a.out, "Policy not accepted.")
		return
	}
	if err := a.prefs.SetPrivacyAccepted(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Privacy policy accepted.")
}
