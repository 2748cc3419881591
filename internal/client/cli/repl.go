package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	privacyAccepted(ctx context.Context) bool

	Register(ctx context.Context)
	Login(ctx context.Context)
	Logout(ctx context.Context)
	Connect(ctx context.Context)
	Disconnect(ctx context.Context)
	Properties(ctx context.Context)
	RegisterProperty(ctx context.Context)
	Transfer(ctx context.Context)
	Verify(ctx context.Context)
	Mortgage(ctx context.Context)
	MortgageStatus(ctx context.Context)
	Release(ctx context.Context)
	History(ctx context.Context)
	Transactions(ctx context.Context)
	Privacy(ctx context.Context)
}

// privacyExempt are the commands usable before the privacy policy has been
// accepted, mirroring the public-path allow-list of the web surface.
var privacyExempt = map[string]bool{
	"help":     true,
	"register": true,
	"login":    true,
	"privacy":  true,
	"exit":     true,
	"quit":     true,
}

// runREPL starts a simple read–eval–print loop for the landledger CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ll> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if !privacyExempt[cmd] && !a.privacyAccepted(ctx) {
			printlnFn("Please accept the privacy policy first (run 'privacy')")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: connect, disconnect, properties, register-property, transfer, verify, mortgage, mortgage-status, release, history, transactions, privacy, logout, exit")
			} else {
				printlnFn("Available commands: register, login, privacy, exit")
			}

		case "register":
			a.Register(ctx)

		case "login":
			a.Login(ctx)

		case "logout":
			a.Logout(ctx)

		case "connect":
			a.Connect(ctx)

		case "disconnect":
			a.Disconnect(ctx)

		case "properties":
			a.Properties(ctx)

		case "register-property":
			a.RegisterProperty(ctx)

		case "transfer":
			a.Transfer(ctx)

		case "verify":
			a.Verify(ctx)

		case "mortgage":
			a.Mortgage(ctx)

		case "mortgage-status":
			a.MortgageStatus(ctx)

		case "release":
			a.Release(ctx)

		case "history":
			a.History(ctx)

		case "transactions":
			a.Transactions(ctx)

		case "privacy":
			a.Privacy(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
