package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	privacy  bool
	calls    []string
}

func (s *stubExec) record(name string) { s.calls = append(s.calls, name) }

func (s *stubExec) isLoggedIn() bool                         { return s.loggedIn }
func (s *stubExec) privacyAccepted(ctx context.Context) bool { return s.privacy }
func (s *stubExec) Register(ctx context.Context)             { s.record("register") }
func (s *stubExec) Login(ctx context.Context)                { s.record("login") }
func (s *stubExec) Logout(ctx context.Context)               { s.record("logout") }
func (s *stubExec) Connect(ctx context.Context)              { s.record("connect") }
func (s *stubExec) Disconnect(ctx context.Context)           { s.record("disconnect") }
func (s *stubExec) Properties(ctx context.Context)           { s.record("properties") }
func (s *stubExec) RegisterProperty(ctx context.Context)     { s.record("register-property") }
func (s *stubExec) Transfer(ctx context.Context)             { s.record("transfer") }
func (s *stubExec) Verify(ctx context.Context)               { s.record("verify") }
func (s *stubExec) Mortgage(ctx context.Context)             { s.record("mortgage") }
func (s *stubExec) MortgageStatus(ctx context.Context)       { s.record("mortgage-status") }
func (s *stubExec) Release(ctx context.Context)              { s.record("release") }
func (s *stubExec) History(ctx context.Context)              { s.record("history") }
func (s *stubExec) Transactions(ctx context.Context)         { s.record("transactions") }
func (s *stubExec) Privacy(ctx context.Context)              { s.record("privacy") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	lines := &[]string{}
	printlnFn = func(a ...any) (int, error) {
		*lines = append(*lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return lines
}

func runScript(t *testing.T, exec *stubExec, script string) []string {
	t.Helper()
	lines := captureOutput(t)
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), exec, func() string { return "test" }, scanner)
	return *lines
}

func TestREPL_DispatchesCommands(t *testing.T) {
	exec := &stubExec{loggedIn: true, privacy: true}

	runScript(t, exec, "properties\ntransfer\nverify\nhistory\nexit\n")

	assert.Equal(t, []string{"properties", "transfer", "verify", "history"}, exec.calls)
}

func TestREPL_PrivacyGateBlocksCommands(t *testing.T) {
	exec := &stubExec{loggedIn: true, privacy: false}

	out := runScript(t, exec, "properties\nexit\n")

	assert.Empty(t, exec.calls)
	assert.Contains(t, out, "Please accept the privacy policy first (run 'privacy')")
}

func TestREPL_PrivacyExemptCommandsPass(t *testing.T) {
	exec := &stubExec{privacy: false}

	runScript(t, exec, "login\nprivacy\nexit\n")

	assert.Equal(t, []string{"login", "privacy"}, exec.calls)
}

func TestREPL_UnknownCommand(t *testing.T) {
	exec := &stubExec{privacy: true}

	out := runScript(t, exec, "frobnicate\nexit\n")

	assert.Contains(t, out, "Unknown command:frobnicate")
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	exec := &stubExec{privacy: true}

	runScript(t, exec, "properties\n")

	assert.Equal(t, []string{"properties"}, exec.calls)
}

func TestREPL_HelpVariesWithLogin(t *testing.T) {
	exec := &stubExec{loggedIn: false, privacy: true}
	out := runScript(t, exec, "help\nexit\n")
	assert.Contains(t, out, "Available commands: register, login, privacy, exit")

	exec = &stubExec{loggedIn: true, privacy: true}
	out = runScript(t, exec, "help\nexit\n")

	found := false
	for _, line := range out {
		if strings.Contains(line, "register-property") {
			found = true
		}
	}
	assert.True(t, found)
}
