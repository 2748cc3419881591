// Package cli is the interactive terminal client: a small REPL over the
// auth, wallet and registry services, mirroring the pages of the web
// surface.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mkurbatov/landledger/internal/auth"
	"github.com/mkurbatov/landledger/internal/chain"
	"github.com/mkurbatov/landledger/internal/client/config"
	"github.com/mkurbatov/landledger/internal/client/prefs"
	"github.com/mkurbatov/landledger/internal/documents"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/registry/db"
	"github.com/mkurbatov/landledger/internal/session"
	"github.com/mkurbatov/landledger/internal/web3"
)

type App struct {
	config *config.Config
	prefs  *prefs.Store
	repos  db.RepositoryManager
	chain  *chain.Client

	authService *auth.Service
	web3Service *web3.Service
	docs        *documents.Service

	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlog(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	out := os.Stdout
	notifier := &consoleNotifier{w: out}

	prefsStore, err := prefs.Open(ctx, c.PrefsPath)
	if err != nil {
		return nil, err
	}

	repos, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, err
	}

	store := session.NewHTTPStore(c.SessionEndpoint, c.SessionAPIKey, nil)
	authService := auth.NewService(store, repos.Users(), prefsStore, logger, notifier)

	// The node being down must not block login and registry browsing; the
	// wallet commands report the contract as unavailable instead.
	chainClient, err := chain.Dial(ctx, c.ChainRPCURL, c.ContractAddress)
	if err != nil {
		logger.Warn(ctx, "chain node unreachable, wallet commands disabled", "error", err)
		chainClient = nil
	}

	wallet := chain.NewKeystoreWallet(c.KeystoreDir)
	web3Service := web3.NewService(wallet,
		web3.ChainBinder{Client: chainClient, Wallet: wallet},
		authService, repos.Properties(), repos.Transactions(), notifier, logger)

	docs := documents.NewService(documents.Config{
		BaseEndpoint: c.S3BaseEndpoint,
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
	})

	return &App{
		config:      c,
		prefs:       prefsStore,
		repos:       repos,
		chain:       chainClient,
		authService: authService,
		web3Service: web3Service,
		docs:        docs,
		reader:      bufio.NewReader(os.Stdin),
		out:         out,
		logger:      logger,
	}, nil
}

// Run restores any persisted session, then hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	a.authService.Start(ctx)
	if user := a.authService.CurrentUser(); user != nil {
		fmt.Fprintf(a.out, "Welcome back, %s\n", user.Name)
		if user.WalletAddress != nil {
			fmt.Fprintf(a.out, "Stored wallet %s found. Run 'connect' to re-authorize it.\n", *user.WalletAddress)
		}
	}

	fmt.Fprintln(a.out, "landledger CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) close() {
	a.authService.Close()
	if a.chain != nil {
		a.chain.Close()
	}
	_ = a.repos.Close()
	_ = a.prefs.Close()
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

// status renders the prompt segment: login state plus wallet state.
func (a *App) status() string {
	user := a.authService.CurrentUser()
	if user == nil {
		return "anonymous"
	}
	if account, ok := a.web3Service.ConnectedAccount(); ok {
		return fmt.Sprintf("%s (%s) %s", user.Name, user.Role, shortAddress(account))
	}
	return fmt.Sprintf("%s (%s)", user.Name, user.Role)
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
