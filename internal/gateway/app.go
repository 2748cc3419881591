package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkurbatov/landledger/internal/documents"
	"github.com/mkurbatov/landledger/internal/gateway/config"
	"github.com/mkurbatov/landledger/internal/logging"
	"github.com/mkurbatov/landledger/internal/registry/db"
	"github.com/mkurbatov/landledger/internal/session"
)

// App owns the gateway's wiring: database, session store client, document
// storage and the HTTP server itself.
type App struct {
	config *config.Config
	logger logging.Logger
	repos  db.RepositoryManager
	router http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlog(slog.NewJSONHandler(os.Stdout, nil))

	repos, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	store := session.NewHTTPStore(c.SessionEndpoint, c.SessionAPIKey, nil)
	docs := documents.NewService(documents.Config{
		BaseEndpoint: c.S3BaseEndpoint,
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
	})

	guard := NewGuard(store, repos.Users(), logger)
	router := NewRouter(guard,
		NewAuthHandler(store, repos.Users(), logger),
		NewRegistryHandler(repos.Properties(), repos.Transactions(), logger),
		NewDocumentsHandler(docs, logger))

	return &App{config: c, logger: logger, repos: repos, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is cancelled or a shutdown signal
// arrives, then drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	server := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "server shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "gateway listening", "addr", app.config.EndpointAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
}
