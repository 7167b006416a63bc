package app

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

	amqp "github.com/rabbitmq/amqp091-go"
	httpapi "github.com/storemesh/storemesh/internal/user/http"
	"github.com/storemesh/storemesh/internal/user/rpc"
	"github.com/storemesh/storemesh/internal/user/service"
	"github.com/storemesh/storemesh/internal/user/store"
	"github.com/storemesh/storemesh/internal/user/store/drivers/sqlite"
	"github.com/storemesh/storemesh/pkg/amqprpc"
	"github.com/storemesh/storemesh/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the user service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db   store.Store
	conn *amqp.Connection

	// Services
	users     *service.UserService
	responder *rpc.Responder
	rpcServer *amqprpc.Server

	rpcCancel context.CancelFunc
	rpcDone   chan struct{}

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "user-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.users = &service.UserService{Store: app.db, Logger: app.logger}

	if err := app.seedAdmin(); err != nil {
		return nil, err
	}

	if err := app.initRPC(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("user service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Serve credential RPC requests alongside HTTP
	rpcCtx, cancel := context.WithCancel(context.Background())
	app.rpcCancel = cancel
	app.rpcDone = make(chan struct{})
	go func() {
		defer close(app.rpcDone)
		if err := app.rpcServer.Run(slogx.WithContext(rpcCtx, app.logger)); err != nil {
			app.logger.Error("rpc server stopped", "error", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down user service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the RPC consumer and close the broker connection
	app.rpcCancel()
	select {
	case <-app.rpcDone:
	case <-ctx.Done():
	}
	if err := app.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		app.logger.Error("error closing broker connection", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("user service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// seedAdmin creates the configured admin account if it doesn't exist yet
func (app *Application) seedAdmin() error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	ctx := context.Background()
	_, err := app.users.Create(ctx, service.CreateUserInput{
		Email:     app.cfg.AdminEmail,
		FirstName: "Admin",
		Password:  app.cfg.AdminPassword,
		Role:      "ADMIN",
	})
	if errors.Is(err, service.ErrEmailInUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.logger.Info("admin account seeded", "email", app.cfg.AdminEmail)
	return nil
}

// initRPC connects to the broker and binds the credential lookup queue
func (app *Application) initRPC() error {
	conn, err := amqp.Dial(app.cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	app.conn = conn

	app.responder = &rpc.Responder{Users: app.users, Logger: app.logger}

	server, err := amqprpc.NewServer(
		conn,
		app.cfg.RPCExchange,
		app.cfg.RPCRoutingKey,
		app.cfg.RPCQueue,
		app.responder.Handle,
	)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to initialize rpc server: %w", err)
	}
	app.rpcServer = server

	app.logger.Info("credential rpc bound", "exchange", app.cfg.RPCExchange, "queue", app.cfg.RPCQueue)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.logger)

	router.Users = app.users
	router.Ready = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := app.db.Ping(ctx); err != nil {
			return err
		}
		if app.conn.IsClosed() {
			return errors.New("broker connection closed")
		}
		return nil
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
