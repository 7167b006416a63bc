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
	"github.com/storemesh/storemesh/internal/auth/domain"
	httpapi "github.com/storemesh/storemesh/internal/auth/http"
	"github.com/storemesh/storemesh/internal/auth/resolver"
	"github.com/storemesh/storemesh/internal/auth/service"
	"github.com/storemesh/storemesh/pkg/amqprpc"
	"github.com/storemesh/storemesh/pkg/cryptox"
	"github.com/storemesh/storemesh/pkg/jwtx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	conn      *amqp.Connection
	rpcClient *amqprpc.Client
	codec     *jwtx.Codec

	// Services
	verifier *service.CredentialVerifier
	issuer   *service.TokenIssuer

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initResolver(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close the RPC client and broker connection
	if err := app.rpcClient.Close(); err != nil {
		app.logger.Error("error closing rpc client", "error", err)
	}
	if err := app.conn.Close(); err != nil {
		app.logger.Error("error closing broker connection", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initResolver connects to the broker and sets up the credential RPC client
func (app *Application) initResolver() error {
	conn, err := amqp.Dial(app.cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	app.conn = conn

	client, err := amqprpc.NewClient(conn, app.cfg.RPCExchange, app.cfg.RPCRoutingKey)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to initialize rpc client: %w", err)
	}
	app.rpcClient = client

	app.logger.Info("credential resolver connected", "exchange", app.cfg.RPCExchange)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	guestHash := app.cfg.GuestPasswordHash
	if guestHash == "" {
		hash, err := cryptox.HashPassword(app.cfg.GuestPassword)
		if err != nil {
			return fmt.Errorf("failed to hash guest password: %w", err)
		}
		guestHash = hash
	}
	guest := domain.NewGuest(app.cfg.GuestUsername, app.cfg.GuestRole, guestHash)

	app.verifier = service.NewCredentialVerifier(
		&resolver.AMQPResolver{
			Client:  app.rpcClient,
			Timeout: app.cfg.ResolverTimeout,
		},
		guest,
		uint32(app.cfg.BreakerFailures),
		app.cfg.BreakerCooldown,
		app.logger,
	)

	app.issuer = &service.TokenIssuer{
		Codec:  app.codec,
		Prefix: app.cfg.AuthPrefix,
		TTL:    app.cfg.TokenTTL,
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.AuthHeader, BuildVersion, app.logger)

	router.Verifier = app.verifier
	router.Issuer = app.issuer
	router.Ready = func() error {
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
