package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/storemesh/storemesh/internal/gateway/http"
	"github.com/storemesh/storemesh/internal/gateway/policy"
	"github.com/storemesh/storemesh/pkg/jwtx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	codec *jwtx.Codec

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "api-gateway",
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

	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.cfg.OpenFavorites {
		app.logger.Warn("favorites endpoints are open to guests; intended for dev only")
	}

	app.logger.Info("api gateway starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down api gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
			return err
		}
	}

	app.logger.Info("api gateway stopped")
	return nil
}

// initHTTP initializes the routing pipeline and server
func (app *Application) initHTTP() error {
	routes, err := app.buildRoutes()
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(app.codec, app.cfg.AuthHeader, app.cfg.AuthPrefix, app.logger)
	router.Policy = policy.Default(app.cfg.OpenFavorites)
	router.Proxy = httpapi.NewProxy(routes, app.logger)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// buildRoutes maps URL prefixes onto the upstream services. The auth prefix
// is forwarded intact; the others are stripped so upstreams see their own
// local paths.
func (app *Application) buildRoutes() ([]httpapi.Route, error) {
	authURL, err := url.Parse(app.cfg.AuthURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth upstream url: %w", err)
	}
	userURL, err := url.Parse(app.cfg.UserURL)
	if err != nil {
		return nil, fmt.Errorf("invalid user upstream url: %w", err)
	}
	storeURL, err := url.Parse(app.cfg.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store upstream url: %w", err)
	}

	return []httpapi.Route{
		{Prefix: "/auth", Upstream: authURL},
		{Prefix: "/user", Upstream: userURL, StripPrefix: true},
		{Prefix: "/store", Upstream: storeURL, StripPrefix: true},
	}, nil
}
