package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/bluezscript/internal/trigger/http"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/transport"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the trigger service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	cipher     *cryptox.SecretCipher
	engine     *otpx.Engine
	adminToken string

	// Services
	registry            *service.Registry
	validator           *service.Validator
	stats               *service.Stats
	actions             *service.ActionRunner
	housekeepingService *service.HousekeepingService

	// Transports
	server   *http.Server
	router   *httpapi.Router
	listener *transport.Listener

	mu           sync.Mutex
	httpLn       net.Listener
	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "trigger-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{cfg: cfg, logger: logger}

	if err := prepareDataDir(cfg.DataDir, logger); err != nil {
		return nil, err
	}

	cipher, err := InitSecretCipher(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.cipher = cipher

	token, err := InitAdminToken(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.adminToken = token

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	if err := app.initTransports(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until ctx ends, a shutdown signal
// arrives or a transport fails.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.server.Addr, err)
	}
	app.mu.Lock()
	app.httpLn = ln
	app.mu.Unlock()

	if app.listener != nil {
		if err := app.listener.Listen(); err != nil {
			_ = ln.Close()
			return err
		}
	}

	app.housekeepingService.Start()

	app.logger.Info("trigger service starting",
		"addr", ln.Addr().String(),
		"version", BuildVersion,
		"server_url", app.cfg.ServerURL,
		"stream_transport", app.cfg.ListenAddr != "",
	)

	errs := make(chan error, 2)
	go func() {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("server failed: %w", err)
		}
	}()
	if app.listener != nil {
		go func() {
			if err := app.listener.Serve(context.Background()); err != nil && !errors.Is(err, transport.ErrListenerClosed) {
				errs <- fmt.Errorf("transport failed: %w", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var runErr error
	select {
	case runErr = <-errs:
		app.logger.Error("transport stopped unexpectedly", "error", runErr)
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
		app.logger.Info("context cancelled, shutting down")
	}

	if err := app.Shutdown(); err != nil {
		return errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	return runErr
}

// HTTPAddr is the bound HTTP address once Run has started listening.
func (app *Application) HTTPAddr() net.Addr {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.httpLn == nil {
		return nil
	}
	return app.httpLn.Addr()
}

// Router exposes the HTTP handler, mostly for tests.
func (app *Application) Router() http.Handler { return app.router }

// AdminToken is the operator token in effect.
func (app *Application) AdminToken() string { return app.adminToken }

// Shutdown gracefully shuts down the application. It is safe to call more than once.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		app.shutdownErr = app.shutdown()
	})
	return app.shutdownErr
}

func (app *Application) shutdown() error {
	app.logger.Info("shutting down trigger service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.listener != nil {
		if err := app.listener.Close(ctx); err != nil {
			app.logger.Error("error closing transport listener", "error", err)
		}
	}

	// Hooks already running are allowed to finish within the grace period.
	hooksDone := make(chan struct{})
	go func() {
		app.actions.Wait()
		close(hooksDone)
	}()
	select {
	case <-hooksDone:
	case <-ctx.Done():
		app.logger.Warn("action hooks still running at shutdown")
	}

	if app.housekeepingService.Started() {
		app.housekeepingService.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("trigger service stopped")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "path", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.engine = otpx.New(otpx.WithSkew(app.cfg.TOTPSkew))
	app.stats = service.NewStats()

	app.registry = service.NewRegistry(app.db, app.cipher, app.engine, app.logger, app.cfg.ServerURL)
	app.validator = service.NewValidator(app.registry, app.engine, app.db, app.stats, app.logger, app.cfg.ReplayTolerance)
	app.actions = service.NewActionRunner(app.cfg.ActionScript, app.cfg.ActionTimeout, app.stats, app.logger)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)

	if app.cfg.ActionScript == "" {
		app.logger.Warn("no action script configured, accepted triggers will not run anything")
	}
}

// initTransports builds the HTTP router and server and the optional stream listener
func (app *Application) initTransports() error {
	proxies, err := app.cfg.trustedProxies()
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(app.adminToken, BuildVersion, app.db, app.cipher, app.logger)
	router.Registry = app.registry
	router.Validator = app.validator
	router.Actions = app.actions
	router.Stats = app.stats
	router.TrustedProxies = proxies
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	if app.cfg.ListenAddr != "" {
		app.listener = transport.NewListener(app.cfg.ListenNetwork, app.cfg.ListenAddr, app.validator, app.actions, app.logger)
	}
	return nil
}
