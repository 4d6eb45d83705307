// Package server assembles and runs the API server: database pool and
// migrations, blob storage, services, rate limiting and the HTTP server,
// with graceful shutdown on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/emphub/internal/logging"
	"github.com/dmitrijs2005/emphub/internal/server/config"
	"github.com/dmitrijs2005/emphub/internal/server/httpx"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/emphub/internal/server/services"
	"github.com/dmitrijs2005/emphub/internal/server/storage"
)

const connectTimeout = 5 * time.Second

// seams for tests
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	blobs   storage.BlobStore
	limiter httpx.RateLimiter
	server  *httpx.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSON(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := connect(ctx, db, rm, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	limiter := newRateLimiter(ctx, c, logger)

	us := services.NewUserService(db, rm, c)
	es := services.NewEmployeeService(db, rm)

	srv := httpx.NewServer(httpx.Options{
		Address:            c.Addr(),
		UploadURLPrefix:    c.UploadURLPrefix,
		MaxUploadSize:      c.MaxUploadSize,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
		AuthRateLimit:      c.RateLimitAuth,
		ReadHeaderTimeout:  c.ReadHeaderTimeout,
		ShutdownTimeout:    c.ShutdownTimeout,
	}, logger, us, es, blobs, limiter, db.PingContext)

	return &App{config: c, logger: logger, db: db, blobs: blobs, limiter: limiter, server: srv}, nil
}

// connect pings the database. An unreachable database is logged and the
// server keeps running (requests then fail with 500). When the database is
// reachable pending migrations are applied and must succeed.
func connect(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		logger.Error(ctx, "database connection error", "error", err)
		return nil
	}
	logger.Info(ctx, "Connected to database")

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	return nil
}

func newBlobStore(ctx context.Context, c *config.Config) (storage.BlobStore, error) {
	switch c.UploadBackend {
	case "", config.UploadBackendLocal:
		return storage.NewLocalStore(c.UploadDir)
	case config.UploadBackendS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown upload backend %q", c.UploadBackend)
	}
}

// newRateLimiter returns nil when limiting is off. A Redis backend that cannot
// be reached falls back to in-memory counters.
func newRateLimiter(ctx context.Context, c *config.Config, logger logging.Logger) httpx.RateLimiter {
	if c.RateLimitAuth <= 0 {
		return nil
	}
	if c.RateLimitRedisAddr != "" {
		rl, err := httpx.NewRedisRateLimiter(ctx, c.RateLimitRedisAddr, c.RateLimitRedisPassword, c.RateLimitRedisDB, logger)
		if err == nil {
			return rl
		}
		logger.Warn(ctx, "redis rate limiter unavailable, using in-memory limiter", "error", err)
	}
	return httpx.NewMemoryRateLimiter()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails, then releases every resource.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "shutdown error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) Close() error {
	if app.limiter != nil {
		app.limiter.Close()
	}
	var errs []error
	if app.blobs != nil {
		errs = append(errs, app.blobs.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
