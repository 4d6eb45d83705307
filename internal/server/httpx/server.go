// Package httpx is the REST surface of the service: a chi router with the
// user and employee routes, upload handling, health and metrics endpoints.
package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/emphub/internal/logging"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	"github.com/dmitrijs2005/emphub/internal/server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckTimeout = 2 * time.Second

type UserService interface {
	Signup(ctx context.Context, userName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type EmployeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]*models.Employee, error)
	Create(ctx context.Context, fields models.EmployeeFields) (*models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Update(ctx context.Context, id string, fields models.EmployeeFields) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// Options are the transport settings taken from the server config.
type Options struct {
	Address            string
	UploadURLPrefix    string
	MaxUploadSize      int64
	CORSAllowedOrigins []string
	AuthRateLimit      int
	ReadHeaderTimeout  time.Duration
	ShutdownTimeout    time.Duration
}

type Server struct {
	opts      Options
	logger    logging.Logger
	users     UserService
	employees EmployeeService
	blobs     storage.BlobStore
	limiter   RateLimiter
	dbHealth  func(context.Context) error
	metrics   *metrics
	router    chi.Router
	now       func() time.Time
}

// NewServer wires the routes. limiter and dbHealth may be nil.
func NewServer(opts Options, l logging.Logger, us UserService, es EmployeeService,
	blobs storage.BlobStore, limiter RateLimiter, dbHealth func(context.Context) error) *Server {

	opts.UploadURLPrefix = "/" + strings.Trim(opts.UploadURLPrefix, "/")
	if opts.UploadURLPrefix == "/" {
		opts.UploadURLPrefix = "/uploads"
	}

	s := &Server{
		opts:      opts,
		logger:    l.With("module", "http_server"),
		users:     us,
		employees: es,
		blobs:     blobs,
		limiter:   limiter,
		dbHealth:  dbHealth,
		metrics:   newMetrics(prometheus.DefaultRegisterer),
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	origins := s.opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1/user", func(r chi.Router) {
		r.Use(s.rateLimit("user", s.opts.AuthRateLimit))
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
	})

	r.Route("/api/v1/emp/employees", func(r chi.Router) {
		r.Get("/", s.handleListEmployees)
		r.Get("/search", s.handleSearchEmployees)
		r.With(s.upload).Post("/", s.handleCreateEmployee)
		r.Get("/{eid}", s.handleGetEmployee)
		r.With(s.upload).Put("/{eid}", s.handleUpdateEmployee)
		r.Delete("/", s.handleDeleteEmployee)
	})

	r.Get(s.opts.UploadURLPrefix+"/{name}", s.handleUploadedFile)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]any)
	status := "ok"
	if s.dbHealth != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}
