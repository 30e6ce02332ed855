package server

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/config"
	"github.com/hongminglow/tenantauth/internal/http/handlers"
	"github.com/hongminglow/tenantauth/internal/middleware"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/service"
	"github.com/hongminglow/tenantauth/internal/storage"
	"github.com/hongminglow/tenantauth/internal/storage/cached"
	"github.com/hongminglow/tenantauth/internal/validation"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires services, middleware and routes around store and returns a ready server.
func New(cfg config.Config, store storage.Store, log *observability.Logger, metrics *observability.Metrics, tp trace.TracerProvider) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, log, metrics, tp),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// NewHandler builds the full middleware chain and route table.
func NewHandler(cfg config.Config, store storage.Store, log *observability.Logger, metrics *observability.Metrics, tp trace.TracerProvider) http.Handler {
	store = cached.New(store, cfg.RoleCacheTTL)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	validate := validation.New()

	authSvc := service.NewTracedAuth(service.NewAuthService(store, hasher, tokens, service.AuthOptions{
		DefaultTenantID:   cfg.DefaultTenantID,
		RegistrationRoles: cfg.RegistrationRoles,
	}, log, metrics), tp)
	userSvc := service.NewTracedUsers(service.NewUserService(store, hasher, cfg.DefaultTenantID), tp)
	roleSvc := service.NewTracedRoles(service.NewRoleService(store), tp)

	gate := func(roles ...string) func(http.Handler) http.Handler {
		return middleware.RequireRole(metrics, roles...)
	}
	limiter := middleware.NewAuthRateLimiter(cfg.AuthRatePerMinute, log, metrics)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store, log).Register(mux)
	handlers.NewAuthHandler(authSvc, validate, log).Register(mux, limiter.Middleware)
	handlers.NewUserHandler(userSvc, validate, log).Register(mux, gate)
	handlers.NewRoleHandler(roleSvc, validate, log).Register(mux, gate)
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.Chain(middleware.Routes(mux),
		middleware.Recover(log),
		middleware.RequestID,
		otelhttp.NewMiddleware("http.server", otelhttp.WithTracerProvider(tp)),
		middleware.Metrics(metrics),
		middleware.Logging(log),
		middleware.CORS(cfg.CORSOrigins),
		middleware.AttachIdentity(tokens, log),
	)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
