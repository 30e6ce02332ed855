package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port              string
	Env               string
	StorageDriver     string
	DatabaseURL       string
	JWTSecret         string
	JWTIssuer         string
	JWTTTL            time.Duration
	BcryptCost        int
	DefaultTenantID   *uuid.UUID
	RegistrationRoles []string
	CORSOrigins       []string
	AuthRatePerMinute int
	RoleCacheTTL      time.Duration
	OTLPEndpoint      string
	ServiceName       string
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:              fallback(getenv("PORT"), "8080"),
		Env:               fallback(getenv("APP_ENV"), "production"),
		StorageDriver:     strings.ToLower(fallback(getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:       strings.TrimSpace(getenv("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(getenv("JWT_SECRET")),
		JWTIssuer:         fallback(getenv("JWT_ISSUER"), "tenantauth"),
		RegistrationRoles: parseCSV(fallback(getenv("REGISTRATION_ROLES"), "Admin,Manager,User"), nil),
		CORSOrigins:       parseCSV(fallback(getenv("CORS_ALLOWED_ORIGINS"), "*"), []string{"*"}),
		OTLPEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		ServiceName:       fallback(getenv("OTEL_SERVICE_NAME"), "tenantauth"),
	}

	var errs []error
	ttlMinutes, err := positiveInt(getenv, "JWT_TTL_MINUTES", 7*24*60)
	errs = append(errs, err)
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	cfg.BcryptCost, err = positiveInt(getenv, "BCRYPT_COST", 10)
	errs = append(errs, err)
	if err == nil && (cfg.BcryptCost < 4 || cfg.BcryptCost > 31) {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost))
	}

	cfg.AuthRatePerMinute, err = positiveInt(getenv, "AUTH_RATE_PER_MINUTE", 10)
	errs = append(errs, err)

	cacheSeconds, err := positiveInt(getenv, "ROLE_CACHE_TTL_SECONDS", 300)
	errs = append(errs, err)
	cfg.RoleCacheTTL = time.Duration(cacheSeconds) * time.Second

	if raw := strings.TrimSpace(getenv("DEFAULT_TENANT_ID")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEFAULT_TENANT_ID must be a UUID: %w", err))
		} else {
			cfg.DefaultTenantID = &id
		}
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StorageDriver))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if len(cfg.RegistrationRoles) == 0 {
		errs = append(errs, errors.New("REGISTRATION_ROLES must name at least one role"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Development reports whether APP_ENV selects development mode.
func (c Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func parseCSV(input string, def []string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
