// Package app provides application-level wiring and dependency injection
// for the lakegate server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"lakegate/internal/config"
	"lakegate/internal/db/repository"
	"lakegate/internal/middleware"
	"lakegate/internal/service"
	"lakegate/internal/source"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the DuckDB connection.
type Deps struct {
	Cfg         *config.Config
	DuckDB      *sql.DB // parquet reader
	WarehouseDB *sql.DB // relational warehouse (read-only surface)
	WriteDB     *sql.DB // metastore write pool (single connection)
	ReadDB      *sql.DB // metastore read pool
	Logger      *slog.Logger
}

// Services groups all service pointers the API handler and router need.
type Services struct {
	Transactions *service.TransactionService
	Metrics      *service.MetricsService
	Permissions  *service.PermissionService
	Tokens       *service.TokenService
}

// App holds the fully-wired application: services plus the pieces the router
// setup needs directly (the authenticator behind the protected routes).
type App struct {
	Services      Services
	Authenticator *middleware.Authenticator
}

// New wires all repositories, adapters, and services from the provided deps.
// It also seeds the bootstrap admin when one is configured.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Repositories ===
	principalRepo := repository.NewPrincipalRepo(deps.WriteDB)
	permissionRepo := repository.NewPermissionRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	apiKeyRepo := repository.NewAPIKeyRepo(deps.ReadDB)

	// === Bootstrap admin ===
	if err := seedAdmin(ctx, principalRepo, cfg.Auth.AdminUser, cfg.Auth.AdminPassword); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	// === Source adapters ===
	parquet := source.NewParquetAdapter(deps.DuckDB, cfg.DataLakeRoot)
	warehouse := source.NewWarehouseAdapter(deps.WarehouseDB)

	// === Services ===
	authzSvc := service.NewAuthorizationService(permissionRepo)
	txSvc := service.NewTransactionService(parquet, warehouse, authzSvc, auditRepo)

	metricsSource, err := service.ParseSourceRef(cfg.MetricsSource)
	if err != nil {
		return nil, fmt.Errorf("parse METRICS_SOURCE: %w", err)
	}
	metricsSvc := service.NewMetricsService(txSvc, metricsSource)

	permissionSvc := service.NewPermissionService(permissionRepo, principalRepo, auditRepo)
	tokenSvc := service.NewTokenService(principalRepo, auditRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	// === Auth middleware ===
	validator, err := buildValidator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Auth.APIKeyEnabled {
		apiKeyRepo = nil
	}
	authn := middleware.NewAuthenticator(validator, apiKeyRepo, principalRepo)

	deps.Logger.Info("application wired",
		"data_lake_root", cfg.DataLakeRoot,
		"metrics_source", cfg.MetricsSource,
		"oidc", cfg.Auth.OIDCEnabled(),
		"api_keys", cfg.Auth.APIKeyEnabled)

	return &App{
		Services: Services{
			Transactions: txSvc,
			Metrics:      metricsSvc,
			Permissions:  permissionSvc,
			Tokens:       tokenSvc,
		},
		Authenticator: authn,
	}, nil
}

// buildValidator picks the token validator: OIDC when an issuer is
// configured, otherwise the local HS256 secret used by the login endpoint.
func buildValidator(ctx context.Context, cfg *config.Config) (middleware.JWTValidator, error) {
	if cfg.Auth.OIDCEnabled() {
		v, err := middleware.NewOIDCValidator(ctx, cfg.Auth.IssuerURL, cfg.Auth.Audience)
		if err != nil {
			return nil, fmt.Errorf("oidc validator: %w", err)
		}
		return v, nil
	}
	return middleware.NewHS256Validator(cfg.Auth.JWTSecret)
}
