// Package service implements registration, login and the user/role administration
// operations on top of the storage contracts.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/storage"
)

// AuthStore is the persistence the authentication flows need.
type AuthStore interface {
	storage.UserStore
	storage.RoleStore
	storage.UserRoleStore
}

// AdminStore adds tenant reads for the administration services.
type AdminStore interface {
	AuthStore
	storage.TenantStore
}

// Hasher hashes and checks passwords. DummyHash returns a hash that never
// matches, for comparisons against accounts that do not exist.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	DummyHash() string
}

// Authenticator registers users and exchanges credentials for tokens.
type Authenticator interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
}

// UserManager administers user accounts.
type UserManager interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RoleManager administers the role catalog and role assignments.
type RoleManager interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	CreateRole(ctx context.Context, req dto.CreateRoleRequest) (models.Role, error)
	DeleteRole(ctx context.Context, name string) error
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string) (models.UserRole, error)
	UnassignRole(ctx context.Context, userID uuid.UUID, roleName string) error
}

// TenantLister reads tenants.
type TenantLister interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func internalErr(op string, err error) error {
	return apperr.Internal("internal error", err).WithOp(op)
}

func parseTenantID(raw *string, fallback *uuid.UUID) (*uuid.UUID, error) {
	if raw == nil {
		return fallback, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.Validation("invalid request").WithDetails(map[string]string{"tenant_id": "must be a valid UUID"})
	}
	return &id, nil
}

func unknownTenant() error {
	return apperr.Validation("invalid request").WithDetails(map[string]string{"tenant_id": "unknown tenant"})
}

// checkTenant rejects a tenant id that is not in the store. Nil passes.
func checkTenant(ctx context.Context, store storage.TenantStore, op string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := store.GetTenant(ctx, *id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return unknownTenant()
		}
		return internalErr(op, err)
	}
	return nil
}
