package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidReference indicates a foreign key points at a missing row.
var ErrInvalidReference = errors.New("referenced record does not exist")

// UserPatch holds the fields of a partial user update. Nil fields are left unchanged.
// ClearTenant detaches the user from its tenant and wins over TenantID.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	TenantID     *uuid.UUID
	ClearTenant  bool
}

// UserStore persists users. Email is unique.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RoleStore persists the role catalog. Name is unique.
type RoleStore interface {
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	GetRoleByName(ctx context.Context, name string) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
}

// UserRoleStore persists role assignments.
type UserRoleStore interface {
	// AssignRole is idempotent: assigning an existing pair returns the existing row.
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) (models.UserRole, error)
	// ListRolesForUser returns roles in assignment order.
	ListRolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error
	UnassignAllRoles(ctx context.Context, userID uuid.UUID) error
}

// TenantStore reads tenants. Tenants are provisioned by migrations.
type TenantStore interface {
	GetTenant(ctx context.Context, id uuid.UUID) (models.Tenant, error)
	ListTenants(ctx context.Context) ([]models.Tenant, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	RoleStore
	UserRoleStore
	TenantStore
	Ping(ctx context.Context) error
	Close()
}

// Seed identifiers shared by the SQL migrations and the in-memory store.
var (
	SeedTenantID    = uuid.MustParse("42a401e2-7d75-4859-8538-000363fe1b26")
	SeedAdminRoleID = uuid.MustParse("ade3e92d-2790-4541-bcdc-6af441174e24")
	SeedManagerID   = uuid.MustParse("29c49062-1286-47fc-80cf-a547f6b77ebc")
	SeedUserRoleID  = uuid.MustParse("0eaf6246-d2d6-4cde-ac1c-4821ffc233f8")
)

// SeedTenants returns the tenants every fresh store starts with.
func SeedTenants(now time.Time) []models.Tenant {
	return []models.Tenant{{ID: SeedTenantID, Name: "Default", CreatedAt: now}}
}

// SeedRoles returns the built-in role catalog.
func SeedRoles(now time.Time) []models.Role {
	desc := func(s string) *string { return &s }
	return []models.Role{
		{ID: SeedAdminRoleID, Name: models.RoleAdmin, Description: desc("Full administrative access"), CreatedAt: now},
		{ID: SeedManagerID, Name: models.RoleManager, Description: desc("Manages users within a tenant"), CreatedAt: now},
		{ID: SeedUserRoleID, Name: models.RoleUser, Description: desc("Standard user"), CreatedAt: now},
	}
}
