package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/storage"
)

var (
	_ RoleManager  = (*RoleService)(nil)
	_ TenantLister = (*RoleService)(nil)
)

// builtinRoles cannot be deleted; registration and the route gates depend on them.
var builtinRoles = []string{models.RoleAdmin, models.RoleManager, models.RoleUser}

// RoleService implements RoleManager and TenantLister.
type RoleService struct {
	store AdminStore
}

// NewRoleService wires the service.
func NewRoleService(store AdminStore) *RoleService {
	return &RoleService{store: store}
}

// ListRoles returns the whole catalog.
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, internalErr("roles.list", err)
	}
	return nonNil(roles), nil
}

// CreateRole adds a catalog entry. Names are unique.
func (s *RoleService) CreateRole(ctx context.Context, req dto.CreateRoleRequest) (models.Role, error) {
	role, err := s.store.CreateRole(ctx, models.Role{Name: req.Name, Description: req.Description})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Role{}, apperr.Conflict("role already exists")
		}
		return models.Role{}, internalErr("roles.create", err)
	}
	return role, nil
}

// DeleteRole removes a role; its assignments cascade.
func (s *RoleService) DeleteRole(ctx context.Context, name string) error {
	const op = "roles.delete"
	for _, b := range builtinRoles {
		if b == name {
			return apperr.Conflict("built-in roles cannot be deleted")
		}
	}
	role, err := s.lookupRole(ctx, op, name)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRole(ctx, role.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("role not found")
		}
		return internalErr(op, err)
	}
	return nil
}

func (s *RoleService) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	const op = "roles.list_for_user"
	if err := s.requireUser(ctx, op, userID); err != nil {
		return nil, err
	}
	roles, err := s.store.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, internalErr(op, err)
	}
	return nonNil(roles), nil
}

// AssignRole grants roleName to the user. Granting a held role returns the existing assignment.
func (s *RoleService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) (models.UserRole, error) {
	const op = "roles.assign"
	if err := s.requireUser(ctx, op, userID); err != nil {
		return models.UserRole{}, err
	}
	role, err := s.lookupRole(ctx, op, roleName)
	if err != nil {
		return models.UserRole{}, err
	}
	ur, err := s.store.AssignRole(ctx, userID, role.ID)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			return models.UserRole{}, apperr.NotFound("user or role not found")
		}
		return models.UserRole{}, internalErr(op, err)
	}
	return ur, nil
}

// UnassignRole revokes roleName from the user. Revoking a role the user lacks is a no-op.
func (s *RoleService) UnassignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	const op = "roles.unassign"
	role, err := s.lookupRole(ctx, op, roleName)
	if err != nil {
		return err
	}
	if err := s.store.UnassignRole(ctx, userID, role.ID); err != nil {
		return internalErr(op, err)
	}
	return nil
}

func (s *RoleService) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, internalErr("tenants.list", err)
	}
	return nonNil(tenants), nil
}

func (s *RoleService) lookupRole(ctx context.Context, op, name string) (models.Role, error) {
	role, err := s.store.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Role{}, apperr.NotFound("role not found")
		}
		return models.Role{}, internalErr(op, err)
	}
	return role, nil
}

func (s *RoleService) requireUser(ctx context.Context, op string, id uuid.UUID) error {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return internalErr(op, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
