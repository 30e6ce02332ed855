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

var _ UserManager = (*UserService)(nil)

// UserService implements UserManager.
type UserService struct {
	store         AdminStore
	hasher        Hasher
	defaultTenant *uuid.UUID
}

// NewUserService wires the service. defaultTenant is used when a create request
// names no tenant; nil leaves such users tenantless.
func NewUserService(store AdminStore, hasher Hasher, defaultTenant *uuid.UUID) *UserService {
	return &UserService{store: store, hasher: hasher, defaultTenant: defaultTenant}
}

// CreateUser creates an account on behalf of an administrator and grants it one role.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (models.User, error) {
	const op = "users.create"
	tenantID, err := parseTenantID(req.TenantID, s.defaultTenant)
	if err != nil {
		return models.User{}, err
	}
	if err := checkTenant(ctx, s.store, op, tenantID); err != nil {
		return models.User{}, err
	}
	roleName := req.Role
	if roleName == "" {
		roleName = models.DefaultRole
	}
	role, err := s.store.GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.Validation("invalid request").WithDetails(map[string]string{"role": "unknown role"})
		}
		return models.User{}, internalErr(op, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, internalErr(op, err)
	}
	user, err := s.store.CreateUser(ctx, models.User{
		TenantID:     tenantID,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, userErr(op, err)
	}
	if _, err := s.store.AssignRole(ctx, user.ID, role.ID); err != nil {
		return models.User{}, internalErr(op, err)
	}
	return user, nil
}

// ListUsers returns every user; never nil.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, internalErr("users.list", err)
	}
	return nonNil(users), nil
}

// GetUser returns the user or a NotFound error.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, userErr("users.get", err)
	}
	return user, nil
}

// UpdateUser applies a partial update. A new password is re-hashed. A null
// tenant_id detaches the user from its tenant.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (models.User, error) {
	const op = "users.update"
	if req.Empty() {
		return models.User{}, apperr.Validation("at least one field must be provided")
	}
	var patch storage.UserPatch
	switch {
	case req.TenantID.Null():
		patch.ClearTenant = true
	case req.TenantID.Set:
		tenantID, err := parseTenantID(req.TenantID.Value, nil)
		if err != nil {
			return models.User{}, err
		}
		if err := checkTenant(ctx, s.store, op, tenantID); err != nil {
			return models.User{}, err
		}
		patch.TenantID = tenantID
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		patch.Email = &email
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return models.User{}, internalErr(op, err)
		}
		patch.PasswordHash = &hash
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return models.User{}, userErr(op, err)
	}
	return user, nil
}

// DeleteUser removes the user's role assignments, then the user.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "users.delete"
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return userErr(op, err)
	}
	if err := s.store.UnassignAllRoles(ctx, id); err != nil {
		return internalErr(op, err)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return userErr(op, err)
	}
	return nil
}

func userErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("user not found").WithOp(op)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperr.Conflict("email already exists").WithOp(op)
	case errors.Is(err, storage.ErrInvalidReference):
		return unknownTenant()
	default:
		return internalErr(op, err)
	}
}
