// Package memory is an in-process storage.Store used for tests and local runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps all records in memory behind a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	tenants   []models.Tenant
	users     []models.User
	roles     []models.Role
	userRoles []models.UserRole
}

// New returns a Store seeded with the default tenant and role catalog.
func New() *Store {
	now := time.Now().UTC()
	return &Store{
		now:     func() time.Time { return time.Now().UTC() },
		tenants: storage.SeedTenants(now),
		roles:   storage.SeedRoles(now),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, uuid.Nil) {
		return models.User{}, storage.ErrAlreadyExists
	}
	if user.TenantID != nil {
		if s.tenantIndex(*user.TenantID) < 0 {
			return models.User{}, storage.ErrInvalidReference
		}
		tenantID := *user.TenantID
		user.TenantID = &tenantID
	}
	user.ID = uuid.New()
	user.CreatedAt = s.now()
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[i], nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users), nil
}

func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, patch storage.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, storage.ErrNotFound
	}
	u := s.users[i]
	if patch.Email != nil {
		if s.emailTaken(*patch.Email, id) {
			return models.User{}, storage.ErrAlreadyExists
		}
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	switch {
	case patch.ClearTenant:
		u.TenantID = nil
	case patch.TenantID != nil:
		if s.tenantIndex(*patch.TenantID) < 0 {
			return models.User{}, storage.ErrInvalidReference
		}
		tenantID := *patch.TenantID
		u.TenantID = &tenantID
	}
	s.users[i] = u
	return u, nil
}

// DeleteUser removes the user and cascades its role assignments.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return storage.ErrNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.userRoles = slices.DeleteFunc(s.userRoles, func(ur models.UserRole) bool { return ur.UserID == id })
	return nil
}

func (s *Store) CreateRole(_ context.Context, role models.Role) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roleIndexByName(role.Name) >= 0 {
		return models.Role{}, storage.ErrAlreadyExists
	}
	role.ID = uuid.New()
	role.CreatedAt = s.now()
	s.roles = append(s.roles, role)
	return role, nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.roleIndexByName(name)
	if i < 0 {
		return models.Role{}, storage.ErrNotFound
	}
	return s.roles[i], nil
}

func (s *Store) ListRoles(context.Context) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles), nil
}

// DeleteRole removes the role and cascades its assignments.
func (s *Store) DeleteRole(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	s.roles = slices.Delete(s.roles, i, i+1)
	s.userRoles = slices.DeleteFunc(s.userRoles, func(ur models.UserRole) bool { return ur.RoleID == id })
	return nil
}

func (s *Store) AssignRole(_ context.Context, userID, roleID uuid.UUID) (models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return ur, nil
		}
	}
	if s.userIndex(userID) < 0 || !slices.ContainsFunc(s.roles, func(r models.Role) bool { return r.ID == roleID }) {
		return models.UserRole{}, storage.ErrInvalidReference
	}
	ur := models.UserRole{ID: uuid.New(), UserID: userID, RoleID: roleID, CreatedAt: s.now()}
	s.userRoles = append(s.userRoles, ur)
	return ur, nil
}

func (s *Store) ListRolesForUser(_ context.Context, userID uuid.UUID) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Role
	for _, ur := range s.userRoles {
		if ur.UserID != userID {
			continue
		}
		if i := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == ur.RoleID }); i >= 0 {
			out = append(out, s.roles[i])
		}
	}
	return out, nil
}

func (s *Store) UnassignRole(_ context.Context, userID, roleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRoles = slices.DeleteFunc(s.userRoles, func(ur models.UserRole) bool {
		return ur.UserID == userID && ur.RoleID == roleID
	})
	return nil
}

func (s *Store) UnassignAllRoles(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRoles = slices.DeleteFunc(s.userRoles, func(ur models.UserRole) bool { return ur.UserID == userID })
	return nil
}

func (s *Store) GetTenant(_ context.Context, id uuid.UUID) (models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.tenantIndex(id)
	if i < 0 {
		return models.Tenant{}, storage.ErrNotFound
	}
	return s.tenants[i], nil
}

func (s *Store) ListTenants(context.Context) ([]models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tenants), nil
}

func (s *Store) userIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
}

func (s *Store) tenantIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.tenants, func(t models.Tenant) bool { return t.ID == id })
}

func (s *Store) roleIndexByName(name string) int {
	return slices.IndexFunc(s.roles, func(r models.Role) bool { return r.Name == name })
}

func (s *Store) emailTaken(email string, except uuid.UUID) bool {
	return slices.ContainsFunc(s.users, func(u models.User) bool {
		return u.ID != except && strings.EqualFold(u.Email, email)
	})
}
