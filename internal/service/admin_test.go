package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/storage"
	"github.com/hongminglow/tenantauth/internal/storage/memory"
)

func strPtr(s string) *string { return &s }

func newAdmin(t *testing.T) (*memory.Store, *UserService, *RoleService) {
	t.Helper()
	store := memory.New()
	tenant := storage.SeedTenantID
	return store, NewUserService(store, auth.NewPasswordHasher(bcrypt.MinCost), &tenant), NewRoleService(store)
}

func TestCreateUserDefaults(t *testing.T) {
	store, users, _ := newAdmin(t)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "Staff@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "staff@x.com", u.Email)
	require.NotNil(t, u.TenantID)
	assert.Equal(t, storage.SeedTenantID, *u.TenantID)

	roles, err := store.ListRolesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, models.RoleNames(roles))
}

func TestCreateUserErrors(t *testing.T) {
	_, users, _ := newAdmin(t)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p", Role: "Ghost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p", TenantID: strPtr(uuid.NewString())})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateUser(t *testing.T) {
	_, users, _ := newAdmin(t)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "old"})
	require.NoError(t, err)

	_, err = users.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := users.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{Email: strPtr("b@x.com"), Password: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", updated.Email)
	assert.NotEqual(t, u.PasswordHash, updated.PasswordHash)
	assert.True(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify("new", updated.PasswordHash))

	_, err = users.UpdateUser(ctx, uuid.New(), dto.UpdateUserRequest{Email: strPtr("c@x.com")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateUserUnknownTenantSkipsHashing(t *testing.T) {
	store := memory.New()
	hasher := &countingHasher{Hasher: auth.NewPasswordHasher(bcrypt.MinCost)}
	users := NewUserService(store, hasher, nil)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p", TenantID: strPtr(uuid.NewString())})
	require.Error(t, err)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, map[string]string{"tenant_id": "unknown tenant"}, e.Details)
	assert.Zero(t, hasher.hashes)

	all, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateUserTenant(t *testing.T) {
	_, users, _ := newAdmin(t)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	require.NotNil(t, u.TenantID)

	cleared, err := users.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{TenantID: dto.NullableString{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.TenantID)
	assert.Equal(t, u.Email, cleared.Email)

	seed := storage.SeedTenantID.String()
	moved, err := users.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{TenantID: dto.NullableString{Set: true, Value: &seed}})
	require.NoError(t, err)
	require.NotNil(t, moved.TenantID)
	assert.Equal(t, storage.SeedTenantID, *moved.TenantID)

	unknown := uuid.NewString()
	_, err = users.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{TenantID: dto.NullableString{Set: true, Value: &unknown}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteUserRemovesAssignments(t *testing.T) {
	store, users, _ := newAdmin(t)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, u.ID))
	roles, err := store.ListRolesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	err = users.DeleteUser(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = users.GetUser(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAssignAndUnassignRole(t *testing.T) {
	_, users, roles := newAdmin(t)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, dto.CreateUserRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	first, err := roles.AssignRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	second, err := roles.AssignRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	held, err := roles.ListUserRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Admin"}, models.RoleNames(held))

	require.NoError(t, roles.UnassignRole(ctx, u.ID, models.RoleAdmin))
	require.NoError(t, roles.UnassignRole(ctx, u.ID, models.RoleAdmin))

	_, err = roles.AssignRole(ctx, u.ID, "Ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = roles.AssignRole(ctx, uuid.New(), models.RoleUser)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = roles.ListUserRoles(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRoleCatalog(t *testing.T) {
	_, _, roles := newAdmin(t)
	ctx := context.Background()

	created, err := roles.CreateRole(ctx, dto.CreateRoleRequest{Name: "Auditor", Description: strPtr("Read-only")})
	require.NoError(t, err)
	assert.Equal(t, "Auditor", created.Name)

	_, err = roles.CreateRole(ctx, dto.CreateRoleRequest{Name: "Auditor"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.True(t, apperr.Is(roles.DeleteRole(ctx, models.RoleAdmin), apperr.KindConflict))
	require.NoError(t, roles.DeleteRole(ctx, "Auditor"))
	assert.True(t, apperr.Is(roles.DeleteRole(ctx, "Auditor"), apperr.KindNotFound))

	all, err := roles.ListRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "Manager", "User"}, models.RoleNames(all))

	tenants, err := roles.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, storage.SeedTenantID, tenants[0].ID)
}
